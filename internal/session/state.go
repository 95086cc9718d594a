package session

import "strings"

type Phase int

const (
	PhaseIdle   Phase = iota // no question
	PhaseAsked               // question held, no score
	PhaseScored              // question + score (+ references once fetched)
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAsked:
		return "asked"
	case PhaseScored:
		return "scored"
	default:
		return "unknown"
	}
}

// State is the whole client session. Values are only produced by Apply, so a
// State obtained from Snapshot can be read freely.
type State struct {
	Selection  Selection
	Question   *Question
	Draft      string
	Score      *ScoreResult
	References ReferenceAnswers // nil = not requested yet

	// genSeq is bumped by every GenerateRequested; it doubles as the epoch
	// that evaluation responses must match.
	genSeq     uint64
	genDone    uint64
	evaluating int
}

// NewState starts with every key in keys selected and no question.
func NewState(keys []string) State {
	return State{Selection: NewSelection(keys...)}
}

// Phase is derived from the data so it can never disagree with it.
func (s State) Phase() Phase {
	switch {
	case s.Question == nil:
		return PhaseIdle
	case s.Score == nil:
		return PhaseAsked
	default:
		return PhaseScored
	}
}

// Seq is the sequence number of the latest generate request.
func (s State) Seq() uint64 { return s.genSeq }

func (s State) Generating() bool { return s.genSeq != s.genDone }
func (s State) Evaluating() bool { return s.evaluating > 0 }

func (s State) ReferencesFetched() bool { return s.References != nil }

// CanEvaluate reports whether an evaluation would reach the quiz service.
// Nothing is evaluated while the held question is about to be replaced.
func (s State) CanEvaluate() bool {
	return s.Question != nil && !s.Generating() && strings.TrimSpace(s.Draft) != ""
}

// holds reports whether the question issued under seq with id qid is still
// the current one and no replacement is pending.
func (s State) holds(seq uint64, qid string) bool {
	return s.genSeq == seq && !s.Generating() && s.Question != nil && s.Question.ID == qid
}

func (s State) clone() State {
	cp := s
	cp.Selection = s.Selection.clone()
	cp.Question = s.Question.clone()
	cp.Score = s.Score.clone()
	cp.References = s.References.clone()
	return cp
}

// Event is one of the transition inputs below.
type Event interface{ isEvent() }

type (
	Toggled      struct{ Key string }
	AnswerEdited struct{ Text string }

	GenerateRequested struct{}
	QuestionReceived  struct {
		Seq      uint64
		Question Question
	}
	GenerateFailed struct{ Seq uint64 }

	EvaluateRequested struct{}
	ScoreReceived     struct {
		Seq        uint64
		QuestionID string
		Score      ScoreResult
	}
	ReferencesReceived struct {
		Seq        uint64
		QuestionID string
		References ReferenceAnswers
	}
	EvaluateFinished struct{}
)

func (Toggled) isEvent()            {}
func (AnswerEdited) isEvent()       {}
func (GenerateRequested) isEvent()  {}
func (QuestionReceived) isEvent()   {}
func (GenerateFailed) isEvent()     {}
func (EvaluateRequested) isEvent()  {}
func (ScoreReceived) isEvent()      {}
func (ReferencesReceived) isEvent() {}
func (EvaluateFinished) isEvent()   {}

// Apply is the pure transition function. s is not modified.
func Apply(s State, e Event) State {
	next := s.clone()
	switch ev := e.(type) {
	case Toggled:
		next.Selection = s.Selection.Toggle(ev.Key)

	case AnswerEdited:
		if next.Question != nil && !s.Generating() {
			next.Draft = ev.Text
		}

	case GenerateRequested:
		next.genSeq++
		next.Draft = ""
		next.Score = nil
		next.References = nil

	case QuestionReceived:
		if ev.Seq != next.genSeq {
			break
		}
		q := ev.Question
		next.Question = &q
		next.Draft = ""
		next.Score = nil
		next.References = nil
		next.genDone = ev.Seq

	case GenerateFailed:
		if ev.Seq == next.genSeq {
			next.genDone = ev.Seq
		}

	case EvaluateRequested:
		next.evaluating++

	case ScoreReceived:
		if !s.holds(ev.Seq, ev.QuestionID) {
			break
		}
		sc := ev.Score
		next.Score = sc.clone()
		next.References = nil

	case ReferencesReceived:
		if !s.holds(ev.Seq, ev.QuestionID) || s.Score == nil {
			break
		}
		refs := ev.References.clone()
		if refs == nil {
			refs = ReferenceAnswers{}
		}
		next.References = refs

	case EvaluateFinished:
		if next.evaluating > 0 {
			next.evaluating--
		}
	}
	return next
}
