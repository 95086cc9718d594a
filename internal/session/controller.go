package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/catalog"
)

var (
	ErrUnknownCategory   = errors.New("unknown problem category")
	ErrNoQuestion        = errors.New("no question to answer")
	ErrEmptyQuestionList = errors.New("quiz service returned no questions")
	ErrGenerating        = errors.New("a new question is being generated")
)

// Outcome tells the caller what an action did to the session.
type Outcome int

const (
	Failed     Outcome = iota // remote call failed; state kept its last valid value
	Applied                   // response stored
	Skipped                   // local precondition not met; nothing was sent
	Superseded                // response arrived for a question that is no longer current
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Superseded:
		return "superseded"
	default:
		return "failed"
	}
}

type Option func(*Controller)

func WithSeed(f SeedFunc) Option       { return func(c *Controller) { c.seed = f } }
func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// Controller owns the session state and sequences gateway calls. The mutex is
// held only between remote calls, never across one.
type Controller struct {
	mu    sync.Mutex
	state State

	gw      Gateway
	catalog *catalog.Catalog
	seed    SeedFunc
	log     *slog.Logger
}

func NewController(gw Gateway, cat *catalog.Catalog, opts ...Option) *Controller {
	if cat == nil {
		cat = catalog.Default()
	}
	c := &Controller{
		state:   NewState(cat.Keys()),
		gw:      gw,
		catalog: cat,
		seed:    TimeSeed(time.Now),
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) apply(e Event) State {
	c.state = Apply(c.state, e)
	return c.state.clone()
}

// Toggle flips one catalog category. Question, draft and score are untouched.
func (c *Controller) Toggle(key string) (State, error) {
	if !c.catalog.Has(key) {
		return c.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(Toggled{Key: key}), nil
}

func (c *Controller) SetAnswer(text string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Question == nil {
		return c.state.clone(), ErrNoQuestion
	}
	if c.state.Generating() {
		return c.state.clone(), ErrGenerating
	}
	return c.apply(AnswerEdited{Text: text}), nil
}

// Generate clears the draft, score and references, then asks the service for
// one question restricted to the current selection. An empty selection is
// sent as-is.
func (c *Controller) Generate(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	c.apply(GenerateRequested{})
	seq := c.state.genSeq
	allowed := c.state.Selection.Ordered(c.catalog.Keys())
	c.mu.Unlock()

	seed := c.seed()
	c.log.Debug("generate question", "seq", seq, "allowed", allowed, "seed", seed)

	qs, err := c.gw.RequestQuestions(ctx, 1, allowed, seed)
	if err == nil && len(qs) == 0 {
		err = ErrEmptyQuestionList
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.apply(GenerateFailed{Seq: seq})
		if seq != c.state.genSeq {
			c.log.Debug("discarding failed generate", "seq", seq, "latest", c.state.genSeq, "error", err)
			return Superseded, nil
		}
		c.log.Warn("generate question failed", "seq", seq, "error", err)
		return Failed, fmt.Errorf("generate question: %w", err)
	}
	if seq != c.state.genSeq {
		c.log.Debug("discarding stale question", "seq", seq, "latest", c.state.genSeq, "question_id", qs[0].ID)
		return Superseded, nil
	}
	c.apply(QuestionReceived{Seq: seq, Question: qs[0]})
	c.log.Info("question received", "question_id", qs[0].ID, "problem_key", qs[0].ProblemKey)
	return Applied, nil
}

// Evaluate scores the current draft and then fetches the reference answers
// for the same question. It sends nothing when there is no question, a new
// one is being generated, or the draft is blank. A failed evaluation stores nothing and skips the
// reference fetch; a failed reference fetch keeps the score.
func (c *Controller) Evaluate(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if !c.state.CanEvaluate() {
		c.mu.Unlock()
		return Skipped, nil
	}
	seq := c.state.genSeq
	qid := c.state.Question.ID
	answer := c.state.Draft
	c.apply(EvaluateRequested{})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.apply(EvaluateFinished{})
		c.mu.Unlock()
	}()

	c.log.Debug("evaluate answer", "question_id", qid, "answer_len", len(answer))
	score, err := c.gw.RequestEvaluation(ctx, qid, answer)
	if err != nil {
		c.log.Warn("evaluate answer failed", "question_id", qid, "error", err)
		return Failed, fmt.Errorf("evaluate answer: %w", err)
	}

	c.mu.Lock()
	if !c.state.holds(seq, qid) {
		c.mu.Unlock()
		c.log.Debug("discarding stale score", "question_id", qid)
		return Superseded, nil
	}
	c.apply(ScoreReceived{Seq: seq, QuestionID: qid, Score: score})
	c.mu.Unlock()
	c.log.Info("answer scored", "question_id", qid, "score", score.Score, "best_match", score.BestMatchName)

	refs, err := c.gw.RequestReference(ctx, qid)
	if err != nil {
		c.log.Warn("fetch reference answers failed", "question_id", qid, "error", err)
		return Applied, fmt.Errorf("fetch reference answers: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.holds(seq, qid) {
		return Superseded, nil
	}
	c.apply(ReferencesReceived{Seq: seq, QuestionID: qid, References: refs})
	return Applied, nil
}
