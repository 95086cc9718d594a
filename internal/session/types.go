package session

import (
	"context"
	"time"
)

// Question is owned by the quiz service; the client never edits one.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`

	// Optional, returned by the reference backend.
	ProblemKey string `json:"problem_key,omitempty"`
	Instance   string `json:"instance,omitempty"`
}

type ScoreResult struct {
	Score           float64  `json:"score"` // percentage, 0..100
	BestMatchName   string   `json:"best_match_name,omitempty"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`

	ProblemKey   string `json:"problem_key,omitempty"`
	Explanations string `json:"explanations,omitempty"`
}

// ReferenceAnswers is nil until fetched; a fetched empty list is non-nil.
type ReferenceAnswers []string

// Gateway is the remote quiz service. Implementations must report every
// failure as an error and never retry on their own.
type Gateway interface {
	RequestQuestions(ctx context.Context, count int, allowed []string, seed int64) ([]Question, error)
	RequestEvaluation(ctx context.Context, questionID, answerText string) (ScoreResult, error)
	RequestReference(ctx context.Context, questionID string) (ReferenceAnswers, error)
}

// SeedFunc yields a fresh seed for every generate request.
type SeedFunc func() int64

// SeedRange bounds seeds so the service never sees values past int32.
const SeedRange int64 = 1<<31 - 1

// TimeSeed derives seeds from the clock, wrapped into [0, SeedRange).
func TimeSeed(now func() time.Time) SeedFunc {
	if now == nil {
		now = time.Now
	}
	return func() int64 {
		v := now().UnixNano() % SeedRange
		if v < 0 {
			v += SeedRange
		}
		return v
	}
}

func (q *Question) clone() *Question {
	if q == nil {
		return nil
	}
	cp := *q
	return &cp
}

func (r *ScoreResult) clone() *ScoreResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.MatchedKeywords = cloneStrings(r.MatchedKeywords)
	cp.MissingKeywords = cloneStrings(r.MissingKeywords)
	return &cp
}

func (r ReferenceAnswers) clone() ReferenceAnswers {
	if r == nil {
		return nil
	}
	out := make(ReferenceAnswers, len(r))
	copy(out, r)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
