package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/session"
)

type Client struct {
	base string
	http *http.Client
	log  *slog.Logger
}

type Config struct {
	BaseURL string
	Timeout time.Duration // 0 = wait for as long as ctx allows
	Logger  *slog.Logger
	// Optional: custom transport, mostly for tests
	HTTPClient *http.Client
}

func New(cfg Config) *Client {
	h := cfg.HTTPClient
	if h == nil {
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{base: strings.TrimRight(cfg.BaseURL, "/"), http: h, log: log}
}

var _ session.Gateway = (*Client)(nil)

type generateRequest struct {
	Count           int      `json:"count"`
	AllowedProblems []string `json:"allowed_problems"`
	Seed            *int64   `json:"seed"`
}

type evaluateRequest struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// RequestQuestions posts to /questions/generate. allowed is forwarded as-is:
// nil encodes as null, an empty slice as [].
func (c *Client) RequestQuestions(ctx context.Context, count int, allowed []string, seed int64) ([]session.Question, error) {
	var out struct {
		Questions []session.Question `json:"questions"`
	}
	body := generateRequest{Count: count, AllowedProblems: allowed, Seed: &seed}
	if err := c.do(ctx, "generate", http.MethodPost, "/questions/generate", body, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *Client) RequestEvaluation(ctx context.Context, questionID, answerText string) (session.ScoreResult, error) {
	var out session.ScoreResult
	body := evaluateRequest{QuestionID: questionID, AnswerText: answerText}
	if err := c.do(ctx, "evaluate", http.MethodPost, "/answers/evaluate", body, &out); err != nil {
		return session.ScoreResult{}, err
	}
	if out.MatchedKeywords == nil {
		out.MatchedKeywords = []string{}
	}
	if out.MissingKeywords == nil {
		out.MissingKeywords = []string{}
	}
	return out, nil
}

// RequestReference never returns a nil slice on success.
func (c *Client) RequestReference(ctx context.Context, questionID string) (session.ReferenceAnswers, error) {
	var out struct {
		QuestionID       string   `json:"question_id"`
		ReferenceAnswers []string `json:"reference_answers"`
	}
	path := "/questions/" + url.PathEscape(questionID) + "/reference"
	if err := c.do(ctx, "reference", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	refs := session.ReferenceAnswers(out.ReferenceAnswers)
	if refs == nil {
		refs = session.ReferenceAnswers{}
	}
	return refs, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return &TransportError{Op: "health", Detail: "status " + out.Status}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var rdr io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("quiz api request failed", "op", op, "request_id", reqID, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()
	c.log.Debug("quiz api request", "op", op, "method", method, "path", path,
		"status", res.StatusCode, "request_id", reqID, "took", time.Since(start))

	if res.StatusCode/100 != 2 {
		return statusError(op, res.StatusCode, res.Body)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return &TransportError{Op: op, StatusCode: res.StatusCode, Err: err}
	}
	return nil
}
