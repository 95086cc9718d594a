// Package quizapitest runs an in-process fake of the quiz service that speaks
// the same JSON contract, records every request, and can be told to fail.
package quizapitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/session"
)

type Request struct {
	Op        string
	Method    string
	Path      string
	RequestID string
	Body      json.RawMessage
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	questions  map[string]session.Question
	score      session.ScoreResult
	references []string
	failures   map[string]failure
	requests   []Request
}

// New starts the fake; callers must Close it.
func New() *Server {
	s := &Server{
		questions:  map[string]session.Question{},
		score:      session.ScoreResult{Score: 0, MatchedKeywords: []string{}, MissingKeywords: []string{}},
		references: []string{},
		failures:   map[string]failure{},
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/health", s.handle("health", s.health))
	r.Post("/questions/generate", s.handle("generate", s.generate))
	r.Get("/questions/{questionID}/reference", s.handle("reference", s.reference))
	r.Post("/answers/evaluate", s.handle("evaluate", s.evaluate))
	s.Server = httptest.NewServer(r)
	return s
}

// SetScore fixes the evaluation result returned for any known question.
func (s *Server) SetScore(sc session.ScoreResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = sc
}

func (s *Server) SetReferences(refs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.references = refs
}

// Fail makes every later call of op answer with status and the raw body.
func (s *Server) Fail(op string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{status: status, body: body}
}

func (s *Server) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Ops lists the operations received, in order.
func (s *Server) Ops() []string {
	reqs := s.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Op
	}
	return out
}

func (s *Server) handle(op string, next func(w http.ResponseWriter, r *http.Request, body []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Op: op, Method: r.Method, Path: r.URL.Path,
			RequestID: middleware.GetReqID(r.Context()),
			Body:      json.RawMessage(body),
		})
		f, failing := s.failures[op]
		s.mu.Unlock()

		if failing {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next(w, r, body)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ []byte) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generate(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Count           int      `json:"count"`
		AllowedProblems []string `json:"allowed_problems"`
		Seed            *int64   `json:"seed"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "bad json"})
		return
	}
	n := req.Count
	if n < 1 {
		n = 1
	}
	key := "n_queens"
	if len(req.AllowedProblems) > 0 {
		key = req.AllowedProblems[0]
	}

	s.mu.Lock()
	qs := make([]session.Question, 0, n)
	for i := 0; i < n; i++ {
		q := session.Question{
			ID:         uuid.NewString(),
			ProblemKey: key,
			Instance:   "n=8",
			Text:       fmt.Sprintf("For the %s problem (instance: n=8), which solving strategy fits best?", key),
		}
		s.questions[q.ID] = q
		qs = append(qs, q)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

func (s *Server) evaluate(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		QuestionID string `json:"question_id"`
		AnswerText string `json:"answer_text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "bad json"})
		return
	}
	s.mu.Lock()
	q, ok := s.questions[req.QuestionID]
	sc := s.score
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Question not found"})
		return
	}
	sc.ProblemKey = q.ProblemKey
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) reference(w http.ResponseWriter, r *http.Request, _ []byte) {
	id := chi.URLParam(r, "questionID")
	s.mu.Lock()
	_, ok := s.questions[id]
	refs := s.references
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Question not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question_id": id, "reference_answers": refs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
