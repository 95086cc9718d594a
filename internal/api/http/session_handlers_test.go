package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi/quizapitest"
	"github.com/mind-engage/mindengage-quiz/internal/render"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

type fixture struct {
	upstream *quizapitest.Server
	ctl      *session.Controller
	h        http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	up := quizapitest.New()
	t.Cleanup(up.Close)
	client := quizapi.New(quizapi.Config{BaseURL: up.URL, Logger: logging.Discard()})
	ctl := session.NewController(client, nil,
		session.WithLogger(logging.Discard()),
		session.WithSeed(func() int64 { return 42 }),
	)
	h := api.NewRouter(ctl, api.RouterConfig{
		CORSOrigins:  []string{"http://localhost:5173"},
		MissingLimit: 15,
		Ready:        client.Health,
	})
	return &fixture{upstream: up, ctl: ctl, h: h}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	var out map[string]json.RawMessage
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	f.upstream.Fail("health", http.StatusServiceUnavailable, "")
	rec, _ = f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCategoriesAndToggle(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]render.CategoryView](t, body["categories"])
	require.Len(t, cats, 4)
	for _, c := range cats {
		assert.True(t, c.Enabled, c.Key)
	}

	rec, body = f.do(t, http.MethodPost, "/api/session/toggle/graph_coloring", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats = decode[[]render.CategoryView](t, body["categories"])
	assert.False(t, cats[1].Enabled)

	rec, _ = f.do(t, http.MethodPost, "/api/session/toggle/sudoku", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFullFlow(t *testing.T) {
	f := newFixture(t)
	f.upstream.SetScore(session.ScoreResult{
		Score: 72, BestMatchName: "Backtracking",
		MatchedKeywords: []string{"backtracking"},
		MissingKeywords: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q"},
	})
	f.upstream.SetReferences([]string{"Backtracking with MRV"})

	rec, body := f.do(t, http.MethodPost, "/api/session/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"applied"`, string(body["outcome"]))
	v := decode[render.View](t, body["session"])
	assert.Equal(t, "asked", v.Phase)
	require.NotNil(t, v.Question)

	rec, body = f.do(t, http.MethodPut, "/api/session/answer", `{"answer_text":"use backtracking"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"use backtracking"`, string(body["answer"]))
	assert.Equal(t, "true", string(body["can_evaluate"]))

	rec, body = f.do(t, http.MethodPost, "/api/session/evaluate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v = decode[render.View](t, body["session"])
	assert.Equal(t, "scored", v.Phase)
	require.NotNil(t, v.Score)
	assert.Equal(t, "72%", v.Score.Display)
	assert.Len(t, v.Score.Missing, 15)
	assert.Equal(t, 2, v.Score.MissingHidden)
	assert.Equal(t, []string{"Backtracking with MRV"}, v.References)
	assert.Len(t, f.ctl.Snapshot().Score.MissingKeywords, 17)

	assert.Equal(t, []string{"generate", "evaluate", "reference"}, f.upstream.Ops())
}

func TestBlankAnswerIsSkipped(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/session/generate", "")
	rec, _ := f.do(t, http.MethodPut, "/api/session/answer", `{"answer_text":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodPost, "/api/session/evaluate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"skipped"`, string(body["outcome"]))
	assert.Equal(t, []string{"generate"}, f.upstream.Ops())
}

func TestAnswerWithoutQuestionConflicts(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodPut, "/api/session/answer", `{"answer_text":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/api/session/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.upstream.Fail("generate", http.StatusInternalServerError, `{"detail":"No valid problems available for generation."}`)

	rec, body := f.do(t, http.MethodPost, "/api/session/generate", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, `"No valid problems available for generation."`, string(body["detail"]))
	v := decode[render.View](t, body["session"])
	assert.Equal(t, "idle", v.Phase)
	assert.Nil(t, v.Question)
}

func TestEmptySelectionIsForwarded(t *testing.T) {
	f := newFixture(t)
	for _, k := range f.ctl.Catalog().Keys() {
		rec, _ := f.do(t, http.MethodPost, "/api/session/toggle/"+k, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ := f.do(t, http.MethodPost, "/api/session/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	reqs := f.upstream.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"count":1,"allowed_problems":[],"seed":42}`, string(reqs[0].Body))
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/session/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReadyReportsProbeError(t *testing.T) {
	ctl := session.NewController(nil, nil, session.WithLogger(logging.Discard()))
	h := api.NewRouter(ctl, api.RouterConfig{Ready: func(context.Context) error { return errors.New("down") }})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
