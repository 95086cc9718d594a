package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/render"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

// MountSession wires the quiz session endpoints onto r. limit caps the
// displayed missing keywords.
func MountSession(r chi.Router, ctl *session.Controller, limit int) {
	r.Get("/categories", ListCategoriesHandler(ctl))
	r.Route("/session", func(sr chi.Router) {
		sr.Get("/", GetSessionHandler(ctl, limit))
		sr.Post("/toggle/{key}", ToggleCategoryHandler(ctl, limit))
		sr.Post("/generate", GenerateHandler(ctl, limit))
		sr.Put("/answer", SetAnswerHandler(ctl, limit))
		sr.Post("/evaluate", EvaluateHandler(ctl, limit))
	})
}

type actionResponse struct {
	Outcome string      `json:"outcome"`
	Session render.View `json:"session"`
}

type errorResponse struct {
	Error   string       `json:"error"`
	Detail  string       `json:"detail,omitempty"`
	Outcome string       `json:"outcome,omitempty"`
	Session *render.View `json:"session,omitempty"`
}

func ListCategoriesHandler(ctl *session.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := ctl.Snapshot()
		respondJSON(w, http.StatusOK, map[string]any{
			"categories": render.Categories(ctl.Catalog(), st.Selection),
		})
	}
}

func GetSessionHandler(ctl *session.Controller, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, render.NewView(ctl.Snapshot(), ctl.Catalog(), limit))
	}
}

func ToggleCategoryHandler(ctl *session.Controller, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := ctl.Toggle(chi.URLParam(r, "key"))
		if errors.Is(err, session.ErrUnknownCategory) {
			respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, render.NewView(st, ctl.Catalog(), limit))
	}
}

func SetAnswerHandler(ctl *session.Controller, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AnswerText *string `json:"answer_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AnswerText == nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "answer_text required"})
			return
		}
		st, err := ctl.SetAnswer(*req.AnswerText)
		if errors.Is(err, session.ErrNoQuestion) || errors.Is(err, session.ErrGenerating) {
			v := render.NewView(st, ctl.Catalog(), limit)
			respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Session: &v})
			return
		}
		respondJSON(w, http.StatusOK, render.NewView(st, ctl.Catalog(), limit))
	}
}

func GenerateHandler(ctl *session.Controller, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ctl.Generate(r.Context())
		respondAction(w, ctl, limit, out, err)
	}
}

// EvaluateHandler answers 200 with outcome "skipped" when the draft is blank;
// nothing is sent upstream in that case.
func EvaluateHandler(ctl *session.Controller, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ctl.Evaluate(r.Context())
		respondAction(w, ctl, limit, out, err)
	}
}

func respondAction(w http.ResponseWriter, ctl *session.Controller, limit int, out session.Outcome, err error) {
	v := render.NewView(ctl.Snapshot(), ctl.Catalog(), limit)
	if err == nil {
		respondJSON(w, http.StatusOK, actionResponse{Outcome: out.String(), Session: v})
		return
	}
	resp := errorResponse{Error: err.Error(), Outcome: out.String(), Session: &v}
	var te *quizapi.TransportError
	switch {
	case errors.As(err, &te):
		resp.Detail = te.Detail
		respondJSON(w, http.StatusBadGateway, resp)
	case errors.Is(err, session.ErrEmptyQuestionList):
		respondJSON(w, http.StatusBadGateway, resp)
	default:
		respondJSON(w, http.StatusInternalServerError, resp)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
