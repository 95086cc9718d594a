package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-quiz/internal/session"
)

type RouterConfig struct {
	CORSOrigins  []string
	AccessLog    bool
	MissingLimit int
	// Ready, when set, backs /readyz (typically the quiz service health probe).
	Ready func(ctx context.Context) error
}

func NewRouter(ctl *session.Controller, rc RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if rc.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rc.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if rc.Ready == nil {
			w.WriteHeader(200)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := rc.Ready(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		w.WriteHeader(200)
	})

	r.Route("/api", func(ar chi.Router) {
		MountSession(ar, ctl, rc.MissingLimit)
	})
	return r
}
