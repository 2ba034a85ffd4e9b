package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"nutricoach-backend/internal/handlers"
	"nutricoach-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	profileHandler *handlers.ProfileHandler,
	frontendURL string,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Complete)
		r.Get("/profile", profileHandler.Get)
	})

	return r
}
