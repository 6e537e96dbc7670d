package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/audioscribe/backend/internal/api/handlers"
	"github.com/audioscribe/backend/internal/api/middleware"
	"github.com/audioscribe/backend/internal/config"
	"github.com/audioscribe/backend/internal/db"
	"github.com/audioscribe/backend/internal/job"
	"github.com/audioscribe/backend/internal/storage"
	"github.com/audioscribe/backend/internal/transcribe"
)

func NewRouter(cfg *config.Config, database *db.Database, store *storage.Store, service *transcribe.Service, jobQueue *job.JobQueue) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	transcribeHandler := handlers.NewTranscribeHandler(service, store, jobQueue)
	transcriptsHandler := handlers.NewTranscriptsHandler(database, store)
	jobHandler := handlers.NewJobHandler(jobQueue)
	settingsHandler := handlers.NewSettingsHandler(database)
	wsHandler := handlers.NewWSHandler()
	jobQueue.Subscribe(wsHandler.Listener())

	uploadLimiter := middleware.NewRateLimiter(30, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Providers
		r.Get("/providers", transcribeHandler.ListProviders)

		// Transcription (upload sets its own body limit)
		r.With(uploadLimiter.Handler).Post("/transcribe", transcribeHandler.Create)

		// JSON routes get a small body cap
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(1 << 20))

			// Jobs
			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.Post("/jobs/{id}/retry", jobHandler.RetryJob)
			r.Delete("/jobs/{id}", jobHandler.CancelJob)

			// Transcripts
			r.Get("/transcripts", transcriptsHandler.List)
			r.Get("/transcripts/{id}", transcriptsHandler.Get)
			r.Delete("/transcripts/{id}", transcriptsHandler.Delete)
			r.Get("/transcripts/download/{name}", transcriptsHandler.Download)

			// Settings
			r.Get("/settings", settingsHandler.GetSettings)
			r.Put("/settings", settingsHandler.UpdateSettings)
		})

		// Live job progress
		r.Get("/ws/jobs", wsHandler.Serve)
	})

	return r
}
