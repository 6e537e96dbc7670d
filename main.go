package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/audioscribe/backend/internal/api"
	"github.com/audioscribe/backend/internal/config"
	"github.com/audioscribe/backend/internal/correct"
	"github.com/audioscribe/backend/internal/db"
	"github.com/audioscribe/backend/internal/job"
	"github.com/audioscribe/backend/internal/provider"
	"github.com/audioscribe/backend/internal/storage"
	"github.com/audioscribe/backend/internal/transcribe"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	store, err := storage.NewStore(cfg.UploadPath, cfg.OutputPath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	registry := buildRegistry(cfg, database)
	if len(registry.Names()) == 0 {
		log.Fatal("No transcription providers configured. Set DEEPGRAM_API_KEY, ASSEMBLYAI_API_KEY, OPENAI_API_KEY or GOOGLE_API_KEY, or store keys via the settings API.")
	}
	log.Printf("Providers: %s", strings.Join(registry.Names(), ", "))

	var corrector *correct.Corrector
	if key := database.GetSetting("openai_api_key", cfg.Providers.OpenAIAPIKey); key != "" {
		corrector = correct.NewCorrector(key, cfg.Providers.CorrectionModel)
	}

	service := transcribe.NewService(registry, store, database, corrector, cfg.Concurrency)

	jobQueue := job.NewJobQueue(database.DB())
	defer jobQueue.Stop()
	jobQueue.RegisterHandler(job.JobTranscribe, service.Handler())

	router := api.NewRouter(cfg, database, store, service, jobQueue)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: router}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("Starting server on %s", addr)
	log.Printf("Upload path: %s, output path: %s", cfg.UploadPath, cfg.OutputPath)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildRegistry assembles the adapters whose credentials are available.
// Keys stored via the settings API take precedence over env/providers.yaml.
func buildRegistry(cfg *config.Config, database *db.Database) *provider.Registry {
	whisperKey := database.GetSetting("openai_api_key", cfg.Providers.WhisperAPIKey)
	whisperURL := database.GetSetting("whisper_url", cfg.Providers.WhisperURL)
	assemblyKey := database.GetSetting("assemblyai_api_key", cfg.Providers.AssemblyAIKey)
	deepgramKey := database.GetSetting("deepgram_api_key", cfg.Providers.DeepgramAPIKey)
	googleKey := database.GetSetting("google_api_key", cfg.Providers.GoogleAPIKey)

	var adapters []provider.Adapter
	if whisperKey != "" || whisperURL != "" {
		adapters = append(adapters, provider.NewWhisperAdapter(whisperURL, whisperKey))
	}
	if assemblyKey != "" {
		adapters = append(adapters, provider.NewAssemblyAIAdapter(assemblyKey))
	}
	if deepgramKey != "" {
		adapters = append(adapters, provider.NewDeepgramAdapter(deepgramKey))
	}
	if googleKey != "" {
		adapters = append(adapters, provider.NewGoogleAdapter(googleKey))
	}
	return provider.NewRegistry(adapters...)
}
