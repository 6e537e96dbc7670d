package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/audioscribe/backend/internal/batch"
	"github.com/audioscribe/backend/internal/chunk"
	"github.com/audioscribe/backend/internal/correct"
	"github.com/audioscribe/backend/internal/db"
	"github.com/audioscribe/backend/internal/job"
	"github.com/audioscribe/backend/internal/provider"
	"github.com/audioscribe/backend/internal/storage"
	"github.com/audioscribe/backend/internal/transcript"
)

// Service ties the transcription pipeline together: probe the upload,
// plan segments, run the batch through the chosen provider, persist the
// outputs and optionally run a correction pass.
type Service struct {
	registry     *provider.Registry
	store        *storage.Store
	database     *db.Database
	corrector    *correct.Corrector
	orchestrator *batch.Orchestrator
}

func NewService(registry *provider.Registry, store *storage.Store, database *db.Database, corrector *correct.Corrector, concurrency int) *Service {
	orchestrator := batch.NewOrchestrator()
	if concurrency > 0 {
		orchestrator.Concurrency = concurrency
	}
	return &Service{
		registry:     registry,
		store:        store,
		database:     database,
		corrector:    corrector,
		orchestrator: orchestrator,
	}
}

// Providers lists the registered provider names.
func (s *Service) Providers() []string {
	return s.registry.Names()
}

// ProviderInfo describes a registered provider for the API.
type ProviderInfo struct {
	Name            string   `json:"name"`
	MaxPayloadBytes int64    `json:"max_payload_bytes"`
	Supports        []string `json:"supports"`
}

// ProviderInfo returns the registered providers with their payload
// limits and supported options.
func (s *Service) ProviderInfo() []ProviderInfo {
	names := s.registry.Names()
	infos := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		adapter, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		var supports []string
		for _, opt := range []provider.Option{
			provider.OptionPunctuation,
			provider.OptionDiarization,
			provider.OptionVocabulary,
			provider.OptionProfanityFilter,
			provider.OptionWordTimestamps,
			provider.OptionEntityDetection,
			provider.OptionTopicDetection,
			provider.OptionRedaction,
		} {
			if adapter.Supports(opt) {
				supports = append(supports, string(opt))
			}
		}
		infos = append(infos, ProviderInfo{
			Name:            adapter.Name(),
			MaxPayloadBytes: adapter.MaxPayloadBytes(),
			Supports:        supports,
		})
	}
	return infos
}

// ApplyDefaults fills unset request parameters from stored settings.
// The provider stays empty when neither the request nor the
// default_provider setting names one; callers reject that case.
func (s *Service) ApplyDefaults(params *job.TranscribeParams) {
	if params.Provider == "" {
		params.Provider = s.database.GetSetting("default_provider", "")
	}
	if params.Language == "" {
		params.Language = s.database.GetSetting("default_language", "")
	}
	if params.Model == "" && params.Provider != "" {
		params.Model = s.database.GetSetting(params.Provider+"_model", "")
	}
}

// Preflight validates an upload against the chosen provider without
// submitting anything: the format must be probeable and splittable
// within the provider's payload limit, and every requested option must
// be supported.
func (s *Service) Preflight(fileName string, data []byte, params job.TranscribeParams) error {
	file, err := chunk.Probe(fileName, data)
	if err != nil {
		return err
	}
	adapter, err := s.registry.Get(params.Provider)
	if err != nil {
		return err
	}
	if _, err := chunk.Plan(file, adapter.MaxPayloadBytes()); err != nil {
		return err
	}
	opts := toOptions(params)
	if err := opts.Validate(); err != nil {
		return err
	}
	return provider.CheckSupport(adapter, opts)
}

// Handler returns the job queue handler for transcription jobs.
func (s *Service) Handler() job.JobHandler {
	return func(ctx context.Context, j *job.Job, updateProgress func(float64)) (any, error) {
		var params job.TranscribeParams
		if err := json.Unmarshal(j.Params, &params); err != nil {
			return nil, fmt.Errorf("parse job params: %w", err)
		}
		return s.Run(ctx, j.ID, j.FilePath, params, updateProgress)
	}
}

// Run executes one transcription job end to end.
func (s *Service) Run(ctx context.Context, jobID, filePath string, params job.TranscribeParams, updateProgress func(float64)) (*job.TranscribeResult, error) {
	started := time.Now()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	// Probe under the name the user uploaded; the stored path carries a
	// job ID prefix that must not leak into the transcript metadata.
	origName := params.FileName
	if origName == "" {
		origName = filepath.Base(filePath)
	}
	file, err := chunk.Probe(origName, data)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.Get(params.Provider)
	if err != nil {
		return nil, err
	}

	segments, err := chunk.Plan(file, adapter.MaxPayloadBytes())
	if err != nil {
		return nil, err
	}
	log.Printf("[transcribe] job %s: %s (%d bytes, %s) -> %d segments via %s",
		jobID, file.Name, file.Size(), file.Format, len(segments), adapter.Name())

	opts := toOptions(params)

	onProgress := func(p transcript.Progress) {
		updateProgress(float64(p.Percentage))
	}

	tr, err := s.orchestrator.Run(ctx, file, segments, adapter, opts, onProgress, batch.ContextToken{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	if tr.Warning != "" {
		log.Printf("[transcribe] job %s: %s", jobID, tr.Warning)
	}

	// Output files are named after the stored upload so repeated uploads
	// of the same file never overwrite each other.
	outputBase := filepath.Base(filePath)
	rawPath, err := s.store.SaveRaw(outputBase, tr)
	if err != nil {
		return nil, err
	}

	result := &job.TranscribeResult{
		RawPath:   rawPath,
		Provider:  adapter.Name(),
		ModelUsed: tr.Metadata.ModelUsed,
		Segments:  len(segments),
		Warning:   tr.Warning,
	}

	if params.Correct && s.corrector != nil {
		model := s.database.GetSetting("correction_model", "")
		correction, err := s.corrector.Correct(ctx, tr.Text(), model)
		if err != nil {
			// The raw transcript is already saved; a failed cleanup pass
			// downgrades to a warning instead of failing the job.
			log.Printf("[transcribe] job %s: correction failed: %v", jobID, err)
			result.Warning = appendWarning(result.Warning, fmt.Sprintf("correction failed: %v", err))
		} else {
			correctedPath, err := s.store.SaveCorrected(outputBase, correction)
			if err != nil {
				return nil, err
			}
			result.CorrectedPath = correctedPath
		}
	}

	rec := &db.TranscriptRecord{
		JobID:         jobID,
		FileName:      file.Name,
		Provider:      adapter.Name(),
		Model:         tr.Metadata.ModelUsed,
		RawPath:       rawPath,
		CorrectedPath: result.CorrectedPath,
		Warning:       result.Warning,
	}
	id, err := s.database.CreateTranscript(rec)
	if err != nil {
		return nil, fmt.Errorf("record transcript: %w", err)
	}
	result.TranscriptID = id
	result.Duration = time.Since(started).Seconds()

	log.Printf("[transcribe] job %s: done in %.1fs (transcript %d)", jobID, result.Duration, id)
	return result, nil
}

func toOptions(params job.TranscribeParams) provider.Options {
	return provider.Options{
		Punctuate:       params.Punctuation,
		Diarize:         params.Diarization,
		SpeakerCount:    params.SpeakerCount,
		Language:        params.Language,
		Vocabulary:      params.Vocabulary,
		Model:           params.Model,
		ProfanityFilter: params.ProfanityFilter,
		WordTimestamps:  params.WordTimestamps,
		DetectTopics:    params.DetectTopics,
		Redact:          params.Redact,
	}
}

func appendWarning(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}
