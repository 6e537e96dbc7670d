package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobTranscribe JobType = "transcribe"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued transcription task
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	FilePath    string          `json:"file_path"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TranscribeParams are parameters for a transcription job
type TranscribeParams struct {
	FileName        string   `json:"file_name,omitempty"` // original upload name, before storage renaming
	Provider        string   `json:"provider"`            // "whisper", "assemblyai", "deepgram", "google"
	Model           string   `json:"model,omitempty"`     // provider-specific model name
	Language        string   `json:"language,omitempty"`  // BCP-47 tag, empty = provider default
	Punctuation     bool     `json:"punctuation"`
	Diarization     bool     `json:"diarization"`
	SpeakerCount    int      `json:"speaker_count,omitempty"`
	Vocabulary      []string `json:"vocabulary,omitempty"`
	ProfanityFilter bool     `json:"profanity_filter"`
	WordTimestamps  bool     `json:"word_timestamps"`
	DetectTopics    bool     `json:"detect_topics"`
	Redact          []string `json:"redact,omitempty"`
	Correct         bool     `json:"correct"` // run a cleanup pass after transcription
}

// TranscribeResult is the output of a successful transcription
type TranscribeResult struct {
	TranscriptID  int64   `json:"transcript_id"`
	RawPath       string  `json:"raw_path"`
	CorrectedPath string  `json:"corrected_path,omitempty"`
	Provider      string  `json:"provider"`
	ModelUsed     string  `json:"model_used"`
	Segments      int     `json:"segments"`
	Warning       string  `json:"warning,omitempty"`
	Duration      float64 `json:"duration"` // processing time in seconds
}

// JobHandler processes a job and returns its result payload. The context
// is cancelled when the job is cancelled or the queue shuts down.
// Implementations are provided by the transcribe package.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) (any, error)
