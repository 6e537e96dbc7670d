package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/audioscribe/backend/internal/chunk"
)

const googleSpeechURL = "https://speech.googleapis.com/v1/speech:recognize"

// Sync recognize rejects payloads over ~10MB / 60s of audio.
const maxGooglePayload = 10 * 1024 * 1024

// GoogleAdapter calls the Cloud Speech-to-Text v1 sync recognize REST
// endpoint with base64-inlined audio.
type GoogleAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGoogleAdapter(apiKey string) *GoogleAdapter {
	return &GoogleAdapter{
		baseURL:    googleSpeechURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (a *GoogleAdapter) Name() string { return "google" }

func (a *GoogleAdapter) MaxPayloadBytes() int64 { return maxGooglePayload }

func (a *GoogleAdapter) Supports(opt Option) bool {
	switch opt {
	case OptionPunctuation, OptionDiarization, OptionVocabulary,
		OptionProfanityFilter, OptionWordTimestamps:
		return true
	default:
		return false
	}
}

type googleConfig struct {
	Encoding                   string             `json:"encoding,omitempty"`
	LanguageCode               string             `json:"languageCode"`
	EnableAutomaticPunctuation bool               `json:"enableAutomaticPunctuation"`
	EnableWordTimeOffsets      bool               `json:"enableWordTimeOffsets"`
	ProfanityFilter            bool               `json:"profanityFilter,omitempty"`
	Model                      string             `json:"model,omitempty"`
	SpeechContexts             []googleContext    `json:"speechContexts,omitempty"`
	DiarizationConfig          *googleDiarization `json:"diarizationConfig,omitempty"`
}

type googleContext struct {
	Phrases []string `json:"phrases"`
}

type googleDiarization struct {
	EnableSpeakerDiarization bool `json:"enableSpeakerDiarization"`
	MaxSpeakerCount          int  `json:"maxSpeakerCount,omitempty"`
}

func (a *GoogleAdapter) Transcribe(ctx context.Context, seg chunk.Segment, opts Options) (*Result, error) {
	lang := opts.Language
	if lang == "" || lang == "auto" {
		lang = "en-US"
	}

	cfg := googleConfig{
		LanguageCode:               lang,
		EnableAutomaticPunctuation: opts.Punctuate,
		EnableWordTimeOffsets:      opts.WordTimestamps,
		ProfanityFilter:            opts.ProfanityFilter,
		Model:                      opts.Model,
	}
	// WAV/FLAC headers let the API infer the encoding; MP3 must be named.
	if payloadExt(seg.Payload) == ".mp3" {
		cfg.Encoding = "MP3"
	}
	if len(opts.Vocabulary) > 0 {
		cfg.SpeechContexts = []googleContext{{Phrases: opts.Vocabulary}}
	}
	if opts.Diarize {
		cfg.DiarizationConfig = &googleDiarization{
			EnableSpeakerDiarization: true,
			MaxSpeakerCount:          opts.SpeakerCount,
		}
	}

	reqBody := map[string]interface{}{
		"config": cfg,
		"audio": map[string]string{
			"content": base64.StdEncoding.EncodeToString(seg.Payload),
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	reqURL := a.baseURL + "?key=" + a.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Printf("[google] segment %d: sending %d bytes (lang=%s)", seg.Index, len(seg.Payload), lang)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError("google", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("google", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("google", resp.StatusCode, body)
	}

	var decoded GoogleResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parse google response: %w", err)
	}
	return &Result{Kind: KindGoogle, Google: &decoded}, nil
}
