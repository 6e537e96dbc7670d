package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/audioscribe/backend/internal/chunk"
)

const assemblyAIBaseURL = "https://api.assemblyai.com/v2"
const maxAssemblyAIPayload = 100 * 1024 * 1024

// AssemblyAIAdapter drives the AssemblyAI v2 batch flow: upload the
// segment bytes, create a transcript job, poll until it settles.
type AssemblyAIAdapter struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
}

func NewAssemblyAIAdapter(apiKey string) *AssemblyAIAdapter {
	return &AssemblyAIAdapter{
		baseURL:      assemblyAIBaseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		pollInterval: 3 * time.Second,
	}
}

func (a *AssemblyAIAdapter) Name() string { return "assemblyai" }

func (a *AssemblyAIAdapter) MaxPayloadBytes() int64 { return maxAssemblyAIPayload }

func (a *AssemblyAIAdapter) Supports(opt Option) bool {
	switch opt {
	case OptionPunctuation, OptionDiarization, OptionVocabulary,
		OptionProfanityFilter, OptionWordTimestamps, OptionEntityDetection:
		return true
	default:
		return false
	}
}

func (a *AssemblyAIAdapter) Transcribe(ctx context.Context, seg chunk.Segment, opts Options) (*Result, error) {
	uploadURL, err := a.upload(ctx, seg.Payload)
	if err != nil {
		return nil, err
	}

	id, err := a.createTranscript(ctx, uploadURL, opts)
	if err != nil {
		return nil, err
	}

	log.Printf("[assemblyai] segment %d: transcript %s created, polling", seg.Index, id)
	return a.poll(ctx, id)
}

func (a *AssemblyAIAdapter) upload(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/upload", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", transportError("assemblyai", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("assemblyai", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError("assemblyai", resp.StatusCode, body)
	}

	var decoded struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	return decoded.UploadURL, nil
}

func (a *AssemblyAIAdapter) createTranscript(ctx context.Context, audioURL string, opts Options) (string, error) {
	params := map[string]interface{}{
		"audio_url":        audioURL,
		"punctuate":        opts.Punctuate,
		"format_text":      opts.Punctuate,
		"entity_detection": true,
	}
	if opts.Diarize {
		params["speaker_labels"] = true
		if opts.SpeakerCount > 0 {
			params["speakers_expected"] = opts.SpeakerCount
		}
	}
	if opts.Language != "" && opts.Language != "auto" {
		params["language_code"] = opts.Language
	}
	if len(opts.Vocabulary) > 0 {
		params["word_boost"] = opts.Vocabulary
	}
	if opts.ProfanityFilter {
		params["filter_profanity"] = true
	}

	jsonBody, err := json.Marshal(params)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/transcript", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create transcript request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", transportError("assemblyai", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("assemblyai", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError("assemblyai", resp.StatusCode, body)
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("parse transcript response: %w", err)
	}
	return decoded.ID, nil
}

func (a *AssemblyAIAdapter) poll(ctx context.Context, id string) (*Result, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, "GET", a.baseURL+"/transcript/"+id, nil)
		if err != nil {
			return nil, fmt.Errorf("create poll request: %w", err)
		}
		req.Header.Set("Authorization", a.apiKey)

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return nil, transportError("assemblyai", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, transportError("assemblyai", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, apiError("assemblyai", resp.StatusCode, body)
		}

		var decoded AssemblyAIResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, fmt.Errorf("parse poll response: %w", err)
		}

		switch decoded.Status {
		case "completed":
			return &Result{Kind: KindAssemblyAI, AssemblyAI: &decoded}, nil
		case "error":
			return nil, &ProviderError{Provider: "assemblyai", StatusCode: 500, Message: decoded.Error}
		}
		// queued / processing: keep polling
	}
}
