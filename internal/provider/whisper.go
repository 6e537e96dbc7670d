package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/audioscribe/backend/internal/chunk"
)

const defaultWhisperURL = "https://api.openai.com/v1/audio/transcriptions"
const maxWhisperPayload = 25 * 1024 * 1024 // 25MB upload limit

// WhisperAdapter talks to an OpenAI-compatible audio transcription
// endpoint (OpenAI Whisper, whisper.cpp server, faster-whisper).
type WhisperAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWhisperAdapter creates a whisper adapter. An empty baseURL targets
// the OpenAI API.
func NewWhisperAdapter(baseURL, apiKey string) *WhisperAdapter {
	if baseURL == "" {
		baseURL = defaultWhisperURL
	}
	return &WhisperAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

func (a *WhisperAdapter) Name() string { return "whisper" }

func (a *WhisperAdapter) MaxPayloadBytes() int64 { return maxWhisperPayload }

func (a *WhisperAdapter) Supports(opt Option) bool {
	switch opt {
	case OptionPunctuation, OptionWordTimestamps, OptionVocabulary:
		return true
	default:
		return false
	}
}

func (a *WhisperAdapter) Transcribe(ctx context.Context, seg chunk.Segment, opts Options) (*Result, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fmt.Sprintf("segment_%03d%s", seg.Index, payloadExt(seg.Payload)))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(seg.Payload); err != nil {
		return nil, fmt.Errorf("write audio payload: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}
	writer.WriteField("model", model)
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("temperature", "0.0")
	if opts.Language != "" && opts.Language != "auto" {
		writer.WriteField("language", opts.Language)
	}
	if len(opts.Vocabulary) > 0 {
		// Whisper has no vocabulary list; the prompt biases decoding
		// toward the given terms.
		writer.WriteField("prompt", strings.Join(opts.Vocabulary, ", "))
	}
	if opts.WordTimestamps {
		writer.WriteField("timestamp_granularities[]", "word")
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	log.Printf("[whisper] segment %d: sending %d bytes to %s", seg.Index, len(seg.Payload), a.baseURL)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError("whisper", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("whisper", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("whisper", resp.StatusCode, body)
	}

	var decoded WhisperResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parse whisper response: %w", err)
	}
	return &Result{Kind: KindWhisper, Whisper: &decoded}, nil
}
