package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/audioscribe/backend/internal/chunk"
)

const deepgramListenURL = "https://api.deepgram.com/v1/listen"
const maxDeepgramPayload = 100 * 1024 * 1024

// DeepgramAdapter posts raw audio bytes to the prerecorded /v1/listen
// endpoint with feature flags carried as query parameters.
type DeepgramAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewDeepgramAdapter(apiKey string) *DeepgramAdapter {
	return &DeepgramAdapter{
		baseURL:    deepgramListenURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (a *DeepgramAdapter) Name() string { return "deepgram" }

func (a *DeepgramAdapter) MaxPayloadBytes() int64 { return maxDeepgramPayload }

func (a *DeepgramAdapter) Supports(opt Option) bool {
	switch opt {
	case OptionPunctuation, OptionDiarization, OptionVocabulary,
		OptionProfanityFilter, OptionWordTimestamps, OptionEntityDetection,
		OptionTopicDetection, OptionRedaction:
		return true
	default:
		return false
	}
}

func (a *DeepgramAdapter) Transcribe(ctx context.Context, seg chunk.Segment, opts Options) (*Result, error) {
	model := opts.Model
	if model == "" {
		model = "nova-2"
	}

	params := url.Values{}
	params.Set("model", model)
	params.Set("punctuate", strconv.FormatBool(opts.Punctuate))
	params.Set("diarize", strconv.FormatBool(opts.Diarize))
	params.Set("smart_format", "true")
	params.Set("detect_entities", "true")
	if opts.Language != "" && opts.Language != "auto" {
		params.Set("language", opts.Language)
	}
	if opts.ProfanityFilter {
		params.Set("profanity_filter", "true")
	}
	if opts.DetectTopics {
		params.Set("detect_topics", "true")
		params.Set("utterances", "true")
	}
	for _, term := range opts.Redact {
		params.Add("redact", term)
	}
	for _, term := range opts.Vocabulary {
		params.Add("keywords", term)
	}

	reqURL := a.baseURL + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(seg.Payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+a.apiKey)
	httpReq.Header.Set("Content-Type", "audio/"+strings.TrimPrefix(payloadExt(seg.Payload), "."))

	log.Printf("[deepgram] segment %d: sending %d bytes (model=%s)", seg.Index, len(seg.Payload), model)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError("deepgram", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("deepgram", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("deepgram", resp.StatusCode, body)
	}

	var decoded DeepgramResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parse deepgram response: %w", err)
	}
	return &Result{Kind: KindDeepgram, Deepgram: &decoded}, nil
}
