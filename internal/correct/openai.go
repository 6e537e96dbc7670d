package correct

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an expert editor. You will receive a raw speech-to-text transcript. ` +
	`Correct spelling, punctuation and casing, fix obvious mis-recognitions using surrounding context, ` +
	`and remove filler words. Do not summarize, do not add content, and preserve the speaker's wording ` +
	`and meaning. Return only the corrected transcript text.`

// Correction is the outcome of one correction pass over a transcript.
type Correction struct {
	Original  string    `json:"original"`
	Corrected string    `json:"corrected"`
	ModelUsed string    `json:"model_used"`
	Timestamp time.Time `json:"timestamp"`
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Corrector runs transcripts through an OpenAI chat model for cleanup.
type Corrector struct {
	client  chatClient
	model   string
	retries int
	wait    time.Duration
}

func NewCorrector(apiKey, model string) *Corrector {
	if model == "" {
		model = openai.GPT4o
	}
	return &Corrector{
		client:  openai.NewClient(apiKey),
		model:   model,
		retries: 2,
		wait:    3 * time.Second,
	}
}

// Correct sends the transcript text for cleanup and returns the edited
// version. An empty model falls back to the corrector's default. Empty
// input is returned as-is without an API call.
func (c *Corrector) Correct(ctx context.Context, text, model string) (*Correction, error) {
	if model == "" {
		model = c.model
	}
	if strings.TrimSpace(text) == "" {
		return &Correction{Original: text, Corrected: text, ModelUsed: model, Timestamp: time.Now().UTC()}, nil
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			log.Printf("[correct] attempt %d failed (%v), retrying after %s", attempt, err, c.wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.wait):
			}
		}
		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("correction request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("correction returned no choices")
	}

	corrected := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("[correct] corrected transcript: %d -> %d characters (model %s)", len(text), len(corrected), model)

	return &Correction{
		Original:  text,
		Corrected: corrected,
		ModelUsed: model,
		Timestamp: time.Now().UTC(),
	}, nil
}
