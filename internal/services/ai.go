package services

import (
	"context"
	"log"
	"strings"
	"time"

	"quiz-ai-backend/internal/metrics"

	"github.com/go-resty/resty/v2"
)

// TextGenerator turns a plain-text prompt into plain-text output. Prompt
// construction and reply parsing stay with the callers.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIService talks to an OpenAI-compatible chat completions endpoint.
type AIService struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewAIService(apiKey, apiURL, model string, timeout time.Duration) *AIService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &AIService{
		client: client,
		apiKey: apiKey,
		model:  model,
	}
}

func (s *AIService) IsAvailable() bool {
	return s.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const assistantPrompt = "You are a helpful teaching assistant for a school quiz platform. Follow the output format requested by the user exactly."

func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.IsAvailable() {
		return "", newError(KindTransientUpstream, nil, "AI generation is not configured")
	}

	var out chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: s.model,
			Messages: []chatMessage{
				{Role: "system", Content: assistantPrompt},
				{Role: "user", Content: prompt},
			},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", newError(KindTransientUpstream, err, "AI request failed")
	}

	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", newError(KindTransientUpstream, nil, "AI returned status %d: %s", resp.StatusCode(), msg)
	}

	if out.Error != nil {
		return "", newError(KindTransientUpstream, nil, "AI error: %s", out.Error.Message)
	}

	if len(out.Choices) == 0 {
		return "", newError(KindUpstreamFormat, nil, "empty response from AI")
	}

	return out.Choices[0].Message.Content, nil
}

// generate wraps a generator call with metrics and logging.
func generate(ctx context.Context, gen TextGenerator, purpose, prompt string) (string, error) {
	if gen == nil {
		return "", newError(KindTransientUpstream, nil, "AI generation is not configured")
	}

	start := time.Now()
	text, err := gen.Generate(ctx, prompt)
	metrics.AIDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		log.Printf("ai: %s request failed after %s: %v", purpose, time.Since(start).Round(time.Millisecond), err)
	}
	metrics.AIRequests.WithLabelValues(purpose, status).Inc()

	if err != nil {
		if KindOf(err) == KindInternal {
			err = newError(KindTransientUpstream, err, "AI request failed")
		}
		return "", err
	}
	return text, nil
}
