package openaichat

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/haiminh-dev/visadossier/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
// It satisfies ports.ModelClient.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
	exec        *resilience.Executor
}

type Option func(*Client)

// WithTemperature overrides the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithRateLimit caps outgoing requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithResilience wraps every request in the shared retry and breaker executor.
func WithResilience(exec *resilience.Executor) Option {
	return func(c *Client) { c.exec = exec }
}

// WithHTTPClient replaces the default transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.2,
		httpClient:  &http.Client{Timeout: 180 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, false, "chat")
}

func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	reply, err := c.complete(ctx, prompt, true, "chat_json")
	if err != nil {
		return "", err
	}
	return ExtractJSONObject(reply), nil
}

// DescribeImage sends the image as a data URL to a vision-capable model and
// returns the transcribed text. Satisfies extractor.VisionReader.
func (c *Client) DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	request := visionRequest{
		Model: c.model,
		Messages: []visionMessage{{
			Role: "user",
			Content: []visionPart{
				{Type: "text", Text: visionPromptText},
				{Type: "image_url", ImageURL: &visionImageURL{
					URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		Temperature: 0,
	}

	var response chatResponse
	call := func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("vision rate limit wait: %w", err)
			}
		}
		return c.postJSON(ctx, "/chat/completions", request, &response, "vision")
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, "vision", call, classifyChatError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("vision", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("vision response has no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

const visionPromptText = "Đọc toàn bộ chữ trong ảnh tài liệu này và trả về dưới dạng văn bản thuần, giữ nguyên ngôn ngữ gốc."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string, jsonMode bool, operation string) (string, error) {
	request := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}
	if jsonMode {
		request.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var response chatResponse
	call := func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s rate limit wait: %w", operation, err)
			}
		}
		return c.postJSON(ctx, "/chat/completions", request, &response, operation)
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, operation, call, classifyChatError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s response has no choices", operation)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// ExtractJSONObject trims markdown fences and surrounding prose, leaving the
// outermost JSON object. Returns the input unchanged if no braces are found.
func ExtractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
