package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const OpenAIName = "openai"

// OllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama daemon.
// Point an OpenAIBackend at it to run against local models; starting the
// daemon itself is operational bootstrapping outside this package.
const OllamaBaseURL = "http://localhost:11434/v1"

// OpenAIConfig holds configuration for an OpenAI-compatible backend.
type OpenAIConfig struct {
	// Name overrides the backend identifier (default "openai"). Useful when
	// the same client type serves several endpoints ("ollama", "openai").
	Name string

	APIKey       string
	BaseURL      string // empty = hosted OpenAI
	DefaultModel string
	Timeout      time.Duration
	MaxRetries   int
	// RequestsPerMinute paces outgoing requests (0 = default).
	RequestsPerMinute int
}

// OpenAIBackend implements ModelBackend over any OpenAI-compatible chat
// completions endpoint, including a local Ollama daemon.
type OpenAIBackend struct {
	name         string
	defaultModel string
	client       openai.Client
	limiter      *RateLimiter
}

// NewOpenAIBackend creates an OpenAI-compatible backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	if cfg.Name == "" {
		cfg.Name = OpenAIName
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIBackend{
		name:         cfg.Name,
		defaultModel: cfg.DefaultModel,
		client:       openai.NewClient(opts...),
		limiter:      NewRateLimiter(cfg.RequestsPerMinute),
	}
}

// Name returns the backend identifier.
func (b *OpenAIBackend) Name() string {
	return b.name
}

// Complete sends a chat completion request.
func (b *OpenAIBackend) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = b.defaultModel
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			if len(m.Images) > 0 {
				parts := []openai.ChatCompletionContentPartUnionParam{
					openai.TextContentPart(m.Content),
				}
				for _, img := range m.Images {
					parts = append(parts, openai.ImageContentPart(
						openai.ChatCompletionContentPartImageImageURLParam{
							URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img),
						},
					))
				}
				msgs = append(msgs, openai.UserMessage(parts))
			} else {
				msgs = append(msgs, openai.UserMessage(m.Content))
			}
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	// Request a JSON object rather than a provider-specific schema wrapper;
	// callers validate against the canonical schema locally.
	if req.ResponseFormat != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	var opts []option.RequestOption
	if req.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(req.Timeout))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s chat completion failed: %w", b.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in %s response", b.name)
	}

	return &Completion{
		Content:          resp.Choices[0].Message.Content,
		Provider:         b.name,
		ModelUsed:        resp.Model,
		RequestID:        requestID,
		Attempts:         1,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
	}, nil
}

// Verify interface
var _ ModelBackend = (*OpenAIBackend)(nil)
