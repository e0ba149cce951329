package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"sop-agent/internal/config"
)

// ErrNotConfigured is returned when the completion model credentials
// are missing. The caller surfaces it to the user and blocks answering;
// the process keeps running.
var ErrNotConfigured = errors.New("completion model not configured: set api key and endpoint")

// New builds the completion model client from config. Called on every
// query so configuration changes apply without a restart.
func New(cfg config.LLMConfig) (llms.Model, error) {
	if cfg.APIKey == "" || cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithModel(cfg.Deployment),
	}
	if cfg.APIType == "azure" {
		opts = append(opts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(cfg.APIVersion),
		)
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion model: %w", err)
	}
	return model, nil
}

// Generate runs a system+user exchange at the given temperature and
// returns the first choice's text.
func Generate(ctx context.Context, model llms.Model, system, user string, temperature float64) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	res, err := model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", errors.New("completion model returned no choices")
	}
	return res.Choices[0].Content, nil
}
