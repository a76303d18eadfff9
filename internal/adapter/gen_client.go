package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"

	m "covforge.dev/pkg/covforge/internal/model"
)

// GenClient is an optional generative-text backend exposed as a pluggable
// alternate source of scenario bodies. The engine functions with this
// backend entirely absent.
type GenClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenClient talks to any OpenAI-compatible completion endpoint,
// including a local Ollama server via its compatibility API.
type OpenAIGenClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenClient constructs a client from the engine configuration. The
// API key comes from the COVFORGE_API_KEY or OPENAI_API_KEY environment
// variables; local backends accept any non-empty key.
func NewOpenAIGenClient(cfg m.EngineConfig) (*OpenAIGenClient, error) {
	apiKey := os.Getenv("COVFORGE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" && cfg.GeneratorBaseURL == "" {
		return nil, fmt.Errorf("generator backend requested but no API key set")
	}

	if apiKey == "" {
		// Local OpenAI-compatible servers ignore the key but the client
		// requires one.
		apiKey = "local"
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.GeneratorBaseURL != "" {
		clientCfg.BaseURL = cfg.GeneratorBaseURL
	}

	modelName := cfg.GeneratorModel
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	slog.Info("Initializing generator backend", "model", modelName, "base_url", clientCfg.BaseURL)

	return &OpenAIGenClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  modelName,
	}, nil
}

// Generate sends the prompt and returns the raw completion text.
func (c *OpenAIGenClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You generate compilable C++ unit tests. Output only code."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generator backend call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generator backend returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
