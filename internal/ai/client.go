package ai

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/sashabaranov/go-openai"
	"log/slog"
)

// ErrNoChoices is returned when the model answered with an empty choice list.
var ErrNoChoices = errors.NewSentinel("completion has no choices")

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a local compatible server. Empty means OpenAI.
	BaseURL string
}

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(cfg Config) *Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo1106
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

const MaxTokens = 512

func (c *Client) Model() string {
	return c.model
}

// SyncCompletion returns the content of the first choice.
func (c *Client) SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", c.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrNoChoices, "read chat completion", slog.String("model", c.model))
	}
	return completion.Choices[0].Message.Content, nil
}

// Ping checks that the API is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return errors.Wrap(err, "list models")
	}
	return nil
}
