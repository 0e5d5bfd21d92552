package ark

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"docent/internal/config"
)

const (
	defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	defaultModel   = "doubao-seed-1-6-flash-250615"
)

// Client Ark 客户端封装
// 用于调用火山引擎的 Ark API（豆包大模型），使用官方 volcengine-go-sdk
type Client struct {
	client      *arkruntime.Client
	model       string
	maxTokens   int
	temperature float64
	topP        float64
}

// NewClient 创建 Ark 客户端（使用官方 SDK）
func NewClient(cfg *config.AIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("Ark API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens := cfg.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 32 * 1024
	}

	return &Client{
		client:      arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(baseURL)),
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: cfg.Options.Temperature,
		topP:        cfg.Options.TopP,
	}, nil
}

// Model 返回默认模型名
func (c *Client) Model() string {
	return c.model
}

// CreateChatCompletionSimple 单轮对话（只需要 prompt），返回第一个候选的文本
func (c *Client) CreateChatCompletionSimple(ctx context.Context, prompt string) (string, error) {
	input := &model.ChatCompletionRequest{
		Model: c.model,
		Messages: []*model.ChatCompletionMessage{
			{
				Role:    "user",
				Content: &model.ChatCompletionMessageContent{StringValue: &prompt},
			},
		},
		MaxTokens: c.maxTokens,
	}
	if c.temperature > 0 {
		input.Temperature = float32(c.temperature)
	}
	if c.topP > 0 {
		input.TopP = float32(c.topP)
	}

	output, err := c.client.CreateChatCompletion(ctx, input)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("failed to call Ark ChatCompletion API")
		return "", fmt.Errorf("Ark API call failed: %w", err)
	}

	if len(output.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	choice := output.Choices[0]
	if choice.Message.Content == nil || choice.Message.Content.StringValue == nil {
		return "", fmt.Errorf("empty content in response")
	}

	log.Debug().
		Str("model", c.model).
		Int("total_tokens", output.Usage.TotalTokens).
		Msg("Ark ChatCompletion finished")

	return *choice.Message.Content.StringValue, nil
}
