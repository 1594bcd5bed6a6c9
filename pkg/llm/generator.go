package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/personascope/personascope/pkg/config"
	"github.com/personascope/personascope/pkg/domain"
)

// Generator produces user personas from content items via an
// OpenAI-compatible chat completion endpoint
type Generator struct {
	client    *openai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewGenerator creates a new persona generator
func NewGenerator(cfg config.LLMConfig) *Generator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	// use custom system prompt if provided, otherwise use default
	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &Generator{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// Generate requests a persona for the given content items and parses the
// response. Transport failures after the configured retries abort the
// profile; an unparseable response does not, it yields the fallback persona.
func (g *Generator) Generate(ctx context.Context, items []domain.ContentItem) (domain.Persona, error) {
	raw, err := g.Complete(ctx, FormatContent(items, g.config.MaxPromptChars))
	if err != nil {
		return domain.Persona{}, err
	}
	return ParsePersona(raw), nil
}

// Complete sends the prompt pair and returns the model's raw response text.
// It retries transient transport failures with backoff but does not inspect
// the response structure.
func (g *Generator) Complete(ctx context.Context, contentBlock string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Temperature: float32(g.config.Temperature),
		MaxTokens:   g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: g.systemMsg,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: strings.ReplaceAll(userPromptTemplate, contentPlaceholder, contentBlock),
			},
		},
	}

	var content string
	retrier := repeater.NewBackoff(g.config.Retries, time.Second, repeater.WithMaxDelay(10*time.Second))
	err := retrier.Do(ctx, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()

		resp, err := g.client.CreateChatCompletion(reqCtx, req)
		if err != nil {
			log.Printf("[WARN] llm request attempt failed: %v", err)
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no response from llm")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("persona generation failed: %w", err)
	}

	return content, nil
}
