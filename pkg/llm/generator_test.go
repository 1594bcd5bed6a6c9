package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personascope/personascope/pkg/config"
	"github.com/personascope/personascope/pkg/domain"
)

func testLLMConfig(endpoint string) config.LLMConfig {
	return config.LLMConfig{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		Model:          "test-model",
		Temperature:    0.1,
		MaxTokens:      1024,
		Timeout:        5 * time.Second,
		Retries:        1,
		MaxPromptChars: 48000,
	}
}

func TestGenerator_Generate(t *testing.T) {
	personaJSON := validPersonaJSON(t, nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "persona analyst")
		assert.Contains(t, req.Messages[1].Content, "=== POST 1 ===")
		assert.Contains(t, req.Messages[1].Content, "EXACT JSON format")
		assert.NotContains(t, req.Messages[1].Content, contentPlaceholder)

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "Here is the persona:\n" + personaJSON}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := NewGenerator(testLLMConfig(server.URL + "/v1"))

	items := []domain.ContentItem{
		{Title: "a post", Content: "post body long enough", Subreddit: "golang", Kind: domain.KindPost},
	}
	persona, err := gen.Generate(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, "Tech Professional", persona.Name)
	assert.Equal(t, "The Creator", persona.Archetype)
}

func TestGenerator_Generate_UnparseableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "sorry, no json today"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := NewGenerator(testLLMConfig(server.URL + "/v1"))

	// unparseable response is not an error, it degrades to the fallback persona
	persona, err := gen.Generate(context.Background(), []domain.ContentItem{{Content: "c", Kind: domain.KindPost}})
	require.NoError(t, err)
	assert.Equal(t, "Unknown User", persona.Name)
}

func TestGenerator_Generate_TransportFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testLLMConfig(server.URL + "/v1")
	cfg.Retries = 2
	gen := NewGenerator(cfg)

	_, err := gen.Generate(context.Background(), []domain.ContentItem{{Content: "c", Kind: domain.KindPost}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persona generation failed")
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestGenerator_CustomSystemPrompt(t *testing.T) {
	cfg := testLLMConfig("")
	cfg.SystemPrompt = "You are a terse analyst."
	gen := NewGenerator(cfg)
	assert.Equal(t, "You are a terse analyst.", gen.systemMsg)

	gen = NewGenerator(testLLMConfig(""))
	assert.Contains(t, gen.systemMsg, "expert user researcher")
}
