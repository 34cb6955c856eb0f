package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterChatModel(t *testing.T) {
	t.Run("缺少API密钥", func(t *testing.T) {
		_, err := NewOpenRouterChatModel("", "m", "")
		assert.Error(t, err)
	})

	t.Run("默认值", func(t *testing.T) {
		m, err := NewOpenRouterChatModel("key", "", "")
		require.NoError(t, err)
		assert.Equal(t, defaultModelName, m.modelName)
		assert.Equal(t, defaultOpenRouterURL, m.apiURL)
	})

	t.Run("基础URL自动补全路径", func(t *testing.T) {
		m, err := NewOpenRouterChatModel("key", "m", "https://openrouter.ai/api/v1")
		require.NoError(t, err)
		assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", m.apiURL)
	})
}

func TestOpenRouterChatModel_Generate(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"object": "chat.completion",
			"model": "test/model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "the reply"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	m, err := NewOpenRouterChatModel("sk-test", "test/model", server.URL,
		WithAttribution("https://example.com", "resume-processor"))
	require.NoError(t, err)

	reply, err := m.Generate(context.Background(), []*schema.Message{
		{Role: "system", Content: "you are a test"},
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, "the reply", reply.Content)
	assert.Equal(t, schema.RoleType("assistant"), reply.Role)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "https://example.com", gotReferer)
	assert.Equal(t, "resume-processor", gotTitle)
	assert.Equal(t, "test/model", gotBody["model"])
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenRouterChatModel_GenerateErrors(t *testing.T) {
	t.Run("非200状态", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		m, err := NewOpenRouterChatModel("sk-test", "test/model", server.URL)
		require.NoError(t, err)

		_, err = m.Generate(context.Background(), []*schema.Message{{Role: "user", Content: "x"}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("空choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		m, err := NewOpenRouterChatModel("sk-test", "test/model", server.URL)
		require.NoError(t, err)

		_, err = m.Generate(context.Background(), []*schema.Message{{Role: "user", Content: "x"}})
		assert.Error(t, err)
	})
}
