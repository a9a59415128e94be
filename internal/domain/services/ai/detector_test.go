package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/pkg/logger"
)

func TestParseVerdict(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		v := parseVerdict(`{"scamDetected": true, "confidence": 0.9, "reasons": ["otp request"]}`)
		require.NotNil(t, v)
		assert.True(t, v.IsScam)
		assert.Equal(t, 0.9, v.Confidence)
		assert.Equal(t, []string{"otp request"}, v.Reasons)
	})

	t.Run("fenced JSON", func(t *testing.T) {
		v := parseVerdict("```json\n{\"scamDetected\": false, \"confidence\": 0.3}\n```")
		require.NotNil(t, v)
		assert.False(t, v.IsScam)
	})

	t.Run("JSON embedded in prose", func(t *testing.T) {
		v := parseVerdict(`Here is my analysis: {"scamDetected": true, "confidence": 0.7} Hope that helps.`)
		require.NotNil(t, v)
		assert.True(t, v.IsScam)
		assert.Equal(t, 0.7, v.Confidence)
	})

	t.Run("missing verdict key", func(t *testing.T) {
		assert.Nil(t, parseVerdict(`{"confidence": 0.9}`))
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Nil(t, parseVerdict("I could not analyze this conversation."))
		assert.Nil(t, parseVerdict(""))
	})
}

func TestDetectScam(t *testing.T) {
	log := logger.NewDevelopment()

	t.Run("returns verdict from chat endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			resp := map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{
						"content": `{"scamDetected": true, "confidence": 0.85, "reasons": ["urgency"]}`,
					}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer srv.Close()

		client := NewClient(config.LLMConfig{
			Enabled: true,
			APIKey:  "test-key",
			BaseURL: srv.URL,
		}, log)
		d := NewDetector(client, log)

		v := d.DetectScam(context.Background(), "scammer: share your otp")
		require.NotNil(t, v)
		assert.True(t, v.IsScam)
		assert.Equal(t, 0.85, v.Confidence)
	})

	t.Run("server error degrades to nil", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewClient(config.LLMConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, log)
		d := NewDetector(client, log)
		assert.Nil(t, d.DetectScam(context.Background(), "anything"))
	})

	t.Run("disabled client returns nil without calling out", func(t *testing.T) {
		client := NewClient(config.LLMConfig{Enabled: false}, log)
		d := NewDetector(client, log)
		assert.Nil(t, d.DetectScam(context.Background(), "anything"))
	})
}
