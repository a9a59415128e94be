package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

func TestSanitizeReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "role prefix stripped",
			raw:  "User: Which account is this about?",
			want: "Which account is this about?",
		},
		{
			name: "wrapping quotes stripped",
			raw:  `"Can you share the UPI ID again?"`,
			want: "Can you share the UPI ID again?",
		},
		{
			name: "trailing stage direction removed",
			raw:  "Okay, where do I send it? [sounds worried]",
			want: "Okay, where do I send it?",
		},
		{
			name: "markdown emphasis removed",
			raw:  "I am **really** worried, what should I do?",
			want: "I am really worried, what should I do?",
		},
		{
			name: "newlines collapsed",
			raw:  "Wait.\nWhich link?",
			want: "Wait. Which link?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeReply(tt.raw))
		})
	}

	t.Run("long reply cut at sentence boundary", func(t *testing.T) {
		long := strings.Repeat("This sentence pads the reply out nicely. ", 12)
		got := sanitizeReply(long)
		assert.LessOrEqual(t, len(got), maxReplyLength)
		assert.True(t, strings.HasSuffix(got, "."))
	})

	t.Run("degenerate reply rejected", func(t *testing.T) {
		assert.Empty(t, sanitizeReply("ok"))
		assert.Empty(t, sanitizeReply("   "))
	})
}

func TestBuildContextPrompt(t *testing.T) {
	in := &models.Intelligence{
		PhoneNumbers: []string{"9876543210"},
		UpiIDs:       []string{"scammer@fakebank"},
	}
	prompt := buildContextPrompt(in, "scammer: pay me now", 4)

	assert.Contains(t, prompt, "[Turn 4 of conversation]")
	assert.Contains(t, prompt, "phone numbers: 9876543210")
	assert.Contains(t, prompt, "UPI IDs: scammer@fakebank")
	// Missing list prioritizes up to three absent categories.
	assert.Contains(t, prompt, "[PRIORITY: Try to get their bank account number, email address, website link or URL in this reply]")
	assert.Contains(t, prompt, "scammer: pay me now")
}

func TestFallbackReplyRotation(t *testing.T) {
	assert.NotEqual(t, fallbackReply(1), fallbackReply(2))
	assert.Equal(t, fallbackReply(1), fallbackReply(1+len(fallbackReplies)))
	// Out-of-range turns still return something usable.
	assert.NotEmpty(t, fallbackReply(0))
	assert.NotEmpty(t, fallbackReply(-3))
}

func TestGenerateReply(t *testing.T) {
	log := logger.NewDevelopment()

	t.Run("uses model output when available", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{
						"content": "Agent: \"Which branch should I visit?\"",
					}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer srv.Close()

		client := NewClient(config.LLMConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, log)
		g := NewReplyGenerator(client, log)

		sess := models.NewSession("s-reply")
		reply := g.GenerateReply(context.Background(), sess, "scammer: visit the branch", 1)
		assert.Equal(t, "Which branch should I visit?", reply)
	})

	t.Run("falls back when model is disabled", func(t *testing.T) {
		client := NewClient(config.LLMConfig{Enabled: false}, log)
		g := NewReplyGenerator(client, log)

		sess := models.NewSession("s-fb")
		reply := g.GenerateReply(context.Background(), sess, "scammer: hello", 2)
		require.NotEmpty(t, reply)
		assert.Equal(t, fallbackReply(2), reply)
	})

	t.Run("falls back on transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(config.LLMConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, log)
		g := NewReplyGenerator(client, log)

		sess := models.NewSession("s-err")
		reply := g.GenerateReply(context.Background(), sess, "scammer: hello", 3)
		assert.Equal(t, fallbackReply(3), reply)
	})
}
