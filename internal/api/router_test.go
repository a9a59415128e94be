package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/api/handlers"
	"scamtrap-lab/internal/callback"
	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/services"
	"scamtrap-lab/internal/domain/services/ai"
	"scamtrap-lab/internal/domain/services/detection"
	"scamtrap-lab/internal/domain/services/extraction"
	"scamtrap-lab/internal/domain/services/intel"
	"scamtrap-lab/internal/infrastructure/sessions"
	"scamtrap-lab/pkg/logger"
)

// newTestServer wires the full stack with an in-memory store and the
// model client disabled, so detection runs on the lexical and
// structural tiers and replies come from the canned set.
func newTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	log := logger.NewDevelopment()

	cfg := config.Config{}
	cfg.Auth = config.AuthConfig{APIKey: apiKey, HeaderName: "X-API-Key"}
	cfg.Detection = config.DetectionConfig{
		LLMConfidenceThreshold: 0.5,
		SafetyNetTurn:          2,
		KeywordWeight:          0.15,
		MaxKeywordReasons:      8,
	}

	client := ai.NewClient(config.LLMConfig{Enabled: false}, log)
	merger := intel.NewMerger(extraction.NewExtractor(log), log)
	cascade := detection.NewCascade(cfg.Detection, log)
	engine := services.NewEngine(merger, cascade, log)
	dispatcher := callback.NewDispatcher(config.CallbackConfig{Enabled: false}, log)

	hp := services.NewHoneypot(
		engine, sessions.NewMemoryStore(),
		ai.NewDetector(client, log), ai.NewReplyGenerator(client, log),
		nil, dispatcher, nil, log,
	)

	h := handlers.NewHandlers(handlers.Dependencies{
		Honeypot: hp,
		Logger:   log,
	})

	srv := httptest.NewServer(NewRouter(cfg, h, nil, log).Setup())
	t.Cleanup(srv.Close)
	return srv
}

func postAnalyze(t *testing.T, srv *httptest.Server, key string, body map[string]any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/analyze", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postAnalyze(t, srv, "", map[string]any{
		"sessionId": "s-api-1",
		"message":   "Your SBI account is blocked, verify your account at http://sbi-verify.xyz",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["reply"])
}

func TestAnalyzeRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postAnalyze(t, srv, "", map[string]any{"sessionId": "s-api-2"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postAnalyze(t, srv, "", map[string]any{
		"sessionId": "s-api-3",
		"message":   "send the fee to merchant@ybl right away",
	})
	decode(t, resp)

	intelResp, err := srv.Client().Get(srv.URL + "/api/v1/sessions/s-api-3/intel")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, intelResp.StatusCode)

	body := decode(t, intelResp)
	intelBody, ok := body["intelligence"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, intelBody["upiIds"], "merchant@ybl")

	missing, err := srv.Client().Get(srv.URL + "/api/v1/sessions/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestSessionListing(t *testing.T) {
	srv := newTestServer(t, "")

	empty, err := srv.Client().Get(srv.URL + "/api/v1/sessions/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, empty.StatusCode)
	body := decode(t, empty)
	assert.EqualValues(t, 0, body["count"])

	for _, id := range []string{"s-list-1", "s-list-2"} {
		resp := postAnalyze(t, srv, "", map[string]any{
			"sessionId": id,
			"message":   "hello there",
		})
		decode(t, resp)
	}

	listed, err := srv.Client().Get(srv.URL + "/api/v1/sessions/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listed.StatusCode)
	body = decode(t, listed)
	assert.EqualValues(t, 2, body["count"])
	assert.ElementsMatch(t, []any{"s-list-1", "s-list-2"}, body["sessions"])
}

// A wrong key must look exactly like a successful analyze call.
func TestDecoyAuth(t *testing.T) {
	srv := newTestServer(t, "real-key")

	resp := postAnalyze(t, srv, "wrong-key", map[string]any{
		"sessionId": "s-api-4",
		"message":   "share otp now",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["reply"])

	// The decoyed request never reached the engine.
	check, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/sessions/s-api-4", nil)
	require.NoError(t, err)
	check.Header.Set("X-API-Key", "real-key")
	checkResp, err := srv.Client().Do(check)
	require.NoError(t, err)
	defer checkResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, checkResp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "healthy", body["status"])

	ready, err := srv.Client().Get(srv.URL + "/ready")
	require.NoError(t, err)
	defer ready.Body.Close()
	assert.Equal(t, http.StatusOK, ready.StatusCode)
}
