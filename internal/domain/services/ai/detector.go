package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

const detectorSystemPrompt = `You are a scam detection system.

Analyze the conversation and decide if it contains scam intent.

Look for these red flags:
- Requests for bank account, UPI, OTP, password, CVV, or personal info
- Threats about account suspension, blocking, or penalties
- Urgency language ("act now", "immediately", "limited time")
- Fake authority claims (bank officer, RBI, customer care, police)
- Suspicious links, download requests, or payment demands
- Prize/lottery/cashback schemes requiring upfront payment
- Requests to install remote access tools (AnyDesk, TeamViewer)
- Moving conversation to WhatsApp/Telegram
- Fake KYC verification or identity verification requests

Return ONLY valid JSON in this format:

{
  "scamDetected": true or false,
  "confidence": number between 0 and 1,
  "reasons": ["reason1", "reason2"]
}

Do not add explanations outside the JSON.`

var (
	verdictObjectRegex = regexp.MustCompile(`(?s)\{[^{}]*"scamDetected"[^{}]*\}`)
	fencedJSONRegex    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// Detector asks the language model for a scam verdict on a transcript.
// Every failure mode degrades to a nil verdict: the cascade treats that
// as "no first-tier signal", never as an error.
type Detector struct {
	client *Client
	logger *logger.Logger
}

// NewDetector creates a new LLM scam detector
func NewDetector(client *Client, log *logger.Logger) *Detector {
	return &Detector{
		client: client,
		logger: log.WithComponent("llm-detector"),
	}
}

// DetectScam returns the model's verdict for the transcript, or nil
// when the model is unavailable or its output cannot be parsed.
func (d *Detector) DetectScam(ctx context.Context, transcript string) *models.LLMVerdict {
	if !d.client.Enabled() || strings.TrimSpace(transcript) == "" {
		return nil
	}

	raw, err := d.client.Chat(ctx, detectorSystemPrompt, transcript)
	if err != nil {
		d.logger.Warn().Err(err).Msg("scam verdict call failed, falling through")
		return nil
	}

	v := parseVerdict(raw)
	if v == nil {
		d.logger.Warn().Msg("scam verdict output was not parseable JSON, falling through")
	}
	return v
}

// parseVerdict extracts the verdict JSON from a raw completion, coping
// with markdown fences and surrounding prose.
func parseVerdict(raw string) *models.LLMVerdict {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	type wire struct {
		ScamDetected *bool    `json:"scamDetected"`
		Confidence   float64  `json:"confidence"`
		Reasons      []string `json:"reasons"`
	}
	try := func(s string) *models.LLMVerdict {
		var w wire
		if err := json.Unmarshal([]byte(s), &w); err != nil || w.ScamDetected == nil {
			return nil
		}
		return &models.LLMVerdict{
			IsScam:     *w.ScamDetected,
			Confidence: w.Confidence,
			Reasons:    w.Reasons,
		}
	}

	if v := try(raw); v != nil {
		return v
	}
	if m := verdictObjectRegex.FindString(raw); m != "" {
		if v := try(m); v != nil {
			return v
		}
	}
	if m := fencedJSONRegex.FindStringSubmatch(raw); m != nil {
		if v := try(m[1]); v != nil {
			return v
		}
	}
	return nil
}
