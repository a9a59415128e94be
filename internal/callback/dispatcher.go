package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

// Dispatcher posts the final intelligence report to the caller-supplied
// URL, with bounded retries.
type Dispatcher struct {
	httpClient *http.Client
	enabled    bool
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger
}

// NewDispatcher creates a new callback dispatcher
func NewDispatcher(cfg config.CallbackConfig, log *logger.Logger) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		httpClient: &http.Client{Timeout: timeout},
		enabled:    cfg.Enabled,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     log.WithComponent("callback"),
	}
}

// Send delivers the report to url. Phone numbers are rewritten to E.164
// form first. The last attempt's error is returned when every retry
// fails; a missing URL or a disabled dispatcher is not an error.
func (d *Dispatcher) Send(ctx context.Context, url string, report *models.IntelligenceReport) error {
	if !d.enabled || url == "" {
		return nil
	}

	payload := *report
	if payload.ExtractedIntelligence != nil {
		intel := payload.ExtractedIntelligence.Clone()
		intel.PhoneNumbers = formatPhones(intel.PhoneNumbers)
		payload.ExtractedIntelligence = intel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	log := d.logger.WithSession(report.SessionID)

	var lastErr error
	attempts := d.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = d.post(ctx, url, body)
		if lastErr == nil {
			log.Info().Str("url", url).Int("attempt", attempt).Msg("callback delivered")
			return nil
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("callback delivery failed")
		if attempt == attempts {
			break
		}

		// Linear backoff: 1x, 2x, 3x the base delay.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.retryDelay * time.Duration(attempt)):
		}
	}

	return fmt.Errorf("callback failed after %d attempts: %w", attempts, lastErr)
}

func (d *Dispatcher) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}

// formatPhones rewrites 10-digit Indian mobiles to +91 form. Toll-free
// numbers keep their 1800 prefix, and already-prefixed values pass
// through.
func formatPhones(phones []string) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		switch {
		case strings.HasPrefix(p, "+"), strings.HasPrefix(p, "1800"):
			out = append(out, p)
		case len(p) == 10:
			out = append(out, "+91"+p)
		default:
			out = append(out, p)
		}
	}
	return out
}
