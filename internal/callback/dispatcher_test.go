package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

func testReport() *models.IntelligenceReport {
	return &models.IntelligenceReport{
		SessionID:    "s-cb-1",
		ScamDetected: true,
		ScamType:     models.ScamTypeBankFraud,
		Confidence:   0.9,
		ExtractedIntelligence: &models.Intelligence{
			PhoneNumbers: []string{"9876543210", "1800123456", "+919812345678"},
			BankAccounts: []string{"1234567890123456"},
		},
	}
}

func newTestDispatcher(retries int) *Dispatcher {
	return NewDispatcher(config.CallbackConfig{
		Enabled:    true,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
		Timeout:    time.Second,
	}, logger.NewDevelopment())
}

func TestSendFormatsPhones(t *testing.T) {
	var got models.IntelligenceReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestDispatcher(0)
	report := testReport()
	require.NoError(t, d.Send(context.Background(), srv.URL, report))

	assert.Equal(t,
		[]string{"+919876543210", "1800123456", "+919812345678"},
		got.ExtractedIntelligence.PhoneNumbers)
	// The session's own aggregate is left untouched.
	assert.Equal(t, "9876543210", report.ExtractedIntelligence.PhoneNumbers[0])
}

func TestSendRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestDispatcher(3)
	require.NoError(t, d.Send(context.Background(), srv.URL, testReport()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newTestDispatcher(2)
	err := d.Send(context.Background(), srv.URL, testReport())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendSkipsWhenDisabledOrNoURL(t *testing.T) {
	d := NewDispatcher(config.CallbackConfig{Enabled: false}, logger.NewDevelopment())
	assert.NoError(t, d.Send(context.Background(), "http://example.invalid", testReport()))

	d = newTestDispatcher(0)
	assert.NoError(t, d.Send(context.Background(), "", testReport()))
}
