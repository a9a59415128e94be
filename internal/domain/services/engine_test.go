package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services/detection"
	"scamtrap-lab/internal/domain/services/extraction"
	"scamtrap-lab/internal/domain/services/intel"
	"scamtrap-lab/pkg/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	log := logger.NewDevelopment()
	merger := intel.NewMerger(extraction.NewExtractor(log), log)
	cascade := detection.NewCascade(config.DetectionConfig{
		LLMConfidenceThreshold: 0.5,
		SafetyNetTurn:          2,
		KeywordWeight:          0.15,
		MaxKeywordReasons:      8,
	}, log)
	return NewEngine(merger, cascade, log)
}

func addTurn(sess *models.Session, text string) int {
	sess.Messages = append(sess.Messages, models.Message{
		Sender: models.SenderScammer,
		Text:   text,
	})
	return sess.TurnCount()
}

func TestProcessTurnBankFraudScenario(t *testing.T) {
	e := newTestEngine(t)
	sess := models.NewSession("s-engine-1")

	msg := "Your SBI account 1234567890123456 has been compromised. Contact 9876543210. UPI: scammer@fakebank. IFSC: SBIN0001234."
	turn := addTurn(sess, msg)

	agg, res := e.ProcessTurn(context.Background(), sess, TurnInput{Message: msg, Turn: turn})

	require.True(t, res.Verdict.Detected)
	assert.Equal(t, models.TierIntelOverride, res.Verdict.Tier)
	assert.Equal(t, []string{"1234567890123456"}, agg.BankAccounts)
	assert.Equal(t, []string{"9876543210"}, agg.PhoneNumbers)
	assert.Equal(t, []string{"scammer@fakebank"}, agg.UpiIDs)
	assert.Equal(t, []string{"SBIN0001234"}, agg.IfscCodes)
	assert.Equal(t, models.ScamTypeBankFraud, sess.ScamType)
	assert.True(t, sess.Detection.Detected)
}

func TestProcessTurnRatchet(t *testing.T) {
	e := newTestEngine(t)
	sess := models.NewSession("s-engine-2")

	msg := "share otp now or your account will be suspended"
	turn := addTurn(sess, msg)
	_, res := e.ProcessTurn(context.Background(), sess, TurnInput{Message: msg, Turn: turn})
	require.True(t, res.Verdict.Detected)
	firstTier := res.Verdict.Tier

	benign := "okay, thanks for the information"
	turn = addTurn(sess, benign)
	_, res = e.ProcessTurn(context.Background(), sess, TurnInput{Message: benign, Turn: turn})
	assert.True(t, res.Verdict.Detected)
	assert.Equal(t, firstTier, res.Verdict.Tier)
}

func TestProcessTurnLLMVerdictWins(t *testing.T) {
	e := newTestEngine(t)
	sess := models.NewSession("s-engine-3")

	msg := "hello, how are you today"
	turn := addTurn(sess, msg)
	_, res := e.ProcessTurn(context.Background(), sess, TurnInput{
		Message: msg,
		Turn:    turn,
		LLMVerdict: &models.LLMVerdict{
			IsScam:     true,
			Confidence: 0.85,
			Reasons:    []string{"impersonates a bank"},
		},
	})

	require.True(t, res.Verdict.Detected)
	assert.Equal(t, models.TierLLM, res.Verdict.Tier)
	assert.InDelta(t, 0.85, res.Verdict.Confidence, 1e-9)
}

func TestProcessTurnIdempotentMerge(t *testing.T) {
	e := newTestEngine(t)
	sess := models.NewSession("s-engine-4")

	msg := "pay to scammer@fakebank immediately"
	turn := addTurn(sess, msg)

	// One UPI id plus the "immediately" keyword.
	_, first := e.ProcessTurn(context.Background(), sess, TurnInput{Message: msg, Turn: turn})
	assert.Equal(t, 2, first.NewEntities)

	_, again := e.ProcessTurn(context.Background(), sess, TurnInput{Message: msg, Turn: turn})
	assert.Zero(t, again.NewEntities)
	assert.Equal(t, first.TotalEntities, again.TotalEntities)
}

// Hammers one session from many goroutines. Each turn contributes one
// unique UPI id; with the keyed lock every merge lands exactly once and
// the aggregate stays consistent.
func TestProcessTurnSameSessionSerialized(t *testing.T) {
	e := newTestEngine(t)
	sess := models.NewSession("s-engine-5")

	const workers = 32
	msgs := make([]string, workers)
	for i := range msgs {
		msgs[i] = fmt.Sprintf("send money to handle%02d@fakebank today", i)
	}
	// The transcript is fixed up front; whichever goroutine runs first
	// catches the message pass up, the rest sweep.
	for _, m := range msgs {
		addTurn(sess, m)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.ProcessTurn(context.Background(), sess, TurnInput{Message: msgs[i], Turn: i + 1})
		}(i)
	}
	wg.Wait()

	assert.Len(t, sess.Intelligence.UpiIDs, workers)
}

func TestProcessTurnDistinctSessionsParallel(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	results := make([]models.Verdict, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := models.NewSession(fmt.Sprintf("s-par-%d", i))
			msg := "verify your account now to avoid suspension"
			turn := addTurn(sess, msg)
			_, res := e.ProcessTurn(context.Background(), sess, TurnInput{Message: msg, Turn: turn})
			results[i] = res.Verdict
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		assert.True(t, v.Detected)
	}
}
