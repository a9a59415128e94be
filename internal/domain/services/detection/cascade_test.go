package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		LLMConfidenceThreshold: 0.5,
		SafetyNetTurn:          2,
		KeywordWeight:          0.15,
		MaxKeywordReasons:      8,
	}
}

func newTestCascade() *Cascade {
	return NewCascade(testDetectionConfig(), logger.NewDevelopment())
}

func sessionWithTurns(n int) *models.Session {
	sess := models.NewSession("s-test")
	for i := 0; i < n; i++ {
		sess.Messages = append(sess.Messages,
			models.Message{Sender: models.SenderScammer, Text: "msg"},
			models.Message{Sender: models.SenderAgent, Text: "reply"},
		)
	}
	return sess
}

func TestCascadeLLMTier(t *testing.T) {
	c := newTestCascade()

	t.Run("confident verdict fires first", func(t *testing.T) {
		sess := sessionWithTurns(1)
		v := c.Evaluate(sess, "please share otp with me", &models.LLMVerdict{IsScam: true, Confidence: 0.92})
		assert.True(t, v.Detected)
		assert.Equal(t, models.TierLLM, v.Tier)
		assert.Equal(t, 0.92, v.Confidence)
	})

	t.Run("low confidence falls through to keyword", func(t *testing.T) {
		sess := sessionWithTurns(1)
		v := c.Evaluate(sess, "please share otp with me", &models.LLMVerdict{IsScam: true, Confidence: 0.2})
		assert.True(t, v.Detected)
		assert.Equal(t, models.TierKeyword, v.Tier)
	})

	t.Run("non-scam verdict falls through", func(t *testing.T) {
		sess := sessionWithTurns(1)
		v := c.Evaluate(sess, "please share otp with me", &models.LLMVerdict{IsScam: false, Confidence: 0.99})
		assert.Equal(t, models.TierKeyword, v.Tier)
	})
}

func TestCascadeKeywordTier(t *testing.T) {
	c := newTestCascade()
	sess := sessionWithTurns(1)

	v := c.Evaluate(sess, "share otp and pay now to avoid account suspended status", nil)
	require.True(t, v.Detected)
	assert.Equal(t, models.TierKeyword, v.Tier)
	assert.InDelta(t, 0.45, v.Confidence, 0.001)
	assert.Equal(t, []string{"account suspended", "share otp", "pay now"}, v.Reasons)
}

func TestCascadeKeywordOutranksIntelOverride(t *testing.T) {
	c := newTestCascade()
	sess := sessionWithTurns(1)
	sess.Intelligence.Add(models.CategoryBankAccount, "1234567890123456")

	// Both tiers would fire; the lexical tier is evaluated first.
	v := c.Evaluate(sess, "your account blocked, act now", nil)
	require.True(t, v.Detected)
	assert.Equal(t, models.TierKeyword, v.Tier)
}

func TestCascadeIntelOverrideTier(t *testing.T) {
	c := newTestCascade()
	sess := sessionWithTurns(1)
	sess.Intelligence.Add(models.CategoryBankAccount, "1234567890123456")
	sess.Intelligence.Add(models.CategoryUpiID, "scammer@fakebank")
	sess.Intelligence.Add(models.CategoryIfscCode, "SBIN0001234")

	// No indicator phrase matches this text, so the structural tier
	// decides.
	text := "Your SBI account 1234567890123456 has been compromised. " +
		"Contact 9876543210. UPI: scammer@fakebank. IFSC: SBIN0001234."
	v := c.Evaluate(sess, text, nil)
	require.True(t, v.Detected)
	assert.Equal(t, models.TierIntelOverride, v.Tier)
	assert.Equal(t, intelOverrideConfidence, v.Confidence)
	assert.NotEmpty(t, v.Reasons)
}

func TestCascadeSafetyNet(t *testing.T) {
	c := newTestCascade()

	t.Run("fires at turn two with no other signal", func(t *testing.T) {
		sess := sessionWithTurns(2)
		v := c.Evaluate(sess, "hello again, nice weather", nil)
		require.True(t, v.Detected)
		assert.Equal(t, models.TierSafetyNet, v.Tier)
		assert.Equal(t, safetyNetConfidence, v.Confidence)
	})

	t.Run("silent first turn stays undetected", func(t *testing.T) {
		sess := sessionWithTurns(1)
		v := c.Evaluate(sess, "hello there, nice weather", nil)
		assert.False(t, v.Detected)
		assert.Equal(t, models.TierNone, v.Tier)
	})
}

func TestCascadeRatchet(t *testing.T) {
	c := newTestCascade()
	sess := sessionWithTurns(1)

	first := c.Evaluate(sess, "please share otp with me", nil)
	require.True(t, first.Detected)
	sess.ApplyVerdict(first)

	// Later benign turns keep the original verdict untouched.
	later := c.Evaluate(sess, "thanks, have a nice day", nil)
	assert.True(t, later.Detected)
	assert.Equal(t, models.TierKeyword, later.Tier)
	assert.Equal(t, first.Confidence, later.Confidence)
	assert.Equal(t, first.Reasons, later.Reasons)
}

func TestKeywordScorer(t *testing.T) {
	s := NewKeywordScorer(testDetectionConfig())

	t.Run("empty text scores zero", func(t *testing.T) {
		score, reasons := s.Score("")
		assert.Zero(t, score)
		assert.Empty(t, reasons)
	})

	t.Run("benign text scores zero", func(t *testing.T) {
		score, reasons := s.Score("good morning, how was lunch")
		assert.Zero(t, score)
		assert.Empty(t, reasons)
	})

	t.Run("score caps at one and reasons truncate", func(t *testing.T) {
		text := "account blocked! verify your account, share otp, pay now, " +
			"click the link, install anydesk, processing fee, final warning, " +
			"customer care, kyc verification"
		score, reasons := s.Score(text)
		assert.Equal(t, 1.0, score)
		assert.Len(t, reasons, 8)
	})
}
