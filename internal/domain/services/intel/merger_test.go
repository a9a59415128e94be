package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services/extraction"
	"scamtrap-lab/pkg/logger"
)

func newTestMerger() *Merger {
	log := logger.NewDevelopment()
	return NewMerger(extraction.NewExtractor(log), log)
}

func addScammerMessage(sess *models.Session, text string) {
	sess.Messages = append(sess.Messages, models.Message{
		Sender: models.SenderScammer,
		Text:   text,
	})
}

func TestMergeTurnIdempotent(t *testing.T) {
	m := newTestMerger()
	sess := models.NewSession("s-idem")
	msg := "Pay to scammer@fakebank or call 9876543210 urgently"
	addScammerMessage(sess, msg)

	first := m.MergeTurn(sess, 1)
	require.Greater(t, first, 0)
	snapshot := sess.Intelligence.Clone()

	again := m.MergeTurn(sess, 1)
	assert.Zero(t, again)
	assert.Equal(t, snapshot, sess.Intelligence)
}

func TestMergeTurnAccumulatesAcrossTurns(t *testing.T) {
	m := newTestMerger()
	sess := models.NewSession("s-acc")

	addScammerMessage(sess, "call 9876543210")
	m.MergeTurn(sess, 1)

	addScammerMessage(sess, "account 1234567890123456")
	m.MergeTurn(sess, 2)

	assert.Equal(t, []string{"9876543210"}, sess.Intelligence.PhoneNumbers)
	assert.Equal(t, []string{"1234567890123456"}, sess.Intelligence.BankAccounts)
}

func TestMergeTranscriptSweepJoinsSplitValues(t *testing.T) {
	m := newTestMerger()
	sess := models.NewSession("s-split")

	// Each half alone is too short to be an account number.
	addScammerMessage(sess, "note down the account 12345678")
	m.MergeTurn(sess, 1)
	assert.Empty(t, sess.Intelligence.BankAccounts)

	addScammerMessage(sess, "90123456")
	m.MergeTurn(sess, 2)
	assert.Equal(t, []string{"1234567890123456"}, sess.Intelligence.BankAccounts)
}

func TestMergeTurnCatchesUpOnReplayedHistory(t *testing.T) {
	m := newTestMerger()
	sess := models.NewSession("s-replay")

	// A session rebuilt from caller-supplied history has messages on it
	// that no extraction pass has seen yet.
	addScammerMessage(sess, "call me on 9876543210")
	addScammerMessage(sess, "then pay scammer@fakebank")
	require.Zero(t, sess.ExtractedCount)

	added := m.MergeTurn(sess, 2)
	require.Greater(t, added, 0)
	assert.Equal(t, 2, sess.ExtractedCount)
	assert.Equal(t, []string{"9876543210"}, sess.Intelligence.PhoneNumbers)
	assert.Equal(t, []string{"scammer@fakebank"}, sess.Intelligence.UpiIDs)

	// Nothing new appended: the incremental pass has no work and the
	// counter holds.
	again := m.MergeTurn(sess, 3)
	assert.Zero(t, again)
	assert.Equal(t, 2, sess.ExtractedCount)
}

func TestMergeUpiEmailExclusivity(t *testing.T) {
	m := newTestMerger()
	sess := models.NewSession("s-excl")

	for turn, msg := range []string{
		"pay scammer@fakebank today",
		"or mail lic-renewal@fakepayment.insure",
		"again scammer@fakebank",
	} {
		addScammerMessage(sess, msg)
		m.MergeTurn(sess, turn+1)
	}

	assert.Equal(t, []string{"scammer@fakebank"}, sess.Intelligence.UpiIDs)
	assert.Equal(t, []string{"lic-renewal@fakepayment.insure"}, sess.Intelligence.EmailAddresses)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   *models.Intelligence
		want models.ScamType
	}{
		{
			name: "bank accounts dominate",
			in: &models.Intelligence{
				BankAccounts:       []string{"1234567890123456"},
				SuspiciousKeywords: []string{"account blocked", "ifsc"},
			},
			want: models.ScamTypeBankFraud,
		},
		{
			name: "upi id with payment keywords",
			in: &models.Intelligence{
				UpiIDs:             []string{"scammer@fakebank"},
				SuspiciousKeywords: []string{"upi", "cashback"},
			},
			want: models.ScamTypeUPIFraud,
		},
		{
			name: "remote access tool",
			in: &models.Intelligence{
				RemoteAccessTools:  []string{"anydesk"},
				SuspiciousKeywords: []string{"anydesk", "screen share"},
			},
			want: models.ScamTypeRemoteAccess,
		},
		{
			name: "no signal falls back",
			in:   &models.Intelligence{},
			want: models.ScamTypeSocialEngineering,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestConfidence(t *testing.T) {
	sess := models.NewSession("s-conf")
	sess.Intelligence = &models.Intelligence{
		PhoneNumbers:       []string{"9876543210"},
		UpiIDs:             []string{"scammer@fakebank"},
		SuspiciousKeywords: []string{"urgent", "otp"},
	}
	sess.Messages = []models.Message{
		{Sender: models.SenderScammer, Text: "a"},
		{Sender: models.SenderAgent, Text: "b"},
	}
	sess.Detection.Detected = true

	// 2 keywords (0.10) + 2 intel categories (0.16) + 2 messages (0.05) + detected (0.10)
	assert.InDelta(t, 0.41, Confidence(sess), 0.001)
}

func TestConfidenceCapped(t *testing.T) {
	sess := models.NewSession("s-cap")
	kw := make([]string, 50)
	msgs := make([]models.Message, 40)
	for i := range kw {
		kw[i] = "urgent"
	}
	sess.Intelligence = &models.Intelligence{
		SuspiciousKeywords: kw,
		PhoneNumbers:       []string{"9876543210"},
		BankAccounts:       []string{"1234567890123456"},
		UpiIDs:             []string{"a@ybl"},
		PhishingURLs:       []string{"http://x.com"},
		EmailAddresses:     []string{"a@b.com"},
		IfscCodes:          []string{"SBIN0001234"},
		TelegramHandles:    []string{"@x"},
		CaseIDs:            []string{"C1"},
		PolicyNumbers:      []string{"P1"},
		OrderIDs:           []string{"O1"},
	}
	sess.Messages = msgs
	sess.Detection.Detected = true

	assert.Equal(t, 1.0, Confidence(sess))
}

func TestAgentNotes(t *testing.T) {
	t.Run("summarizes tactics and intel", func(t *testing.T) {
		sess := models.NewSession("s-notes")
		sess.Intelligence = &models.Intelligence{
			UpiIDs:             []string{"scammer@fakebank"},
			Organizations:      []string{"SBI"},
			SuspiciousKeywords: []string{"urgent", "share otp"},
		}
		notes := AgentNotes(sess)
		assert.True(t, len(notes) > 0)
		assert.Contains(t, notes, "Scam Type:")
		assert.Contains(t, notes, "scammer@fakebank")
		assert.Contains(t, notes, "OTP extraction")
		assert.Contains(t, notes, "Impersonated SBI")
	})

	t.Run("empty session gets generic summary", func(t *testing.T) {
		sess := models.NewSession("s-empty")
		assert.Equal(t, fallbackNotes, AgentNotes(sess))
	})
}
