package detection

import (
	"strings"

	"scamtrap-lab/internal/config"
)

// scamIndicators is the lexical tier's phrase list. It is deliberately
// separate from the extractor's keyword category: these are longer,
// higher-precision phrases, so a hit is strong enough to detect on by
// itself.
var scamIndicators = []string{
	// Account threats
	"verify your account", "account blocked", "account suspended",
	"account will be closed", "account compromised", "unusual activity",
	"unauthorized transaction", "suspicious activity", "security alert",
	"your account has been", "account freeze", "account locked",

	// OTP / credential theft
	"send otp", "share otp", "enter otp", "otp verification",
	"share password", "share cvv", "share pin",
	"card number", "pin number", "net banking password",
	"confirm your identity", "verify identity",

	// KYC pretexts
	"update kyc", "kyc verification", "kyc expired", "complete kyc",
	"re-verify", "reverify",

	// Link / phishing
	"click the link", "click here", "click below",
	"visit this link", "open this link", "verification link",
	"click on the link",

	// Money demands
	"transfer money", "pay now", "send money", "pay immediately",
	"processing fee", "registration fee", "advance payment",
	"deposit amount", "transfer amount",

	// Urgency
	"urgent action", "act immediately", "act now",
	"within 24 hours", "limited time", "final warning",
	"last chance", "immediate action required",

	// Authority impersonation
	"bank officer", "customer care", "customer support",
	"refund process", "refund department",
	"rbi notification", "government order",
	"compliance officer", "fraud department",

	// Prize / lottery
	"claim prize", "lottery winner", "you have won",
	"congratulations", "lucky winner", "cashback offer",
	"reward points", "claim your reward",

	// Malware / remote access
	"install app", "download apk", "install anydesk",
	"install teamviewer", "download and install",
	"remote access", "screen share",

	// Beneficiary / account details
	"beneficiary account", "beneficiary name",
	"account details", "bank details",
	"ifsc code", "branch code",
}

// KeywordScorer is the lexical detection tier. It scans only the current
// turn's text and needs no extractor output.
type KeywordScorer struct {
	weight     float64
	maxReasons int
}

// NewKeywordScorer creates a new keyword scorer
func NewKeywordScorer(cfg config.DetectionConfig) *KeywordScorer {
	return &KeywordScorer{
		weight:     cfg.KeywordWeight,
		maxReasons: cfg.MaxKeywordReasons,
	}
}

// Score scans the text for scam indicator phrases. The score is one
// weight unit per hit, capped at 1.0. Reasons report the matching
// phrases in list order, truncated to the configured maximum.
func (s *KeywordScorer) Score(text string) (float64, []string) {
	if text == "" {
		return 0, nil
	}
	lowered := strings.ToLower(text)
	hits := 0
	var reasons []string
	for _, phrase := range scamIndicators {
		if strings.Contains(lowered, phrase) {
			hits++
			if len(reasons) < s.maxReasons {
				reasons = append(reasons, phrase)
			}
		}
	}
	score := float64(hits) * s.weight
	if score > 1.0 {
		score = 1.0
	}
	return score, reasons
}
