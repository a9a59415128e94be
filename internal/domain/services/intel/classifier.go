package intel

import (
	"math"
	"strings"

	"scamtrap-lab/internal/domain/models"
)

// Keyword signal sets, one per fraud scheme. A keyword hit scores one
// point for its scheme; hard structural intelligence adds a larger boost
// below.
var (
	bankSignals = signalSet(
		"account blocked", "account suspended", "blocked", "suspended",
		"compromised", "freeze", "bank account", "account number",
		"ifsc", "beneficiary", "net banking", "internet banking",
		"debit card", "credit card",
	)
	upiSignals = signalSet(
		"upi", "cashback", "reward", "refund", "pay now", "send money",
		"payment", "wallet", "gpay", "phonepe", "paytm", "google pay",
	)
	phishingSignals = signalSet(
		"click", "click here", "click the link", "link", "url",
		"portal", "website", "verification link", "secure link",
		"download", "apk", "install",
	)
	lotterySignals = signalSet(
		"lottery", "prize", "winner", "claim", "lucky",
		"congratulations", "jackpot", "investment",
		"guaranteed returns", "double your money",
	)
	kycSignals = signalSet(
		"kyc", "update kyc", "kyc verification", "kyc expired",
		"aadhaar", "pan card", "identity verification",
	)
	otpSignals = signalSet(
		"otp", "send otp", "share otp", "enter otp",
		"verification code", "confirmation code",
	)
	impersonationSignals = signalSet(
		"bank officer", "customer care", "helpdesk", "rbi",
		"reserve bank", "government", "police", "cyber cell",
		"fraud department", "compliance officer",
	)
	remoteAccessSignals = signalSet(
		"anydesk", "teamviewer", "remote access", "screen share",
		"quick support",
	)
)

func signalSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// classifyOrder fixes the tie-break between schemes with equal scores.
var classifyOrder = []models.ScamType{
	models.ScamTypeBankFraud,
	models.ScamTypeUPIFraud,
	models.ScamTypePhishing,
	models.ScamTypeLottery,
	models.ScamTypeKYCFraud,
	models.ScamTypeOTPFraud,
	models.ScamTypeImpersonation,
	models.ScamTypeRemoteAccess,
}

// Classify derives the fraud scheme from the accumulated keywords and
// structural intelligence. It is a soft label for reporting and never
// feeds back into the detection verdict.
func Classify(in *models.Intelligence) models.ScamType {
	keywords := make(map[string]bool, len(in.SuspiciousKeywords))
	for _, k := range in.SuspiciousKeywords {
		keywords[strings.ToLower(k)] = true
	}

	scores := map[models.ScamType]int{
		models.ScamTypeBankFraud:     hits(bankSignals, keywords),
		models.ScamTypeUPIFraud:      hits(upiSignals, keywords),
		models.ScamTypePhishing:      hits(phishingSignals, keywords),
		models.ScamTypeLottery:       hits(lotterySignals, keywords),
		models.ScamTypeKYCFraud:      hits(kycSignals, keywords),
		models.ScamTypeOTPFraud:      hits(otpSignals, keywords),
		models.ScamTypeImpersonation: hits(impersonationSignals, keywords),
		models.ScamTypeRemoteAccess:  hits(remoteAccessSignals, keywords),
	}

	// Structural intelligence outweighs keyword hits.
	if len(in.BankAccounts) > 0 {
		scores[models.ScamTypeBankFraud] += 3
	}
	if len(in.UpiIDs) > 0 {
		scores[models.ScamTypeUPIFraud] += 3
	}
	if len(in.PhishingURLs) > 0 {
		scores[models.ScamTypePhishing] += 3
	}
	if len(in.IfscCodes) > 0 {
		scores[models.ScamTypeBankFraud] += 2
	}
	if len(in.RemoteAccessTools) > 0 {
		scores[models.ScamTypeRemoteAccess] += 3
	}

	best := models.ScamTypeSocialEngineering
	bestScore := 0
	for _, t := range classifyOrder {
		if scores[t] > bestScore {
			best, bestScore = t, scores[t]
		}
	}
	return best
}

func hits(signals, keywords map[string]bool) int {
	n := 0
	for k := range keywords {
		if signals[k] {
			n++
		}
	}
	return n
}

// Confidence scores detection certainty in [0,1] from aggregate richness
// and conversation length, rounded to two decimals.
func Confidence(sess *models.Session) float64 {
	in := sess.Intelligence
	score := 0.0

	// Keywords contribute up to 0.3.
	score += math.Min(float64(len(in.SuspiciousKeywords))*0.05, 0.3)

	// Distinct hard-intel categories contribute up to 0.4.
	types := 0
	for _, vals := range [][]string{
		in.PhoneNumbers, in.BankAccounts, in.UpiIDs, in.PhishingURLs,
		in.EmailAddresses, in.IfscCodes, in.TelegramHandles,
		in.CaseIDs, in.PolicyNumbers, in.OrderIDs,
	} {
		if len(vals) > 0 {
			types++
		}
	}
	score += math.Min(float64(types)*0.08, 0.4)

	// Conversation length contributes up to 0.2.
	score += math.Min(float64(len(sess.Messages))*0.025, 0.2)

	if sess.Detection.Detected {
		score += 0.1
	}
	return math.Round(math.Min(score, 1.0)*100) / 100
}
