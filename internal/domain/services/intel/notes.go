package intel

import (
	"fmt"
	"sort"
	"strings"

	"scamtrap-lab/internal/domain/models"
)

var (
	urgencyWords = signalSet(
		"urgent", "immediately", "act now", "limited time", "expire",
		"lockout", "final warning", "last chance", "within 24 hours",
		"hurry", "deadline", "time-sensitive",
	)
	blockWords = signalSet(
		"blocked", "suspended", "account blocked", "account suspended",
		"compromised", "freeze", "deactivate", "account closed",
	)
	otpWords        = signalSet("otp", "send otp", "share otp", "enter otp")
	kycWords        = signalSet("kyc", "update kyc", "kyc verification")
	credentialWords = signalSet("password", "cvv", "card number", "credential", "pin", "login")
	authorityWords  = signalSet(
		"bank officer", "customer care", "helpdesk", "support team",
		"rbi", "reserve bank", "government", "police", "cyber cell",
		"bank manager", "compliance officer", "fraud department",
	)
	baitWords    = signalSet("refund", "claim", "lottery", "prize", "winner", "cashback", "reward")
	installWords = signalSet("install", "download", "apk", "anydesk", "teamviewer")
	channelWords = signalSet("whatsapp", "telegram", "signal")
	socialWords  = signalSet(
		"trust me", "don't worry", "confidential", "do not tell anyone",
		"for your safety", "for security purposes", "mandatory",
	)
)

const fallbackNotes = "Scammer used social engineering tactics to request sensitive " +
	"financial information. Multiple red flags were identified during the " +
	"conversation including urgency pressure, impersonation of authority, " +
	"and requests for sensitive data."

// AgentNotes builds the human-readable behavioral summary that goes into
// the final report: tactics observed, red flags, and what was extracted.
func AgentNotes(sess *models.Session) string {
	in := sess.Intelligence
	keywords := make(map[string]bool, len(in.SuspiciousKeywords))
	for _, k := range in.SuspiciousKeywords {
		keywords[strings.ToLower(k)] = true
	}

	var notes []string
	add := func(format string, args ...interface{}) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}

	if matched := matchedWords(urgencyWords, keywords); len(matched) > 0 {
		add("RED FLAG: Used urgency/threat tactics (%s)", strings.Join(firstN(matched, 3), ", "))
	}
	if anyHit(blockWords, keywords) {
		add("RED FLAG: Claimed account suspension/blocking to create panic")
	}
	if len(in.BankAccounts) > 0 {
		add("INTEL EXTRACTED: Bank account details (%s)", strings.Join(firstN(in.BankAccounts, 3), ", "))
	}
	if len(in.UpiIDs) > 0 {
		add("INTEL EXTRACTED: Suspicious UPI IDs for payment redirection (%s)", strings.Join(firstN(in.UpiIDs, 3), ", "))
	}
	if len(in.IfscCodes) > 0 {
		add("INTEL EXTRACTED: IFSC codes (%s)", strings.Join(firstN(in.IfscCodes, 2), ", "))
	}
	if len(in.PhoneNumbers) > 0 {
		add("INTEL EXTRACTED: Contact phone numbers (%s)", strings.Join(firstN(in.PhoneNumbers, 3), ", "))
	}
	if len(in.EmailAddresses) > 0 {
		add("INTEL EXTRACTED: Email addresses (%s)", strings.Join(firstN(in.EmailAddresses, 3), ", "))
	}
	if len(in.CaseIDs) > 0 {
		add("INTEL EXTRACTED: Case/reference IDs (%s)", strings.Join(firstN(in.CaseIDs, 3), ", "))
	}
	if len(in.PolicyNumbers) > 0 {
		add("INTEL EXTRACTED: Policy numbers (%s)", strings.Join(firstN(in.PolicyNumbers, 3), ", "))
	}
	if len(in.OrderIDs) > 0 {
		add("INTEL EXTRACTED: Order numbers (%s)", strings.Join(firstN(in.OrderIDs, 3), ", "))
	}
	if len(in.PhishingURLs) > 0 {
		add("INTEL EXTRACTED: %d phishing/suspicious link(s)", len(in.PhishingURLs))
	}
	if len(in.MalwareLinks) > 0 {
		add("RED FLAG: Attempted malware distribution via %d download link(s)", len(in.MalwareLinks))
	}
	if len(in.TelegramHandles) > 0 {
		add("RED FLAG: Directed victim to Telegram (%s)", strings.Join(firstN(in.TelegramHandles, 2), ", "))
	}
	if len(in.RemoteAccessTools) > 0 {
		add("RED FLAG: Attempted to install remote access tool (%s)", strings.Join(firstN(in.RemoteAccessTools, 2), ", "))
	}
	if len(in.Organizations) > 0 {
		add("RED FLAG: Impersonated %s", strings.Join(firstN(in.Organizations, 3), ", "))
	}
	if anyHit(otpWords, keywords) {
		add("RED FLAG: Attempted OTP extraction for account takeover")
	}
	if anyHit(kycWords, keywords) {
		add("RED FLAG: Used fake KYC verification pretext")
	}
	if anyHit(credentialWords, keywords) {
		add("RED FLAG: Attempted credential/card detail theft")
	}
	if matched := matchedWords(authorityWords, keywords); len(matched) > 0 {
		add("RED FLAG: Impersonated authority (%s)", strings.Join(firstN(matched, 2), ", "))
	}
	if anyHit(baitWords, keywords) {
		add("RED FLAG: Used fake reward/refund/lottery scheme as bait")
	}
	if anyHit(installWords, keywords) {
		add("RED FLAG: Attempted to install malicious/remote-access software")
	}
	if anyHit(channelWords, keywords) {
		add("RED FLAG: Tried to move conversation to unmonitored messaging platform")
	}
	if anyHit(socialWords, keywords) {
		add("RED FLAG: Employed social engineering and trust manipulation tactics")
	}
	if len(in.MonetaryAmounts) > 0 {
		add("INTEL EXTRACTED: Mentioned specific monetary amounts (%s)", strings.Join(firstN(in.MonetaryAmounts, 3), ", "))
	}

	if len(notes) == 0 {
		return fallbackNotes
	}

	header := fmt.Sprintf("Scam Type: %s. ", titleCase(string(Classify(in))))
	return header + "Scammer " + strings.Join(notes, "; ") + "."
}

func anyHit(signals, keywords map[string]bool) bool {
	for k := range keywords {
		if signals[k] {
			return true
		}
	}
	return false
}

// matchedWords returns the intersection sorted for deterministic output.
func matchedWords(signals, keywords map[string]bool) []string {
	var out []string
	for k := range keywords {
		if signals[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func firstN(vals []string, n int) []string {
	if len(vals) <= n {
		return vals
	}
	return vals[:n]
}

func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
