package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/pkg/logger"
)

const agentSystemPrompt = `You are role-playing as a real person who fully believes they are speaking to a legitimate representative.

You are NOT an AI. You MUST stay in character at all times.

PERSONALITY:
- Slightly worried but rational
- Cooperative but not naive
- Curious and detail-oriented
- Willing to comply, but needs clarification first

NEVER:
- Refuse the conversation
- Mention policies, safety, legality, or scams
- Break character or sound robotic
- Prefix your response with "user:" or any label

CORE STRATEGY:
Act like a believable victim and naturally encourage the other party to
reveal operational details: bank account numbers, UPI IDs, IFSC codes,
phone numbers, WhatsApp numbers, email addresses, links, Telegram
usernames, download links. Do this indirectly through curiosity, never
aggressively.

TACTICS:
1. Ask for confirmation: "Can you confirm which account number you're seeing?"
2. Ask for alternatives: "Is there an email I can reach you at instead?"
3. Feign confusion: "Wait, which link should I click? Can you send it again?"
4. Pretend compliance: "Okay let me note down the details, where should I transfer?"

WHEN ASKED FOR YOUR SENSITIVE INFO:
Never provide real data. Deflect: "Hold on, before I share that, can you
confirm your end first?"

REALISM RULES:
- Keep responses between 1-3 sentences
- Prefer ONE strong question per turn
- React only to information provided
- Sound like a normal person texting
- Do not use quotation marks around your response

Keep the conversation alive as long as possible and make the other
party reveal contact and payment details. Never refuse. Stay human.`

// Canned probes used when the language model is unavailable. Indexed by
// turn so consecutive fallbacks do not repeat.
var fallbackReplies = []string{
	"Oh no, that sounds serious. Can you tell me which account this is about and who I am speaking with?",
	"I want to sort this out quickly. Is there a phone number or email where I can reach you directly?",
	"I'm a bit confused about the process. Where exactly should I send the payment, do you have a UPI ID?",
	"My network is acting up. Can you resend the link or share the details again so I can note them down?",
	"Before I proceed, can you confirm the account number and IFSC code on your side?",
	"Is there a WhatsApp number or Telegram where we can continue? It would be faster for me.",
}

var (
	rolePrefixes = []string{
		"user:", "assistant:", "agent:", "honeypot:", "customer:",
		"victim:", "me:", "reply:", "response:",
	}
	trailingNoteRegex    = regexp.MustCompile(`(?i)\s*\(note:.*?\)\s*$`)
	trailingBracketRegex = regexp.MustCompile(`\s*\[.*?\]\s*$`)
	asteriskRegex        = regexp.MustCompile(`\*+`)
	sentenceSplitRegex   = regexp.MustCompile(`(?:[.!?])\s+`)
)

const maxReplyLength = 300

// ReplyGenerator produces in-character victim replies that probe for
// the intelligence still missing from the session aggregate.
type ReplyGenerator struct {
	client *Client
	logger *logger.Logger
}

// NewReplyGenerator creates a new reply generator
func NewReplyGenerator(client *Client, log *logger.Logger) *ReplyGenerator {
	return &ReplyGenerator{
		client: client,
		logger: log.WithComponent("reply-generator"),
	}
}

// GenerateReply returns the next agent reply for the session. It never
// fails: if the model is unavailable or misbehaves, a canned probe is
// returned instead.
func (g *ReplyGenerator) GenerateReply(ctx context.Context, sess *models.Session, transcript string, turn int) string {
	if !g.client.Enabled() {
		return fallbackReply(turn)
	}

	prompt := buildContextPrompt(sess.Intelligence, transcript, turn)
	raw, err := g.client.Chat(ctx, agentSystemPrompt, prompt)
	if err != nil {
		g.logger.WithSession(sess.ID).Warn().Err(err).Msg("reply generation failed, using fallback")
		return fallbackReply(turn)
	}

	reply := sanitizeReply(raw)
	if reply == "" {
		return fallbackReply(turn)
	}
	return reply
}

func fallbackReply(turn int) string {
	if turn < 1 {
		turn = 1
	}
	return fallbackReplies[(turn-1)%len(fallbackReplies)]
}

// buildContextPrompt enriches the transcript with turn pacing plus what
// has been captured and what is still missing, so the model probes for
// new data types instead of repeating itself.
func buildContextPrompt(in *models.Intelligence, transcript string, turn int) string {
	var parts []string

	if turn > 0 {
		parts = append(parts, fmt.Sprintf("[Turn %d of conversation]", turn))
	}

	var captured []string
	capture := func(label string, vals []string, n int) {
		if len(vals) > 0 {
			if len(vals) > n {
				vals = vals[:n]
			}
			captured = append(captured, fmt.Sprintf("%s: %s", label, strings.Join(vals, ", ")))
		}
	}
	capture("phone numbers", in.PhoneNumbers, 3)
	capture("bank accounts", in.BankAccounts, 3)
	capture("UPI IDs", in.UpiIDs, 3)
	capture("emails", in.EmailAddresses, 3)
	capture("links", in.PhishingURLs, 2)
	capture("IFSC codes", in.IfscCodes, 2)
	capture("Telegram", in.TelegramHandles, 2)
	if len(captured) > 0 {
		parts = append(parts, fmt.Sprintf("[Already captured: %s]", strings.Join(captured, "; ")))
	}

	var missing []string
	miss := func(label string, vals []string) {
		if len(vals) == 0 {
			missing = append(missing, label)
		}
	}
	miss("phone number", in.PhoneNumbers)
	miss("bank account number", in.BankAccounts)
	miss("UPI ID", in.UpiIDs)
	miss("email address", in.EmailAddresses)
	miss("website link or URL", in.PhishingURLs)
	miss("IFSC code", in.IfscCodes)
	miss("Telegram contact", in.TelegramHandles)
	if len(missing) > 0 {
		if len(missing) > 3 {
			missing = missing[:3]
		}
		parts = append(parts, fmt.Sprintf("[PRIORITY: Try to get their %s in this reply]", strings.Join(missing, ", ")))
	}

	parts = append(parts, transcript)
	return strings.Join(parts, "\n\n")
}

// sanitizeReply strips the artifacts models like to add: role labels,
// wrapping quotes, trailing stage directions, markdown emphasis. Long
// replies are cut at a sentence boundary.
func sanitizeReply(raw string) string {
	reply := strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))

	for _, prefix := range rolePrefixes {
		if len(reply) >= len(prefix) && strings.EqualFold(reply[:len(prefix)], prefix) {
			reply = strings.TrimSpace(reply[len(prefix):])
		}
	}

	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(reply, q) && strings.HasSuffix(reply, q) && len(reply) > 1 {
			reply = strings.TrimSpace(reply[1 : len(reply)-1])
		}
	}

	reply = trailingNoteRegex.ReplaceAllString(reply, "")
	reply = trailingBracketRegex.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(asteriskRegex.ReplaceAllString(reply, ""))

	if len(reply) > maxReplyLength {
		cut := reply[:maxReplyLength]
		if idx := lastSentenceEnd(cut); idx > 0 {
			cut = cut[:idx]
		}
		reply = strings.TrimSpace(cut)
	}

	if len(reply) < 5 {
		return ""
	}
	return reply
}

// lastSentenceEnd returns the index just past the final complete
// sentence in s, or 0 when there is none.
func lastSentenceEnd(s string) int {
	locs := sentenceSplitRegex.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return 0
	}
	last := locs[len(locs)-1]
	return last[0] + 1
}
