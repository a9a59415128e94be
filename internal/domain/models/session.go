package models

import "time"

// MessageSender distinguishes the two sides of a honeypot conversation.
type MessageSender string

const (
	SenderScammer MessageSender = "scammer"
	SenderAgent   MessageSender = "agent"
)

// Message is a single conversation turn.
type Message struct {
	Sender    MessageSender `json:"sender"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp,omitempty"`
}

// DetectionState is the per-session ratchet. Once Detected is set it is
// never cleared; later turns keep the first firing tier and confidence
// unless a higher-confidence signal arrives.
type DetectionState struct {
	Detected   bool          `json:"detected"`
	Tier       DetectionTier `json:"tier"`
	Confidence float64       `json:"confidence"`
	Reasons    []string      `json:"reasons,omitempty"`
	DetectedAt *time.Time    `json:"detected_at,omitempty"`
}

// Session is the durable state for one honeypot conversation.
type Session struct {
	ID       string            `json:"id"`
	Messages []Message         `json:"messages"`
	Metadata map[string]string `json:"metadata,omitempty"`

	// ExtractedCount is how many scammer messages have already been
	// through the incremental extraction pass.
	ExtractedCount int `json:"extracted_count"`

	Intelligence *Intelligence  `json:"intelligence"`
	Detection    DetectionState `json:"detection"`
	ScamType     ScamType       `json:"scam_type,omitempty"`

	CallbackURL  string    `json:"callback_url,omitempty"`
	CallbackSent bool      `json:"callback_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSession creates an empty session for the given id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		Intelligence: &Intelligence{},
		Detection:    DetectionState{Tier: TierNone},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ScammerMessages returns the scammer-side texts in order.
func (s *Session) ScammerMessages() []string {
	var out []string
	for _, m := range s.Messages {
		if m.Sender == SenderScammer {
			out = append(out, m.Text)
		}
	}
	return out
}

// TurnCount is the number of scammer messages received so far.
func (s *Session) TurnCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == SenderScammer {
			n++
		}
	}
	return n
}

// ApplyVerdict folds a turn verdict into the ratchet state.
func (s *Session) ApplyVerdict(v Verdict) {
	if !v.Detected {
		return
	}
	if !s.Detection.Detected {
		now := time.Now().UTC()
		s.Detection = DetectionState{
			Detected:   true,
			Tier:       v.Tier,
			Confidence: v.Confidence,
			Reasons:    v.Reasons,
			DetectedAt: &now,
		}
		return
	}
	if v.Confidence > s.Detection.Confidence {
		s.Detection.Confidence = v.Confidence
	}
}
