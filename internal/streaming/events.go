package streaming

import (
	"time"

	"github.com/google/uuid"

	"scamtrap-lab/internal/domain/models"
)

// EventType represents the type of session event
type EventType string

const (
	EventTypeSessionStarted EventType = "session_started"
	EventTypeIntelExtracted EventType = "intel_extracted"
	EventTypeScamDetected   EventType = "scam_detected"
	EventTypeSessionClosed  EventType = "session_closed"
)

// SessionEvent is a real-time update from a honeypot conversation
type SessionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	SessionID string `json:"session_id"`
	Turn      int    `json:"turn,omitempty"`

	// Detection state
	Detected   bool            `json:"detected,omitempty"`
	Tier       string          `json:"tier,omitempty"`
	ScamType   models.ScamType `json:"scam_type,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`

	// Extraction counters
	NewEntities   int `json:"new_entities,omitempty"`
	TotalEntities int `json:"total_entities,omitempty"`

	// Metadata
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewSessionEvent creates a session event with the detection state
// snapshotted from the session.
func NewSessionEvent(eventType EventType, sess *models.Session, turn int) *SessionEvent {
	return &SessionEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		SessionID:     sess.ID,
		Turn:          turn,
		Detected:      sess.Detection.Detected,
		Tier:          string(sess.Detection.Tier),
		ScamType:      sess.ScamType,
		Confidence:    sess.Detection.Confidence,
		TotalEntities: sess.Intelligence.Count(),
	}
}

// Subscription represents a monitor's filter preferences
type Subscription struct {
	// Filter by session ids (empty = all)
	SessionIDs []string `json:"session_ids,omitempty"`

	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Only sessions whose verdict has already ratcheted to detected
	DetectedOnly bool `json:"detected_only,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *SessionEvent) bool {
	if len(s.SessionIDs) > 0 {
		found := false
		for _, id := range s.SessionIDs {
			if id == event.SessionID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.DetectedOnly && !event.Detected {
		return false
	}

	return true
}
