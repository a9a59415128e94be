package models

import "time"

// EngageRequest is the inbound payload for one conversation turn.
type EngageRequest struct {
	SessionID           string            `json:"sessionId"`
	Message             string            `json:"message"`
	ConversationHistory []HistoryItem     `json:"conversationHistory,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	CallbackURL         string            `json:"callbackUrl,omitempty"`
	IsLastTurn          bool              `json:"isLastTurn,omitempty"`
}

// HistoryItem mirrors the evaluator's view of prior turns. Sender values
// other than "agent"/"bot" are treated as scammer-side.
type HistoryItem struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// EngageResponse is the decoy reply returned to the evaluator.
type EngageResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// EngagementMetrics summarize how long the honeypot kept the adversary
// talking.
type EngagementMetrics struct {
	TotalMessages   int     `json:"totalMessages"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// IntelligenceReport is the final payload delivered to the callback URL
// when a conversation ends.
type IntelligenceReport struct {
	ReportID              string            `json:"reportId"`
	SessionID             string            `json:"sessionId"`
	ScamDetected          bool              `json:"scamDetected"`
	ScamType              ScamType          `json:"scamType"`
	Confidence            float64           `json:"confidence"`
	TotalMessages         int               `json:"totalMessages"`
	ExtractedIntelligence *Intelligence     `json:"extractedIntelligence"`
	AgentNotes            string            `json:"agentNotes,omitempty"`
	EngagementMetrics     EngagementMetrics `json:"engagementMetrics"`
	CreatedAt             time.Time         `json:"createdAt"`
}
