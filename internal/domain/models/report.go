package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedReport is a finished conversation's report as persisted in
// Postgres for later analysis.
type ArchivedReport struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	ScamDetected  bool      `json:"scam_detected" db:"scam_detected"`
	ScamType      ScamType  `json:"scam_type" db:"scam_type"`
	DetectionTier string    `json:"detection_tier" db:"detection_tier"`
	Confidence    float64   `json:"confidence" db:"confidence"`
	TotalMessages int       `json:"total_messages" db:"total_messages"`
	EntityCount   int       `json:"entity_count" db:"entity_count"`

	// Full aggregate and transcript, stored as JSONB.
	Intelligence *Intelligence `json:"intelligence" db:"intelligence"`
	Messages     []Message     `json:"messages" db:"messages"`

	AgentNotes string    `json:"agent_notes,omitempty" db:"agent_notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReportStats are aggregate counters over the archive.
type ReportStats struct {
	TotalReports  int            `json:"total_reports"`
	ScamsDetected int            `json:"scams_detected"`
	ByScamType    map[string]int `json:"by_scam_type"`
	ByTier        map[string]int `json:"by_tier"`
	TotalEntities int            `json:"total_entities"`
}
