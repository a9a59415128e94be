package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/infrastructure/database"
)

// ErrReportNotFound is returned when no archived report matches.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository persists finished-session reports
type ReportRepository struct {
	db *database.PostgresDB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.PostgresDB) *ReportRepository {
	return &ReportRepository{db: db}
}

// EnsureSchema creates the reports table if it does not exist
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS session_reports (
			id UUID PRIMARY KEY,
			session_id TEXT NOT NULL,
			scam_detected BOOLEAN NOT NULL,
			scam_type TEXT NOT NULL DEFAULT '',
			detection_tier TEXT NOT NULL DEFAULT 'none',
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_messages INT NOT NULL DEFAULT 0,
			entity_count INT NOT NULL DEFAULT 0,
			intelligence JSONB NOT NULL DEFAULT '{}'::jsonb,
			messages JSONB NOT NULL DEFAULT '[]'::jsonb,
			agent_notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_session_reports_session_id ON session_reports (session_id);
		CREATE INDEX IF NOT EXISTS idx_session_reports_created_at ON session_reports (created_at DESC)`

	if err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure reports schema: %w", err)
	}
	return nil
}

// Create inserts a new archived report
func (r *ReportRepository) Create(ctx context.Context, rep *models.ArchivedReport) (*models.ArchivedReport, error) {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO session_reports (
			id, session_id, scam_detected, scam_type, detection_tier,
			confidence, total_messages, entity_count,
			intelligence, messages, agent_notes, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		rep.ID, rep.SessionID, rep.ScamDetected, rep.ScamType, rep.DetectionTier,
		rep.Confidence, rep.TotalMessages, rep.EntityCount,
		rep.Intelligence, rep.Messages, rep.AgentNotes, rep.CreatedAt,
	).Scan(&rep.ID, &rep.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return rep, nil
}

// GetByID retrieves an archived report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ArchivedReport, error) {
	query := `
		SELECT id, session_id, scam_detected, scam_type, detection_tier,
			   confidence, total_messages, entity_count,
			   intelligence, messages, agent_notes, created_at
		FROM session_reports
		WHERE id = $1`

	return r.scanReport(r.db.QueryRow(ctx, query, id))
}

// GetLatestBySession retrieves the most recent report for a session
func (r *ReportRepository) GetLatestBySession(ctx context.Context, sessionID string) (*models.ArchivedReport, error) {
	query := `
		SELECT id, session_id, scam_detected, scam_type, detection_tier,
			   confidence, total_messages, entity_count,
			   intelligence, messages, agent_notes, created_at
		FROM session_reports
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanReport(r.db.QueryRow(ctx, query, sessionID))
}

// List retrieves recent reports, newest first
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]*models.ArchivedReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, session_id, scam_detected, scam_type, detection_tier,
			   confidence, total_messages, entity_count,
			   intelligence, messages, agent_notes, created_at
		FROM session_reports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ArchivedReport
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	return reports, rows.Err()
}

// Stats computes aggregate counters over the archive. Both queries run in
// one transaction so the totals and the breakdowns agree.
func (r *ReportRepository) Stats(ctx context.Context) (*models.ReportStats, error) {
	stats := &models.ReportStats{
		ByScamType: map[string]int{},
		ByTier:     map[string]int{},
	}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*),
				   COUNT(*) FILTER (WHERE scam_detected),
				   COALESCE(SUM(entity_count), 0)
			FROM session_reports`,
		).Scan(&stats.TotalReports, &stats.ScamsDetected, &stats.TotalEntities)
		if err != nil {
			return fmt.Errorf("failed to compute report stats: %w", err)
		}

		rows, err := tx.Query(ctx, `
			SELECT scam_type, detection_tier, COUNT(*)
			FROM session_reports
			WHERE scam_detected
			GROUP BY scam_type, detection_tier`)
		if err != nil {
			return fmt.Errorf("failed to compute report breakdowns: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var scamType, tier string
			var count int
			if err := rows.Scan(&scamType, &tier, &count); err != nil {
				return err
			}
			stats.ByScamType[scamType] += count
			stats.ByTier[tier] += count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *ReportRepository) scanReport(row pgx.Row) (*models.ArchivedReport, error) {
	var rep models.ArchivedReport
	err := row.Scan(
		&rep.ID, &rep.SessionID, &rep.ScamDetected, &rep.ScamType, &rep.DetectionTier,
		&rep.Confidence, &rep.TotalMessages, &rep.EntityCount,
		&rep.Intelligence, &rep.Messages, &rep.AgentNotes, &rep.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	return &rep, nil
}
