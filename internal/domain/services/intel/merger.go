package intel

import (
	"strings"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services/extraction"
	"scamtrap-lab/pkg/logger"
)

// Merger folds freshly extracted entities into a session aggregate. The
// aggregate is append-only: merging the same message twice is a no-op.
type Merger struct {
	extractor *extraction.Extractor
	logger    *logger.Logger
}

// NewMerger creates a new intelligence merger
func NewMerger(ex *extraction.Extractor, log *logger.Logger) *Merger {
	return &Merger{
		extractor: ex,
		logger:    log.WithComponent("merger"),
	}
}

// MergeTurn runs both extraction passes for one scammer turn. The
// incremental pass covers every scammer message past ExtractedCount, so
// a session rebuilt from replayed history catches up in one call; the
// sweep over the full scammer transcript then catches values whose
// parts arrived in separate messages, such as an account number
// dictated across two turns. The caller must have appended the current
// message to the session before calling.
func (m *Merger) MergeTurn(sess *models.Session, turn int) int {
	scammer := sess.ScammerMessages()
	start := sess.ExtractedCount
	if start < 0 || start > len(scammer) {
		start = 0
	}

	added := 0
	for i, msg := range scammer[start:] {
		added += m.merge(sess.Intelligence, m.extractor.Extract(msg, start+i+1))
	}
	sess.ExtractedCount = len(scammer)

	if transcript := strings.Join(scammer, "\n"); transcript != "" {
		added += m.merge(sess.Intelligence, m.extractor.Extract(transcript, turn))
	}

	if added > 0 {
		m.logger.WithSession(sess.ID).Debug().
			Int("turn", turn).
			Int("new_entities", added).
			Int("total_entities", sess.Intelligence.Count()).
			Msg("merged intelligence")
	}
	return added
}

func (m *Merger) merge(intel *models.Intelligence, entities []models.Entity) int {
	added := 0
	for _, e := range entities {
		if intel.Add(e.Category, e.NormalizedText) {
			added++
		}
	}
	return added
}
