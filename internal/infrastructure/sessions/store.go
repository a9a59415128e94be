package sessions

import (
	"context"
	"errors"

	"scamtrap-lab/internal/domain/models"
)

// ErrNotFound is returned when a session id has no stored state.
var ErrNotFound = errors.New("session not found")

// Store is the durable home of conversation state between turns.
//
// Acquire takes the per-session turn lock and blocks until it is held or
// the context ends. The lock spans one full load-process-save cycle, so
// concurrent requests for the same session cannot lose updates; the
// Redis implementation makes this hold across instances.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, id string) error
	// List returns the ids of all live sessions. Inspection surface, not
	// a hot path.
	List(ctx context.Context) ([]string, error)
	Acquire(ctx context.Context, id string) (release func(), err error)
}
