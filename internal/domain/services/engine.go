package services

import (
	"context"
	"sync"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services/detection"
	"scamtrap-lab/internal/domain/services/intel"
	"scamtrap-lab/pkg/logger"
)

// TurnInput carries everything the engine needs for one scammer turn.
// The LLM verdict is optional; nil means the first tier has no signal.
type TurnInput struct {
	Message    string
	Turn       int
	LLMVerdict *models.LLMVerdict
}

// TurnResult is what one pass through the engine produced.
type TurnResult struct {
	Verdict       models.Verdict
	NewEntities   int
	TotalEntities int
}

// Engine runs the per-turn core pipeline: merge extracted intelligence
// into the session aggregate, evaluate the detection cascade, fold the
// verdict into the ratchet and refresh the scam-type label. It performs
// no I/O; loading and saving the session is the caller's job.
//
// Calls for the same session id are serialized through a keyed lock
// table, so concurrent requests cannot interleave merge and evaluate on
// one session. Distinct sessions proceed fully in parallel.
type Engine struct {
	merger  *intel.Merger
	cascade *detection.Cascade
	logger  *logger.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngine creates a new turn engine
func NewEngine(merger *intel.Merger, cascade *detection.Cascade, log *logger.Logger) *Engine {
	return &Engine{
		merger:  merger,
		cascade: cascade,
		logger:  log.WithComponent("engine"),
		locks:   map[string]*sessionLock{},
	}
}

// ProcessTurn runs the core pipeline for one scammer turn. The caller
// must already have appended the message to the session transcript. The
// returned aggregate is the session's own, updated in place.
func (e *Engine) ProcessTurn(ctx context.Context, sess *models.Session, in TurnInput) (*models.Intelligence, TurnResult) {
	unlock := e.lockSession(sess.ID)
	defer unlock()

	added := e.merger.MergeTurn(sess, in.Turn)

	verdict := e.cascade.Evaluate(sess, in.Message, in.LLMVerdict)
	sess.ApplyVerdict(verdict)

	if sess.Detection.Detected {
		sess.ScamType = intel.Classify(sess.Intelligence)
	}

	return sess.Intelligence, TurnResult{
		Verdict:       verdict,
		NewEntities:   added,
		TotalEntities: sess.Intelligence.Count(),
	}
}

// lockSession acquires the keyed lock for a session id. Lock entries are
// reference counted and removed once the last holder releases, so the
// table does not grow with session churn.
func (e *Engine) lockSession(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sessionLock{}
		e.locks[id] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, id)
		}
		e.mu.Unlock()
	}
}
