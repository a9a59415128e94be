package sessions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/infrastructure/cache"
	"scamtrap-lab/pkg/logger"
)

// lockPollInterval is how often a blocked Acquire retries the SetNX.
const lockPollInterval = 50 * time.Millisecond

// RedisStore keeps each session as one JSON blob with a sliding TTL.
type RedisStore struct {
	cache   *cache.RedisCache
	ttl     time.Duration
	lockTTL time.Duration
	logger  *logger.Logger
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(c *cache.RedisCache, cfg config.SessionsConfig, log *logger.Logger) *RedisStore {
	return &RedisStore{
		cache:   c,
		ttl:     cfg.TTL,
		lockTTL: cfg.LockTTL,
		logger:  log.WithComponent("session-store"),
	}
}

// Get loads a session by id
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := s.cache.GetJSON(ctx, cache.KeySessionPrefix+id, &sess)
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if sess.Intelligence == nil {
		sess.Intelligence = &models.Intelligence{}
	}
	return &sess, nil
}

// Save stores a session and refreshes its TTL
func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := s.cache.SetJSON(ctx, cache.KeySessionPrefix+sess.ID, sess, s.ttl); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	return nil
}

// Delete removes a session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, cache.KeySessionPrefix+id)
}

// List returns the ids of all sessions that have not yet expired
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.cache.Keys(ctx, cache.KeySessionPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len(cache.KeySessionPrefix):])
	}
	sort.Strings(ids)
	return ids, nil
}

// Acquire blocks until the session turn lock is held. The lock carries a
// TTL so a crashed holder cannot wedge the session forever.
func (s *RedisStore) Acquire(ctx context.Context, id string) (func(), error) {
	for {
		ok, err := s.cache.AcquireSessionLock(ctx, id, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock for session %s: %w", id, err)
		}
		if ok {
			return func() {
				if err := s.cache.ReleaseSessionLock(context.Background(), id); err != nil {
					s.logger.Warn().Err(err).Str("session_id", id).Msg("failed to release session lock")
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}
