package sessions

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamtrap-lab/internal/domain/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := models.NewSession("s-mem-1")
	sess.Messages = append(sess.Messages, models.Message{Sender: models.SenderScammer, Text: "hello"})
	sess.Intelligence.Add(models.CategoryUpiID, "scammer@fakebank")
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s-mem-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, []string{"scammer@fakebank"}, got.Intelligence.UpiIDs)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := models.NewSession("s-mem-2")
	require.NoError(t, store.Save(ctx, sess))

	first, err := store.Get(ctx, "s-mem-2")
	require.NoError(t, err)
	first.Intelligence.Add(models.CategoryBankAccount, "123456789")

	second, err := store.Get(ctx, "s-mem-2")
	require.NoError(t, err)
	assert.Empty(t, second.Intelligence.BankAccounts)
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.NewSession("s-mem-3")))
	require.NoError(t, store.Delete(ctx, "s-mem-3"))

	_, err := store.Get(ctx, "s-mem-3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(ctx, models.NewSession("s-mem-b")))
	require.NoError(t, store.Save(ctx, models.NewSession("s-mem-a")))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-mem-a", "s-mem-b"}, ids)

	require.NoError(t, store.Delete(ctx, "s-mem-a"))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-mem-b"}, ids)
}

func TestMemoryStoreAcquireSerializes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, models.NewSession("s-mem-4")))

	// Each worker does a read-modify-write under the lock; without
	// mutual exclusion most increments would be lost.
	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := store.Acquire(ctx, "s-mem-4")
			require.NoError(t, err)
			defer release()

			sess, err := store.Get(ctx, "s-mem-4")
			require.NoError(t, err)
			sess.ExtractedCount++
			require.NoError(t, store.Save(ctx, sess))
		}()
	}
	wg.Wait()

	sess, err := store.Get(ctx, "s-mem-4")
	require.NoError(t, err)
	assert.Equal(t, workers, sess.ExtractedCount)
}
