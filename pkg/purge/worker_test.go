package purge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls   int
	purged  int64
	failing bool
}

func (f *fakeStore) PurgeExpiredSchemaChecks(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	if f.failing {
		return 0, assert.AnError
	}
	return f.purged, nil
}

func TestWorker_RunOnce(t *testing.T) {
	store := &fakeStore{purged: 3}
	w := New(store)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, store.calls)
}

func TestWorker_StartStop(t *testing.T) {
	store := &fakeStore{purged: 1}
	w := New(store, WithSchedule("@every 10ms"), WithTimeout(time.Second))

	require.NoError(t, w.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	assert.GreaterOrEqual(t, store.calls, 1)
}
