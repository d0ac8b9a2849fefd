package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestStore(ttl time.Duration) (*SessionStore, *time.Time) {
	clock := t0
	s := NewSessionStore(ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ctx := context.Background()

	sess := domain.NewSession("s-1", "Ana", t0)
	require.NoError(t, s.Save(ctx, sess))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, s.Delete(ctx, "s-1"))
	require.NoError(t, s.Delete(ctx, "s-1"))

	_, err = s.Get(ctx, "s-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionStore_GetTouches(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	sess := domain.NewSession("s-1", "Ana", t0)
	require.NoError(t, s.Save(context.Background(), sess))

	*clock = t0.Add(50 * time.Minute)
	_, err := s.Get(context.Background(), "s-1")
	require.NoError(t, err)

	assert.Equal(t, clock.UnixNano(), sess.LastActive().UnixNano())
}

func TestSessionStore_Sweep(t *testing.T) {
	s, clock := newTestStore(30 * time.Minute)
	ctx := context.Background()

	idle := domain.NewSession("idle", "Ana", t0)
	fresh := domain.NewSession("fresh", "Ana", t0.Add(20*time.Minute))
	submitting := domain.NewSession("submitting", "Ana", t0)
	submitting.State = domain.StateSubmitting

	for _, sess := range []*domain.Session{idle, fresh, submitting} {
		require.NoError(t, s.Save(ctx, sess))
	}

	*clock = t0.Add(45 * time.Minute)
	assert.Equal(t, 1, s.Sweep())

	_, err := s.Get(ctx, "idle")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "submitting")
	assert.NoError(t, err)
}

func TestSessionStore_ZeroTTLNeverExpires(t *testing.T) {
	s, clock := newTestStore(0)
	require.NoError(t, s.Save(context.Background(), domain.NewSession("s-1", "Ana", t0)))

	*clock = t0.Add(365 * 24 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestSessionStore_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
