package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakeCleaner) Cleanup(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSweeper_RunOnce_WithoutLease(t *testing.T) {
	cleaner := &fakeCleaner{n: 3}
	s := NewSweeper(cleaner, nil, time.Minute)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestSweeper_RunOnce_AcquiresAndReleasesLease(t *testing.T) {
	mr, client := newTestRedis(t)
	cleaner := &fakeCleaner{n: 4}
	s := NewSweeper(cleaner, NewRedisLease(client, "sweep", time.Minute), time.Minute)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.False(t, mr.Exists("sweep"), "lease must be released after the sweep")
}

func TestSweeper_RunOnce_SkipsWhenLeaseHeld(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set("sweep", "other-instance"))

	cleaner := &fakeCleaner{n: 9}
	s := NewSweeper(cleaner, NewRedisLease(client, "sweep", time.Minute), time.Minute)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, cleaner.calls.Load())

	got, err := mr.Get("sweep")
	require.NoError(t, err)
	assert.Equal(t, "other-instance", got, "foreign lease must not be released")
}

func TestSweeper_RunOnce_LeaseExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	lease := NewRedisLease(client, "sweep", time.Second)

	ok, err := lease.Acquire(context.Background(), "crashed-instance")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	cleaner := &fakeCleaner{n: 1}
	n, err := NewSweeper(cleaner, lease, time.Minute).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSweeper_RunOnce_RedisDownSweepsWithoutLease(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	cleaner := &fakeCleaner{n: 6}
	n, err := NewSweeper(cleaner, NewRedisLease(client, "sweep", time.Minute), time.Minute).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestSweeper_RunOnce_CleanupError(t *testing.T) {
	mr, client := newTestRedis(t)
	cleaner := &fakeCleaner{n: 2, err: errors.New("db down")}

	n, err := NewSweeper(cleaner, NewRedisLease(client, "sweep", time.Minute), time.Minute).RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists("sweep"))
}

func TestSweeper_Start(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewSweeper(cleaner, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestRedisLease_ReleaseOnlyOwn(t *testing.T) {
	mr, client := newTestRedis(t)
	lease := NewRedisLease(client, "k", time.Minute)
	ctx := context.Background()

	ok, err := lease.Acquire(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lease.Acquire(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lease.Release(ctx, "b"))
	assert.True(t, mr.Exists("k"))

	require.NoError(t, lease.Release(ctx, "a"))
	assert.False(t, mr.Exists("k"))
}

func TestSweeper_Start_NonPositiveInterval(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewSweeper(cleaner, nil, 0)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return immediately for a non-positive interval")
	}
	assert.Equal(t, int32(0), cleaner.calls.Load())
}
