package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/university-api/internal/config"
)

func newSQLiteProvider(t *testing.T, policy RetryPolicy) *Provider {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	provider := NewProvider(sqlite.Open(dsn), policy, zerolog.Nop())
	t.Cleanup(func() {
		_ = provider.Close()
	})
	return provider
}

func TestAcquireRetriesUntilStoreIsReachable(t *testing.T) {
	sleeper := &recordingSleeper{}
	provider := newSQLiteProvider(t, RetryPolicy{Delay: DefaultRetryDelay, Sleep: sleeper.sleep})

	realOpen := provider.open
	opens := 0
	provider.open = func(ctx context.Context) (*gorm.DB, error) {
		opens++
		if opens <= 2 {
			return nil, errors.New("the database system is starting up")
		}
		return realOpen(ctx)
	}

	db, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Equal(t, 3, opens)
	require.Equal(t, []time.Duration{DefaultRetryDelay, DefaultRetryDelay}, sleeper.delays)

	_, err = provider.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, opens, "pool must be opened once")
}

func TestAcquireGivesUpWithBoundedPolicy(t *testing.T) {
	provider := newSQLiteProvider(t, RetryPolicy{Delay: time.Millisecond, MaxAttempts: 2})
	provider.open = func(context.Context) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}

	_, err := provider.Acquire(context.Background())
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestWithConnRunsOperationOnce(t *testing.T) {
	provider := newSQLiteProvider(t, RetryPolicy{Delay: time.Millisecond, MaxAttempts: 5})
	cause := errors.New("syntax error")

	calls := 0
	err := provider.WithConn(context.Background(), func(conn *gorm.DB) error {
		calls++
		return cause
	})

	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrStoreUnavailable)
	require.Equal(t, 1, calls)
}

func TestWithConnReturnsConnectionAfterPanic(t *testing.T) {
	provider := newSQLiteProvider(t, RetryPolicy{Delay: time.Millisecond, MaxAttempts: 1})

	db, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.Panics(t, func() {
		_ = provider.WithConn(context.Background(), func(*gorm.DB) error {
			panic("boom")
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = provider.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Exec("SELECT 1").Error
	})
	require.NoError(t, err)
	require.Zero(t, sqlDB.Stats().InUse)
}

func TestWithConnRetriesConnectionAcquisition(t *testing.T) {
	sleeper := &recordingSleeper{}
	provider := newSQLiteProvider(t, RetryPolicy{Delay: DefaultRetryDelay, Sleep: sleeper.sleep})

	realConnect := provider.connect
	failures := 0
	provider.connect = func(ctx context.Context, db *gorm.DB, fn func(conn *gorm.DB) error) error {
		if failures < 3 {
			failures++
			return errors.New("driver: bad connection")
		}
		return realConnect(ctx, db, fn)
	}

	calls := 0
	err := provider.WithConn(context.Background(), func(conn *gorm.DB) error {
		calls++
		return conn.Exec("SELECT 1").Error
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 3, failures)
	require.Equal(t, []time.Duration{DefaultRetryDelay, DefaultRetryDelay, DefaultRetryDelay}, sleeper.delays)
}

func TestWithConnGivesUpOnConnectionAcquisition(t *testing.T) {
	provider := newSQLiteProvider(t, RetryPolicy{Delay: time.Millisecond, MaxAttempts: 2})
	provider.connect = func(context.Context, *gorm.DB, func(conn *gorm.DB) error) error {
		return errors.New("driver: bad connection")
	}

	calls := 0
	err := provider.WithConn(context.Background(), func(*gorm.DB) error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Zero(t, calls)
}

func unreachableProvider(t *testing.T) (*Provider, *atomic.Int32) {
	t.Helper()

	provider := newSQLiteProvider(t, RetryPolicy{Delay: 5 * time.Millisecond})
	attempts := &atomic.Int32{}
	provider.open = func(context.Context) (*gorm.DB, error) {
		attempts.Add(1)
		return nil, errors.New("connection refused")
	}
	return provider, attempts
}

func TestCloseInterruptsRetryingAcquire(t *testing.T) {
	provider, attempts := unreachableProvider(t)

	result := make(chan error, 1)
	go func() {
		_, err := provider.Acquire(context.Background())
		result <- err
	}()

	require.Eventually(t, func() bool { return attempts.Load() >= 2 }, time.Second, time.Millisecond)

	closed := make(chan error, 1)
	go func() {
		closed <- provider.Close()
	}()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close blocked while Acquire was retrying")
	}

	select {
	case err := <-result:
		require.ErrorIs(t, err, ErrProviderClosed)
		require.ErrorIs(t, err, ErrStoreUnavailable)
	case <-time.After(time.Second):
		t.Fatal("Acquire kept retrying after Close")
	}
}

func TestAcquireHonoursCallerContextWhileAnotherCallerRetries(t *testing.T) {
	provider, attempts := unreachableProvider(t)

	background := make(chan error, 1)
	go func() {
		_, err := provider.Acquire(context.Background())
		background <- err
	}()
	require.Eventually(t, func() bool { return attempts.Load() >= 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := provider.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, provider.Close())
	require.ErrorIs(t, <-background, ErrProviderClosed)
}

func TestCloseInterruptsRetryingWithConn(t *testing.T) {
	provider := newSQLiteProvider(t, RetryPolicy{Delay: 5 * time.Millisecond})
	attempts := &atomic.Int32{}
	provider.connect = func(context.Context, *gorm.DB, func(conn *gorm.DB) error) error {
		attempts.Add(1)
		return errors.New("driver: bad connection")
	}

	result := make(chan error, 1)
	go func() {
		result <- provider.WithConn(context.Background(), func(*gorm.DB) error { return nil })
	}()
	require.Eventually(t, func() bool { return attempts.Load() >= 2 }, time.Second, time.Millisecond)

	require.NoError(t, provider.Close())

	select {
	case err := <-result:
		require.ErrorIs(t, err, ErrProviderClosed)
	case <-time.After(time.Second):
		t.Fatal("WithConn kept retrying after Close")
	}
}

func TestCloseAllowsReopen(t *testing.T) {
	provider := newSQLiteProvider(t, RetryPolicy{Delay: time.Millisecond, MaxAttempts: 1})

	_, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, provider.Close())
	require.NoError(t, provider.Close())

	_, err = provider.Acquire(context.Background())
	require.NoError(t, err)
}

func TestNewPostgresProviderValidatesConfig(t *testing.T) {
	_, err := NewPostgresProvider(config.DatabaseConfig{}, zerolog.Nop())
	require.Error(t, err)

	provider, err := NewPostgresProvider(config.DatabaseConfig{Host: "localhost", Port: 5432, Name: "university"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, DefaultRetryDelay, provider.policy.Delay)
	require.Zero(t, provider.policy.MaxAttempts)
}
