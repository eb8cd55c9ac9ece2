package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/university-api/internal/config"
)

// ErrProviderClosed is returned to callers whose wait for the store was interrupted by Close.
var ErrProviderClosed = errors.New("connection provider closed")

// Provider hands out pooled store connections, waiting for the store according to its retry policy.
type Provider struct {
	dialector gorm.Dialector
	policy    RetryPolicy
	logger    zerolog.Logger
	open      func(ctx context.Context) (*gorm.DB, error)
	connect   func(ctx context.Context, db *gorm.DB, fn func(conn *gorm.DB) error) error

	mu      sync.Mutex
	db      *gorm.DB
	closing chan struct{}
}

// NewProvider constructs a provider for the given dialector. The pool is opened lazily.
func NewProvider(dialector gorm.Dialector, policy RetryPolicy, logger zerolog.Logger) *Provider {
	p := &Provider{
		dialector: dialector,
		policy:    policy,
		logger:    logger.With().Str("component", "connection_provider").Logger(),
		closing:   make(chan struct{}),
	}
	p.open = p.openDialector
	p.connect = pinConnection

	return p
}

// NewPostgresProvider builds a provider for the configured PostgreSQL database.
func NewPostgresProvider(cfg config.DatabaseConfig, logger zerolog.Logger) (*Provider, error) {
	if cfg.Host == "" || cfg.Name == "" {
		return nil, fmt.Errorf("postgres host and database name must not be empty")
	}

	policy := RetryPolicy{Delay: cfg.RetryDelay, MaxAttempts: cfg.RetryMaxAttempts}
	if policy.Delay == 0 {
		policy.Delay = DefaultRetryDelay
	}

	return NewProvider(postgres.Open(cfg.DSN()), policy, logger), nil
}

// Acquire returns the pooled handle bound to ctx, opening the pool first if needed.
// The retry loop stops when ctx is done or the provider is closed.
func (p *Provider) Acquire(ctx context.Context) (*gorm.DB, error) {
	db, closing := p.current()
	if db != nil {
		return db.WithContext(ctx), nil
	}

	waitCtx, cancel := untilClosed(ctx, closing)
	defer cancel()

	err := p.policy.Do(waitCtx, p.logger, func(ctx context.Context) error {
		opened, err := p.open(ctx)
		if err != nil {
			return err
		}
		db = opened
		return nil
	})
	if err != nil {
		if isClosed(closing) {
			return nil, fmt.Errorf("%w: %w", ErrProviderClosed, err)
		}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closing != closing:
		closePool(db)
		return nil, ErrProviderClosed
	case p.db != nil:
		// A concurrent caller published its pool first.
		closePool(db)
	default:
		p.logger.Info().Msg("store connection established")
		p.db = db
	}

	return p.db.WithContext(ctx), nil
}

// WithConn pins one pooled connection for the duration of fn and always returns it to the pool.
// Failures to obtain the connection are retried; fn itself runs at most once.
func (p *Provider) WithConn(ctx context.Context, fn func(conn *gorm.DB) error) error {
	_, closing := p.current()
	db, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	waitCtx, cancel := untilClosed(ctx, closing)
	defer cancel()

	var (
		started bool
		fnErr   error
	)
	err = p.policy.Do(waitCtx, p.logger, func(ctx context.Context) error {
		connErr := p.connect(ctx, db, func(conn *gorm.DB) error {
			started = true
			fnErr = fn(conn)
			return fnErr
		})
		if started {
			return nil
		}
		return connErr
	})
	if err != nil {
		if isClosed(closing) {
			return fmt.Errorf("%w: %w", ErrProviderClosed, err)
		}
		return err
	}

	return fnErr
}

// Close releases every pooled connection and interrupts callers still waiting for the store.
// The provider may be used again afterwards; the next call reopens the pool.
func (p *Provider) Close() error {
	p.mu.Lock()
	close(p.closing)
	p.closing = make(chan struct{})
	db := p.db
	p.db = nil
	p.mu.Unlock()

	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Provider) current() (*gorm.DB, chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db, p.closing
}

func untilClosed(ctx context.Context, closing <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-closing:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func isClosed(closing <-chan struct{}) bool {
	select {
	case <-closing:
		return true
	default:
		return false
	}
}

func pinConnection(ctx context.Context, db *gorm.DB, fn func(conn *gorm.DB) error) error {
	return db.WithContext(ctx).Connection(fn)
}

func closePool(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (p *Provider) openDialector(ctx context.Context) (*gorm.DB, error) {
	db, err := gorm.Open(p.dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve connection pool: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	return db, nil
}
