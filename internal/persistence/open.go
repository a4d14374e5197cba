package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Options selects and locates a store.
type Options struct {
	Driver   string // DriverSQLite (default) or DriverMongo
	Path     string // SQLite database file
	URL      string // MongoDB connection string
	Database string // MongoDB database name

	// ConnectTimeout bounds how long Open keeps retrying the initial ping.
	// Zero means 30 seconds.
	ConnectTimeout time.Duration
}

// Open builds the configured store and waits, with exponential backoff, until
// it answers a ping. Startup is the only place the store is retried.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store Store
		err   error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a database path")
		}
		store, err = NewSQLiteStore(ctx, opts.Path)
	case DriverMongo:
		if opts.URL == "" {
			return nil, fmt.Errorf("mongo store requires a connection URL")
		}
		store, err = NewMongoStore(ctx, opts.URL, opts.Database)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := waitReady(ctx, store, opts.ConnectTimeout, logger); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("store ready", zap.String("driver", driverName(opts.Driver)))
	return store, nil
}

func waitReady(ctx context.Context, store Store, timeout time.Duration, logger *zap.Logger) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = timeout

	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return store.Ping(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("store not reachable, retrying", zap.Error(err), zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

func driverName(d string) string {
	if d == "" {
		return DriverSQLite
	}
	return d
}
