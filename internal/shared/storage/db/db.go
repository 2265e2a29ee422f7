package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"career-backend/internal/shared/telemetry"
)

// Role names the kind of process opening the usage ledger; each gets its own pool defaults.
type Role string

const (
	RoleServer  Role = "server"
	RoleLambda  Role = "lambda"
	RoleMigrate Role = "migrate"
)

// Options tunes the connection pool. Zero fields fall back to the role defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

var roleDefaults = map[Role]Options{
	RoleServer:  {MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second},
	RoleLambda:  {MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, PingTimeout: 3 * time.Second},
	RoleMigrate: {MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second},
}

var (
	openDB   = sql.Open
	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// CurrentRole reports RoleLambda inside AWS Lambda and RoleServer otherwise.
func CurrentRole() Role {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return RoleLambda
	}
	return RoleServer
}

// OptionsFor merges the non-zero fields of override over the defaults for role.
func OptionsFor(role Role, override Options) Options {
	opts, ok := roleDefaults[role]
	if !ok {
		opts = roleDefaults[RoleServer]
	}
	if override.MaxOpenConns > 0 {
		opts.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		opts.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		opts.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.PingTimeout > 0 {
		opts.PingTimeout = override.PingTimeout
	}
	return opts
}

// Connect opens a pgx-backed *sql.DB for the usage ledger and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	opts = OptionsFor(RoleServer, opts)

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"max_open": opts.MaxOpenConns,
		"max_idle": opts.MaxIdleConns,
	})
	return db, nil
}

// Shared returns one *sql.DB per process so warm Lambda invocations reuse their pool.
// A failed connect is not cached; the next call tries again.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDB != nil {
		telemetry.Debug("db.shared_reuse", nil)
		return sharedDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	sharedDB = db
	return db, nil
}
