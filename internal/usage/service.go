package usage

import (
	"context"
	"strings"
	"time"

	"career-backend/internal/shared/util"
)

type store interface {
	Get(ctx context.Context, clientID string, limit int, now time.Time) (Usage, error)
	Consume(ctx context.Context, clientID string, limit int, now time.Time) (Usage, error)
}

// Service enforces a per-client daily analysis quota.
type Service struct {
	store store
	limit int
	now   func() time.Time
}

// NewService constructs a Service with an in-memory store. A limit of zero disables the quota.
func NewService(limit int) *Service {
	return &Service{store: newMemoryStore(), limit: limit, now: utcNow}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store, limit int) *Service {
	return &Service{store: pgStore, limit: limit, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// Enabled reports whether a quota is enforced.
func (s *Service) Enabled() bool {
	return s != nil && s.limit > 0
}

// Get returns the current usage for a client, starting a new window if needed.
func (s *Service) Get(ctx context.Context, clientID string) (Usage, error) {
	if !s.Enabled() {
		return Usage{ClientID: normalizeClientID(clientID)}, nil
	}
	return s.store.Get(ctx, normalizeClientID(clientID), s.limit, s.now())
}

// Consume records one analysis for the client or returns ErrLimitReached.
func (s *Service) Consume(ctx context.Context, clientID string) (Usage, error) {
	if !s.Enabled() {
		return Usage{ClientID: normalizeClientID(clientID)}, nil
	}
	return s.store.Consume(ctx, normalizeClientID(clientID), s.limit, s.now())
}

// normalizeClientID hashes the caller address; the ledger only ever sees the hash.
func normalizeClientID(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = "anonymous"
	}
	return util.HashKey(clientID)
}
