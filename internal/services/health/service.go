package health

import (
	"context"
	"database/sql"
	"time"
)

// Service reports liveness and the state of optional dependencies.
type Service struct {
	DB       *sql.DB
	Provider string
	Model    string
}

// NewService constructs a health service. db may be nil when the usage ledger runs in memory.
func NewService(db *sql.DB, provider, model string) *Service {
	return &Service{DB: db, Provider: provider, Model: model}
}

// Status returns the health payload. ok stays true when the database is unreachable
// because analyses do not depend on it.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{
		"ok":       true,
		"provider": s.Provider,
		"model":    s.Model,
		"database": "disabled",
	}
	if s.DB == nil {
		return out
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		out["database"] = "unavailable"
		return out
	}
	out["database"] = "up"
	return out
}
