package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store over the analysis_usage table.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, clientID string, limit int, now time.Time) (Usage, error) {
	var u Usage
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		u, err = s.lockAndEnsure(ctx, tx, clientID, limit, now)
		return err
	})
	return u, err
}

func (s *pgStore) Consume(ctx context.Context, clientID string, limit int, now time.Time) (Usage, error) {
	var u Usage
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		u, err = s.lockAndEnsure(ctx, tx, clientID, limit, now)
		if err != nil {
			return err
		}
		if u.Used+1 > u.Limit {
			return ErrLimitReached
		}
		u.Used++
		_, err = tx.ExecContext(ctx, `
UPDATE analysis_usage SET used = $1, updated_at = $2 WHERE client_id = $3`, u.Used, now, clientID)
		return err
	})
	return u, err
}

func (s *pgStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, clientID string, limit int, now time.Time) (Usage, error) {
	u, err := selectForUpdate(ctx, tx, clientID, limit)
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent first request may insert the same client; the loser waits on the
		// winner's row and locks it below.
		fresh := freshUsage(clientID, limit, now)
		if _, err = tx.ExecContext(ctx, `
INSERT INTO analysis_usage (client_id, used, resets_at, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (client_id) DO NOTHING`,
			clientID, fresh.Used, fresh.ResetsAt, now); err != nil {
			return Usage{}, err
		}
		u, err = selectForUpdate(ctx, tx, clientID, limit)
	}
	if err != nil {
		return Usage{}, err
	}

	if expired(u, now) {
		u.Used = 0
		u.ResetsAt = now.Add(Window)
		if _, err = tx.ExecContext(ctx, `
UPDATE analysis_usage SET used = $1, resets_at = $2, updated_at = $3 WHERE client_id = $4`, u.Used, u.ResetsAt, now, clientID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}

func selectForUpdate(ctx context.Context, tx *sql.Tx, clientID string, limit int) (Usage, error) {
	u := Usage{ClientID: clientID, Limit: limit}
	row := tx.QueryRowContext(ctx, `
SELECT used, resets_at FROM analysis_usage WHERE client_id = $1 FOR UPDATE`, clientID)
	if err := row.Scan(&u.Used, &u.ResetsAt); err != nil {
		return Usage{}, err
	}
	return u, nil
}
