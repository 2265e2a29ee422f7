package usage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*pgStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPGStore(db), mock
}

func TestPGStoreConsumeCreatesRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used, resets_at FROM analysis_usage").
		WithArgs("client-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO analysis_usage .* ON CONFLICT \\(client_id\\) DO NOTHING").
		WithArgs("client-1", 0, now.Add(Window), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT used, resets_at FROM analysis_usage").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"used", "resets_at"}).AddRow(0, now.Add(Window)))
	mock.ExpectExec("UPDATE analysis_usage SET used").
		WithArgs(1, now, "client-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := store.Consume(context.Background(), "client-1", 5, now)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if u.Used != 1 || u.Limit != 5 {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreConsumeAtLimitRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used, resets_at FROM analysis_usage").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"used", "resets_at"}).AddRow(3, now.Add(time.Hour)))
	mock.ExpectRollback()

	_, err := store.Consume(context.Background(), "client-1", 3, now)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreGetResetsExpiredWindow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used, resets_at FROM analysis_usage").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"used", "resets_at"}).AddRow(7, now.Add(-time.Minute)))
	mock.ExpectExec("UPDATE analysis_usage SET used = \\$1, resets_at").
		WithArgs(0, now.Add(Window), now, "client-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := store.Get(context.Background(), "client-1", 10, now)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Used != 0 || !u.ResetsAt.Equal(now.Add(Window)) {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreConsumeLosesInsertRace(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Another request created the row between our SELECT and INSERT.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used, resets_at FROM analysis_usage").
		WithArgs("client-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO analysis_usage .* ON CONFLICT \\(client_id\\) DO NOTHING").
		WithArgs("client-1", 0, now.Add(Window), now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT used, resets_at FROM analysis_usage").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"used", "resets_at"}).AddRow(1, now.Add(Window)))
	mock.ExpectExec("UPDATE analysis_usage SET used").
		WithArgs(2, now, "client-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := store.Consume(context.Background(), "client-1", 5, now)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if u.Used != 2 {
		t.Fatalf("expected used=2 after the concurrent insert, got %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
