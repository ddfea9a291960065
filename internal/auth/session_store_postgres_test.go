package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestNewPostgresSessionStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hr_sessions").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = NewPostgresSessionStore(db)
	if err != nil {
		t.Fatalf("NewPostgresSessionStore() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestNewPostgresSessionStoreRequiresDB(t *testing.T) {
	if _, err := NewPostgresSessionStore(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestPostgresSessionStoreLoadAndSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hr_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresSessionStore(db)
	if err != nil {
		t.Fatalf("NewPostgresSessionStore() error: %v", err)
	}

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	sessions := map[string]Session{
		"tok1": {
			ID:        "sid1",
			Token:     "tok1",
			Role:      RoleEmployee,
			Profile:   Profile{ID: 9, Username: "eve@user", Role: RoleEmployee, ManagerID: 2, HRID: 1},
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM hr_sessions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO hr_sessions").
		WithArgs("tok1", "sid1", "Employee", sqlmock.AnyArg(), now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := store.Save(sessions); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	rows := sqlmock.NewRows([]string{"token", "session_id", "role", "profile", "created_at", "expires_at"}).
		AddRow("tok1", "sid1", "Employee", []byte(`{"id":9,"username":"eve@user","role":"Employee","managerId":2,"hrId":1}`), now, now.Add(time.Hour))
	mock.ExpectQuery("SELECT token, session_id, role, profile, created_at, expires_at FROM hr_sessions").
		WillReturnRows(rows)

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	got := loaded["tok1"]
	if len(loaded) != 1 || got.ID != "sid1" || got.Role != RoleEmployee || got.Profile.ManagerID != 2 {
		t.Fatalf("unexpected loaded sessions: %+v", loaded)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPostgresSessionStoreSaveRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hr_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresSessionStore(db)
	if err != nil {
		t.Fatalf("NewPostgresSessionStore() error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM hr_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO hr_sessions").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = store.Save(map[string]Session{"t": {ID: "s", Token: "t", Role: RoleHR}})
	if err == nil {
		t.Fatalf("expected Save() error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
