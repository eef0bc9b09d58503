package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/photobridge/authserver/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\).*RETURNING\s+created_at`

	created := time.Now()
	expires := created.Add(720 * time.Hour)
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "tok123", "u1", expires). // id is a fresh uuid
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	record, err := repo.Create(context.Background(), "u1", "tok123", expires)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.UserID != "u1" || record.Token != "tok123" || record.Revoked {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.ID == "" {
		t.Fatalf("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+refresh_tokens`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "u1", "tok123", time.Now().Add(time.Hour))
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func tokenRows(expires time.Time, revoked bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "token", "user_id", "expires_at", "revoked", "created_at"}).
		AddRow("id-1", "tok123", "u1", expires, revoked, time.Now())
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*token,\s*user_id,\s*expires_at,\s*revoked,\s*created_at\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	expires := time.Now().Add(10 * time.Minute)
	mock.ExpectQuery(q).
		WithArgs("tok123").
		WillReturnRows(tokenRows(expires, false))

	got, err := repo.Find(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || !got.ExpiresAt.Equal(expires) || got.Revoked {
		t.Fatalf("unexpected row: %+v", got)
	}
	if !got.Active(time.Now()) {
		t.Fatalf("expected token to be active")
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*token`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+id,\s*token.*FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*FOR\s+UPDATE`

	mock.ExpectQuery(q).
		WithArgs("tok123").
		WillReturnRows(tokenRows(time.Now().Add(time.Hour), false))

	if _, err := repo.FindForUpdate(context.Background(), "tok123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+revoked\s*=\s*TRUE\s+WHERE\s+token\s*=\s*\$1\s*$`

	// Second revoke of the same token still succeeds with zero rows touched.
	mock.ExpectExec(q).WithArgs("tok123").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tok123").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Revoke(context.Background(), "tok123"); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := repo.Revoke(context.Background(), "tok123"); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokeAllForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+revoked\s*=\s*TRUE\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+revoked\s*=\s*FALSE\s*$`

	mock.ExpectExec(q).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.RevokeAllForUser(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCountActive_WithAndWithoutExclusion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+COUNT\(\*\)\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+revoked\s*=\s*FALSE\s+AND\s+expires_at\s*>\s*\$2\s+AND\s+token\s*<>\s*\$3`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("u1", now, "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(q).
		WithArgs("u1", now, "tok-being-rotated").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountActive(context.Background(), "u1", now, "")
	if err != nil || n != 2 {
		t.Fatalf("count without exclusion: n=%d err=%v", n, err)
	}
	n, err = repo.CountActive(context.Background(), "u1", now, "tok-being-rotated")
	if err != nil || n != 1 {
		t.Fatalf("count with exclusion: n=%d err=%v", n, err)
	}
}
