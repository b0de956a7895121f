package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func operatorRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewUserRepository(db), mock
}

func TestUserRepository_CreateOperator(t *testing.T) {
	repo, mock := operatorRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash)")).
		WithArgs("night-shift", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := repo.Create(context.Background(), "night-shift", "$2a$10$hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id != 3 {
		t.Fatalf("id = %d, want 3", id)
	}
}

func TestUserRepository_CreateErrorsNameTheOperator(t *testing.T) {
	cases := []struct {
		name    string
		result  func(e *sqlmock.ExpectedExec)
		wantMsg string
	}{
		{
			name: "duplicate operator",
			result: func(e *sqlmock.ExpectedExec) {
				e.WillReturnError(errors.New("UNIQUE constraint failed: users.username"))
			},
			wantMsg: `insert user "day-shift"`,
		},
		{
			name: "no insert id",
			result: func(e *sqlmock.ExpectedExec) {
				e.WillReturnResult(sqlmock.NewErrorResult(errors.New("driver has no last id")))
			},
			wantMsg: `get last insert id for user "day-shift"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := operatorRepo(t)
			tc.result(mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).WithArgs("day-shift", "h"))

			id, err := repo.Create(context.Background(), "day-shift", "h")
			if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("err = %v, want it to mention %q", err, tc.wantMsg)
			}
			if id != 0 {
				t.Fatalf("id = %d on error", id)
			}
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo, mock := operatorRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("night-shift").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).AddRow(3, "night-shift", "$2a$10$hash"))

	u, err := repo.GetByUsername(context.Background(), "night-shift")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if u == nil || u.ID != 3 || u.Username != "night-shift" || u.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected operator %+v", u)
	}
}

func TestUserRepository_GetByUsernameMissingIsNil(t *testing.T) {
	repo, mock := operatorRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("visitor").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByUsername(context.Background(), "visitor")
	if err != nil || u != nil {
		t.Fatalf("GetByUsername() = %+v, %v; want nil, nil", u, err)
	}
}

func TestUserRepository_GetByUsernameQueryError(t *testing.T) {
	repo, mock := operatorRepo(t)
	locked := errors.New("database is locked")
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("night-shift").
		WillReturnError(locked)

	u, err := repo.GetByUsername(context.Background(), "night-shift")
	if !errors.Is(err, locked) {
		t.Fatalf("err = %v, want wrapped %v", err, locked)
	}
	if u != nil {
		t.Fatalf("operator = %+v on error", u)
	}
}
