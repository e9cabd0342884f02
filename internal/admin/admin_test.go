package admin

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todoitems"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	origOpen := openDB
	t.Cleanup(func() { openDB = origOpen })

	var gotDSN string
	openDB = func(dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, nil
	}
	t.Cleanup(func() {
		if gotDSN != "" && gotDSN != "postgres://test" {
			t.Errorf("unexpected dsn %q", gotDSN)
		}
	})
	return mock
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(logging.NopLogger{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dsn", "postgres://test"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type recordingManager struct {
	repomanager.RepositoryManager
	migrated bool
	err      error
}

func (m *recordingManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.err
}

func (m *recordingManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *recordingManager) ToDoItems(db dbx.DBTX) todoitems.Repository {
	return todoitems.NewPostgresRepository(db)
}

func TestMigrate(t *testing.T) {
	useMockDB(t)
	rm := &recordingManager{}
	orig := newRepoManager
	newRepoManager = func() repomanager.RepositoryManager { return rm }
	t.Cleanup(func() { newRepoManager = orig })

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.True(t, rm.migrated)
	assert.Contains(t, out, "migrations applied")

	rm.err = errors.New("dirty schema")
	_, err = run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty schema")
}

func TestUsersList(t *testing.T) {
	mock := useMockDB(t)
	created := time.Date(2024, 10, 7, 3, 41, 21, 0, time.UTC)
	mock.ExpectQuery(`^SELECT id, user_id, email, first_name, last_name, password_hash, created_at FROM users ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "first_name", "last_name", "password_hash", "created_at"}).
			AddRow(int64(1), "u-1", "ann@example.com", "Ann", "Lee", "hash", created))

	out, err := run(t, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USER ID")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, "Ann Lee")
	assert.Contains(t, out, "2024-10-07T03:41:21Z")
	assert.NotContains(t, out, "hash")
}

func TestUsersList_Failure(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery(`FROM users`).WillReturnError(errors.New("boom"))

	_, err := run(t, "users", "list")
	require.Error(t, err)
	assert.Equal(t, "An error occurred while retrieving users.", err.Error())
}

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	origFd := stdinFd
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	stdinFd = func() int { return 0 }
	t.Cleanup(func() {
		readPassword = orig
		stdinFd = origFd
	})
}

func TestUsersRegister(t *testing.T) {
	mock := useMockDB(t)
	stubPassword(t, "s3cret", nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE email = \$1`).WithArgs("ann@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ann@example.com", "Ann", "Lee", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectCommit()

	out, err := run(t, "users", "register", "--first", "Ann", "--last", "Lee", "--email", "ann@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Enter password: ")
	assert.Contains(t, out, "registered ")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRegister_ValidationCode(t *testing.T) {
	useMockDB(t)
	stubPassword(t, "s3cret", nil)

	_, err := run(t, "users", "register", "--first", "Ann", "--last", "Lee", "--email", "not-an-email")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "code 1002"), err.Error())
}

func TestUsersRegister_PasswordReadError(t *testing.T) {
	stubPassword(t, "", errors.New("not a terminal"))

	_, err := run(t, "users", "register", "--first", "Ann", "--last", "Lee", "--email", "ann@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a terminal")
}
