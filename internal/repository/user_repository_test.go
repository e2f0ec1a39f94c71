package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewUserRepo(db), mock, db
}

func userColumns() []string {
	return []string{"id", "username", "email", "password_hash", "otp_secret", "role", "is_moderator", "created_at"}
}

func TestCreateTx_DuplicateUsername(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.uq_users_username'"))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = repo.CreateTx(context.Background(), tx, &User{Username: "alice", Role: RoleReader})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestCreateTx_DuplicateEmail(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.uq_users_email'"))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = repo.CreateTx(context.Background(), tx, &User{Username: "someone", Email: "a@b.c", Role: RoleReader})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateTx_PopulatesID(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	u := &User{Username: "alice", PasswordHash: "x", OTPSecret: "y", Role: RoleReader}
	id, err := repo.CreateTx(context.Background(), tx, u)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	assert.Equal(t, uint64(11), u.ID)
	require.NoError(t, tx.Commit())
}

func TestGetByUsername_NullEmail(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns()).
		AddRow(3, "alice", nil, "hash", "secret", RoleReader, false, time.Now())
	mock.ExpectQuery("SELECT id,username,email,password_hash,otp_secret,role,is_moderator,created_at FROM users WHERE username=").
		WithArgs("alice").
		WillReturnRows(rows)

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "", u.Email)
	assert.Equal(t, "alice", u.Username)
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id,username,email,password_hash,otp_secret,role,is_moderator,created_at FROM users WHERE username=").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsernameTakenTx(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM users WHERE username=").
		WithArgs("taken").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM users WHERE username=").
		WithArgs("free").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	taken, err := repo.UsernameTakenTx(context.Background(), tx, "taken")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameTakenTx(context.Background(), tx, "free")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acme.com", EmailDomain("alice@acme.com"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
	assert.Equal(t, "", EmailDomain("trailing@"))
	assert.Equal(t, "b@c", EmailDomain("a@b@c"))
}
