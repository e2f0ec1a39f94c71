package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User mirrors the 'users' table. Email is optional; when absent the column
// is NULL so the unique constraint only binds rows that actually carry an
// address. PasswordHash holds a salted bcrypt digest, never the plaintext.
// OTPSecret is the base32 one-time-code secret generated at registration and
// immutable afterwards. Role is fixed at creation.
type User struct {
	ID           uint64
	Username     string
	Email        string // empty means no email on record
	PasswordHash string
	OTPSecret    string
	Role         string
	IsModerator  bool
	CreatedAt    time.Time
}

// Roles a registration may request.
const (
	RoleReader     = "reader"
	RoleCreator    = "creator"
	RoleJournalist = "journalist"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrUserNotFound   = errors.New("user not found")
)

// CreateTx inserts a user inside the registration transaction and returns
// its ID. The username and email unique constraints are the last line of
// defence against a concurrent registration that passed the same pre-checks;
// their violations surface as ErrUsernameExists / ErrEmailExists.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *User) (uint64, error) {
	var email any
	if u.Email != "" {
		email = u.Email
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, otp_secret, role, is_moderator) VALUES (?,?,?,?,?,?)",
		u.Username, email, u.PasswordHash, u.OTPSecret, u.Role, u.IsModerator)
	if err != nil {
		if isDuplicate(err, "uq_users_email") {
			return 0, ErrEmailExists
		}
		if isDuplicate(err, "") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// UsernameTakenTx reports whether a user already owns the username. Matching
// is exact and case-sensitive (binary collation on the column).
func (r *UserRepo) UsernameTakenTx(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE username=? LIMIT 1", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmailTakenTx reports whether a user already owns the email.
func (r *UserRepo) EmailTakenTx(ctx context.Context, tx *sql.Tx, email string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.get(ctx, "SELECT id,username,email,password_hash,otp_secret,role,is_moderator,created_at FROM users WHERE username=? LIMIT 1", username)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	return r.get(ctx, "SELECT id,username,email,password_hash,otp_secret,role,is_moderator,created_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (User, error) {
	var (
		u     User
		email sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.OTPSecret, &u.Role, &u.IsModerator, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	if email.Valid {
		u.Email = email.String
	}
	return u, nil
}

// ListCreators returns all creator accounts ordered by username, for the
// public index page.
func (r *UserRepo) ListCreators(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,username,role,is_moderator,created_at FROM users WHERE role=? ORDER BY username", RoleCreator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.IsModerator, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// EmailDomain extracts the part after the first '@' of an address. The
// creator gate requires the chosen username to equal this value exactly.
func EmailDomain(email string) string {
	at := strings.Index(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
