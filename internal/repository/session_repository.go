package repository

import (
	"context"
	"database/sql"
)

// SessionRepo persists session token hashes (single 'token_hash' column).
// The raw token lives only in the client cookie; a row here makes the token
// revocable, which is what gives logout its "session destroyed" semantics
// on top of an otherwise stateless signed token.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// CreateTx inserts a session row inside the registration transaction, so a
// failed registration leaves no session behind.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64, tokenHash string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash) VALUES (?,?)",
		userID, tokenHash)
	return err
}

// Create inserts a session row outside any transaction (login path).
func (r *SessionRepo) Create(ctx context.Context, userID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash) VALUES (?,?)",
		userID, tokenHash)
	return err
}

// Validate returns the owning userID if a non-revoked session exists for
// the hash. Sessions have no expiry; revocation is the only terminal state.
func (r *SessionRepo) Validate(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, revoked_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// Revoke marks a session as destroyed.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes every active session a user holds.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
