package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"
)

// CreatorInvite mirrors the 'creator_invites' table. An invite authorizes
// exactly one creator registration for the bound email address; DomainEmail
// is the full address the registrant must use, and the username they pick
// must equal the address's domain part.
type CreatorInvite struct {
	ID          uint64
	DomainEmail string
	Code        string
	IsUsed      bool
	CreatedAt   time.Time
}

// JournalistInvite mirrors the 'journalist_invites' table. The token is the
// whole credential; ContactEmail is informational only and never checked at
// redemption.
type JournalistInvite struct {
	ID           uint64
	Token        string
	ContactEmail string
	IsUsed       bool
	CreatedAt    time.Time
}

// ErrInviteInvalid is returned when an invite does not exist, the presented
// code does not match, or the invite has already been consumed. Callers get
// the same error in all three cases so redemption attempts cannot probe
// which part was wrong.
var ErrInviteInvalid = errors.New("invalid or used invite")

type InviteRepo struct{ DB *sql.DB }

func NewInviteRepo(db *sql.DB) *InviteRepo { return &InviteRepo{DB: db} }

// IssueCreatorInvite records a new single-use creator invite bound to an
// email address. Only one invite may exist per address; a second issue
// attempt maps the unique-key violation to ErrConflict.
func (r *InviteRepo) IssueCreatorInvite(ctx context.Context, domainEmail, code string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO creator_invites (domain_email, code) VALUES (?,?)",
		domainEmail, code)
	if err != nil {
		if isDuplicate(err, "uq_creator_invites_domain_email") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// IssueJournalistInvite creates a journalist invite with a freshly generated
// URL-safe token and returns the token. contactEmail may be empty.
func (r *InviteRepo) IssueJournalistInvite(ctx context.Context, contactEmail string) (string, error) {
	token, err := newInviteToken()
	if err != nil {
		return "", err
	}
	var email any
	if contactEmail != "" {
		email = contactEmail
	}
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO journalist_invites (token, contact_email) VALUES (?,?)",
		token, email); err != nil {
		return "", err
	}
	return token, nil
}

// RedeemCreatorInviteTx consumes the invite matching the exact email and
// code pair inside the enclosing registration transaction. The conditional
// UPDATE flips is_used only when it is still false, so when two concurrent
// registrations race on the same invite the row lock serializes them and
// exactly one observes an affected row; the other gets ErrInviteInvalid.
func (r *InviteRepo) RedeemCreatorInviteTx(ctx context.Context, tx *sql.Tx, email, code string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE creator_invites SET is_used=1 WHERE domain_email=? AND code=? AND is_used=0",
		email, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrInviteInvalid
	}
	return nil
}

// RedeemJournalistInviteTx consumes the invite carrying the token, under the
// same single-winner semantics as RedeemCreatorInviteTx.
func (r *InviteRepo) RedeemJournalistInviteTx(ctx context.Context, tx *sql.Tx, token string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE journalist_invites SET is_used=1 WHERE token=? AND is_used=0",
		token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrInviteInvalid
	}
	return nil
}

// newInviteToken returns a URL-safe token built from 32 bytes of
// cryptographically secure randomness.
func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
