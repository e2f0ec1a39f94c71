package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for session token revocation lookups
	"encoding/hex"  // hex encoding for digests
	"errors"        // sentinel error for rejected tokens
	"time"          // issued-at claim

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken is the signed, tamper-evident credential handed to the client
// in a cookie after registration or login.  The Raw field contains the
// serialized JWT.  Only a SHA-256 hash of the raw string is stored server
// side, in the sessions table, so a stolen database row cannot be replayed
// as a live session.  Session tokens carry no expiry claim: a session lives
// until the user logs out and the stored hash is marked revoked.
type SessionToken struct {
	Raw  string // serialized JWT returned to the client
	Hash string // SHA-256 hex digest persisted in the sessions table
}

// SessionClaims is the identity resolved from a session token.  Resolution
// is a pure function of the token string and the signing secret; no request
// state is consulted.
type SessionClaims struct {
	UserID    uint64 // subject of the token (users.id)
	Role      string // reader | creator | journalist
	Moderator bool   // moderator flag captured at issue time
}

// ErrInvalidSessionToken is returned when a token is malformed, carries an
// unexpected signing method, or fails signature verification.
var ErrInvalidSessionToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT identifying a user session.
// The claims are: subject (sub), role, moderator flag (mod) and issued at
// (iat).  There is deliberately no exp claim; logout is the only way a
// session ends.
func NewSessionToken(secret string, userID uint64, role string, moderator bool) (SessionToken, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"mod":  moderator,
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Raw: signed, Hash: HashSessionRaw(signed)}, nil
}

// ParseSessionToken verifies the signature of a raw session token and
// extracts its claims.  Tokens signed with anything other than HMAC are
// rejected so an attacker cannot downgrade to "none" or swap algorithms.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidSessionToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidSessionToken
	}
	out := SessionClaims{}
	switch sub := claims["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	default:
		return SessionClaims{}, ErrInvalidSessionToken
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if mod, ok := claims["mod"].(bool); ok {
		out.Moderator = mod
	}
	return out, nil
}

// HashSessionRaw returns the SHA-256 hash of a raw session token as a hex
// string.  The sessions table stores only this digest.
func HashSessionRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
