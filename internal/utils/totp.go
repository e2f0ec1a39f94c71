package utils

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpOpts pins the code parameters: 30 second step, 6 digits, SHA-1, and
// one step of allowed clock drift in either direction.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewOTPSecret generates a fresh one-time-code secret for a new account.
// The secret is base32 encoded and is generated exactly once, at
// registration; it never changes afterwards.  The issuer and account name
// are embedded so the secret can be provisioned into an authenticator app.
func NewOTPSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// VerifyOneTimeCode reports whether code is a valid TOTP for secret at the
// current time, accepting the adjacent time steps to tolerate clock drift.
func VerifyOneTimeCode(secret, code string) bool {
	return VerifyOneTimeCodeAt(secret, code, time.Now().UTC())
}

// VerifyOneTimeCodeAt is VerifyOneTimeCode with an explicit reference time.
func VerifyOneTimeCodeAt(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totpOpts)
	return err == nil && ok
}

// GenerateOneTimeCode derives the 6 digit code for a secret at the given
// time.  It exists so callers (and tests) can produce codes with the exact
// parameters the verifier uses.
func GenerateOneTimeCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totpOpts)
}
