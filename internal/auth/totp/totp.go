// Package totp verifies time-based one-time passwords (RFC 6238) against a shared
// base32 secret using a 30 second step, 6 digits, SHA1 and one step of skew.
package totp

import (
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Period is the length of one time step.
const Period = 30 * time.Second

var validateOpts = totp.ValidateOpts{
	Period:    uint(Period / time.Second),
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Verify reports whether candidate is valid for secret at the current time.
func Verify(secret, candidate string) bool {
	return VerifyAt(secret, candidate, time.Now())
}

// VerifyAt reports whether candidate is valid for secret at t, accepting codes for the
// step before and after t. Whitespace in either argument is ignored. Malformed input
// fails verification instead of erroring.
func VerifyAt(secret, candidate string, t time.Time) bool {
	secret = stripSpace(secret)
	candidate = stripSpace(candidate)
	if secret == "" || len(candidate) != validateOpts.Digits.Length() {
		return false
	}
	ok, err := totp.ValidateCustom(candidate, secret, t.UTC(), validateOpts)
	return err == nil && ok
}

// Code returns the code for secret at t. It is used by provisioning tooling and tests.
func Code(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(stripSpace(secret), t.UTC(), validateOpts)
}

// Verifier adapts VerifyAt to an injectable clock.
type Verifier struct {
	Now func() time.Time
}

// Verify checks candidate against secret using v.Now, or the wall clock when unset.
func (v Verifier) Verify(secret, candidate string) bool {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return VerifyAt(secret, candidate, now())
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
