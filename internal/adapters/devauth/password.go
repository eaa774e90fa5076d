package devauth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordMatches compares a seeded password with a candidate.
// Seeds are compared as exact strings unless they are bcrypt hashes ($2a$, $2b$, $2y$),
// which lets deployments keep hashes rather than plaintext in the environment.
// An empty seed never matches.
func PasswordMatches(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
