// Package token signs and verifies compact, expiring, tamper-evident tokens whose
// payload is a typed claim struct. A Codec is parameterized by the claim shape and a
// symmetric key, so the same mechanics serve every session flavour.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest accepted signing key, in bytes.
const MinSecretLength = 32

var (
	errShortSecret = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
	errInvalidTTL  = errors.New("ttl must be greater than zero")
)

// Registered carries the standard time and issuer claims. Every claim type used with a
// Codec must embed it.
type Registered struct {
	jwt.RegisteredClaims
}

func (r *Registered) setRegistered(rc jwt.RegisteredClaims) { r.RegisteredClaims = rc }

// claimsPtr is satisfied by *T when T embeds Registered and defines Validate on its
// pointer. Validate must reject any payload missing a required field; jwt invokes it
// after the signature and time checks succeed.
type claimsPtr[T any] interface {
	*T
	jwt.Claims
	Validate() error
	setRegistered(jwt.RegisteredClaims)
}

// Option configures a Codec.
type Option func(*settings)

type settings struct {
	issuer string
	now    func() time.Time
}

// WithIssuer stamps and requires the iss claim, binding tokens to one codec.
func WithIssuer(issuer string) Option {
	return func(s *settings) { s.issuer = issuer }
}

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Codec signs and verifies tokens carrying claims of type T with HS256.
// It holds no mutable state and is safe for concurrent use.
type Codec[T any, P claimsPtr[T]] struct {
	key    []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// New constructs a Codec for claim type T.
func New[T any, P claimsPtr[T]](secret []byte, opts ...Option) (*Codec[T, P], error) {
	if len(secret) < MinSecretLength {
		return nil, errShortSecret
	}
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	return &Codec[T, P]{
		key:    append([]byte(nil), secret...),
		issuer: s.issuer,
		now:    s.now,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Sign returns a token for claims that expires ttl after the current time.
// Issued-at and expiry are absolute epoch seconds computed at call time.
func (c *Codec[T, P]) Sign(claims T, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errInvalidTTL
	}
	p := P(&claims)
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("invalid claims: %w", err)
	}

	now := c.now()
	p.setRegistered(jwt.RegisteredClaims{
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, p).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims carried by raw. Malformed, forged, expired and
// wrongly-shaped tokens all yield ok == false.
func (c *Codec[T, P]) Verify(raw string) (T, bool) {
	claims, err := c.parse(raw)
	if err != nil {
		var zero T
		return zero, false
	}
	return claims, true
}

func (c *Codec[T, P]) parse(raw string) (T, error) {
	var claims T
	if raw == "" {
		return claims, jwt.ErrTokenMalformed
	}
	p := P(&claims)
	tok, err := c.parser.ParseWithClaims(raw, p, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return claims, err
	}
	if !tok.Valid {
		return claims, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
