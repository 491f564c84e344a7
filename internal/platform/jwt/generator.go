package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "loan_backend/internal/feature/auth/domain"
)

// AccessTokenTTL is how long an issued access token stays valid.
const AccessTokenTTL = 2 * time.Hour

// Issuer mints and verifies HS256 access tokens whose subject is the user's email.
// It holds no mutable state after construction.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock replaces the time source. Tests use it to pin issuance and verification times.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// WithTTL overrides AccessTokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// NewIssuer creates an Issuer signing with secret.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	i := &Issuer{
		secret: []byte(secret),
		ttl:    AccessTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue creates a signed token with sub=email, iat=now and exp=now+ttl.
// Times are truncated to whole seconds, the precision of JWT numeric dates.
func (i *Issuer) Issue(email string) (string, error) {
	now := i.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of tokenStr and returns its subject.
// It fails with authdomain.ErrExpiredToken once now >= exp, and with
// authdomain.ErrMalformedToken for anything else that is wrong with the token.
func (i *Issuer) Verify(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", authdomain.ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", authdomain.ErrMalformedToken, err)
	}

	// The library accepts now == exp; the token window is half-open.
	if !i.now().Before(claims.ExpiresAt.Time) {
		return "", authdomain.ErrExpiredToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", authdomain.ErrMalformedToken)
	}

	return claims.Subject, nil
}
