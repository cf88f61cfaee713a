package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultIssuer = "leadcrm"

// TokenIssuer signs and verifies access tokens for accounts.
// Tokens carry only the account ID; organization membership is resolved per request.
type TokenIssuer struct {
	signingKey *ecdsa.PrivateKey
	issuer     string
	ttl        time.Duration
}

// NewTokenIssuer creates an issuer from a PEM-encoded ECDSA P-256 private key.
func NewTokenIssuer(signingKeyPEM []byte, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	signingKey, err := jwt.ParseECPrivateKeyFromPEM(signingKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	return newTokenIssuer(signingKey, issuer, ttl)
}

// NewEphemeralTokenIssuer creates an issuer with a freshly generated key. Tokens do not
// survive a restart.
func NewEphemeralTokenIssuer(issuer string, ttl time.Duration) (*TokenIssuer, error) {
	signingKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return newTokenIssuer(signingKey, issuer, ttl)
}

func newTokenIssuer(signingKey *ecdsa.PrivateKey, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if ttl <= 0 {
		return nil, errors.New("token TTL must be greater than 0")
	}
	return &TokenIssuer{signingKey: signingKey, issuer: issuer, ttl: ttl}, nil
}

// Issue creates a signed token for the account.
func (t *TokenIssuer) Issue(accountID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)

	claims := &jwt.RegisteredClaims{
		Subject:   accountID.String(),
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the token signature, issuer and expiry and returns the account ID.
func (t *TokenIssuer) Verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodES256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &t.signingKey.PublicKey, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	if !parsed.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject UUID: %w", err)
	}

	return accountID, nil
}
