package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal access.Principal
}

// Authenticator verifies username/password logins and issues tokens.
type Authenticator struct {
	accounts store.AccountStore
	resolver *PrincipalResolver
	hasher   *PasswordHasher
	issuer   *TokenIssuer
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(stores store.Stores, hasher *PasswordHasher, issuer *TokenIssuer) *Authenticator {
	return &Authenticator{
		accounts: stores.Accounts,
		resolver: NewPrincipalResolver(stores),
		hasher:   hasher,
		issuer:   issuer,
	}
}

// Login checks the credentials and issues a token for a resolvable principal.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	account, err := a.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if !a.hasher.Matches(account.PasswordHash, password) {
		log.Debug().Str("username", username).Msg("Password mismatch")
		return nil, ErrInvalidCredentials
	}

	principal, err := a.resolver.ResolveAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := a.issuer.Issue(account.AccountID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account_id", account.AccountID.String()).
		Str("kind", string(principal.Kind())).
		Msg("Account logged in")

	return &Session{Token: token, ExpiresAt: expiresAt, Principal: principal}, nil
}
