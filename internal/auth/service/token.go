package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"
)

// TokenService redeems authorization codes for access tokens.
type TokenService struct {
	Store     store.Store
	Signer    jwtx.Signer
	Issuer    string
	AccessTTL time.Duration
}

// TokenResult is the outcome of a successful exchange, ready to serialize
// as an RFC 6749 token response.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	Scope       []string
}

// ExchangeAuthorizationCode implements the authorization_code grant.
//
// The redemption checks run in a fixed order inside one transaction:
// lookup, expiry, prior consumption, client binding, redirect binding,
// PKCE, then the atomic consume. The consume is a conditional update, so
// of two concurrent exchanges for the same code exactly one wins; the
// loser surfaces as ErrCodeAlreadyUsed. Every one of these failures wraps
// ErrInvalidGrant; only storage faults escape as plain errors.
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (*TokenResult, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByClientID(ctx, strings.TrimSpace(clientID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}
	if !client.Active {
		return nil, ErrInvalidClient
	}

	// Confidential clients must authenticate
	if client.Confidential() {
		if clientSecret == "" || cryptox.VerifyPassword(clientSecret, client.SecretHash) != nil {
			l.Info("token exchange client authentication failed", slog.String("client_id", clientID))
			return nil, ErrInvalidClient
		}
	}

	code = strings.TrimSpace(code)
	redirectURI = strings.TrimSpace(redirectURI)
	codeVerifier = strings.TrimSpace(codeVerifier)
	if code == "" || redirectURI == "" {
		return nil, ErrInvalidRequest
	}

	codeHash := cryptox.Fingerprint(code)

	var authCode domain.AuthorizationCode

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		authCode, err = tx.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, codeHash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCode
			}
			return err
		}

		if now.After(authCode.ExpiresAt) {
			return ErrCodeExpired
		}
		if authCode.ConsumedAt != nil {
			return ErrCodeAlreadyUsed
		}
		if authCode.ClientID != client.ID {
			return ErrClientMismatch
		}
		if authCode.RedirectURI != redirectURI {
			return ErrRedirectBindingBroken
		}
		if !verifyCodeVerifier(authCode.CodeChallenge, authCode.CodeChallengeMethod, codeVerifier) {
			return ErrPKCEVerificationFailed
		}

		// The conditional update is the single-use gate; losing the race
		// looks identical to redeeming a spent code.
		if err := tx.AuthorizationCodes().ConsumeAuthorizationCode(ctx, authCode.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCodeAlreadyUsed
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidGrant) {
			l.Info("token exchange rejected",
				slog.String("client_id", clientID),
				slog.String("reason", err.Error()))
		}
		return nil, err
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(
		authCode.UserID,
		authCode.SessionID,
		authCode.Scopes,
		authCode.Nonce,
		ttl,
		s.Issuer,
		[]string{client.ClientID},
		now,
	)

	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &TokenResult{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		Scope:       authCode.Scopes,
	}, nil
}
