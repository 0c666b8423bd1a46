package service

import (
	"context"
	"strings"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
)

// DefaultCodeTTL is how long an authorization code stays redeemable. Codes
// are a short-lived hand-off between the front channel and the back
// channel, so one minute is plenty.
const DefaultCodeTTL = 60 * time.Second

// AuthorizeService issues single-use authorization codes. Client and
// redirect URI validation happens before this service is called; it assumes
// the request has already cleared the registry.
type AuthorizeService struct {
	Store   store.Store
	CodeTTL time.Duration
}

// AuthorizeRequest carries the validated inputs for code issuance. Client
// comes straight from RegistryService.ValidateClient; UserID and SessionID
// from the resolved browser session.
type AuthorizeRequest struct {
	Client      domain.Client
	UserID      string
	SessionID   string
	RedirectURI string
	Scope       []string
	State       string
	Nonce       string

	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeCodeResponse carries everything the handler needs to build the
// success redirect.
type AuthorizeCodeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

// IssueAuthorizationCode mints a fresh code bound to the client, redirect
// URI and session, and persists it before returning. The caller only sees
// the opaque code; the store only ever sees its fingerprint.
//
// Granted scopes are the intersection of the requested scopes and the
// user's scopes; an empty request grants everything the user has. A
// request that names only scopes the user lacks is rejected with
// ErrInvalidScope rather than silently granting nothing.
func (s *AuthorizeService) IssueAuthorizationCode(ctx context.Context, req AuthorizeRequest) (*AuthorizeCodeResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.SessionID) == "" {
		return nil, ErrLoginRequired
	}

	challenge, method, err := normalizePKCE(req.CodeChallenge, req.CodeChallengeMethod)
	if err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	scopes := user.Scopes
	if len(req.Scope) > 0 {
		scopes = intersectScopes(req.Scope, user.Scopes)
		if len(scopes) == 0 {
			return nil, ErrInvalidScope
		}
	}

	code, err := cryptox.NewToken(cryptox.Size256)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	record := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		UserID:              user.ID,
		ClientID:            req.Client.ID,
		CodeHash:            cryptox.Fingerprint(code),
		RedirectURI:         req.RedirectURI,
		Scopes:              scopes,
		State:               req.State,
		Nonce:               req.Nonce,
		SessionID:           req.SessionID,
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
	}

	// The write must land before the redirect leaves: a code the user is
	// holding but the store has never heard of is unredeemable.
	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, record); err != nil {
		return nil, err
	}

	return &AuthorizeCodeResponse{
		Code:        code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}

func intersectScopes(requested, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{}, len(requested))
	for _, s := range requested {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
