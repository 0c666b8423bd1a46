package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
)

// RegistryService answers "is this client allowed to use this redirect URI".
// It is strictly read-only; registrations are managed by ClientService.
type RegistryService struct {
	Store store.Store
}

// GetClient looks up an active client by its public client_id.
func (s *RegistryService) GetClient(ctx context.Context, clientID string) (domain.Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domain.Client{}, ErrInvalidRequest
	}

	client, err := s.Store.Clients().GetClientByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}
	if !client.Active {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

// ValidateClient resolves the client and checks redirectURI against its
// registered set with exact string comparison. No normalization: trailing
// slashes, case, query strings and fragments all have to match what was
// registered. Anything looser is an open-redirect waiting to happen.
func (s *RegistryService) ValidateClient(ctx context.Context, clientID, redirectURI string) (domain.Client, error) {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return domain.Client{}, err
	}

	redirectURI = strings.TrimSpace(redirectURI)
	if redirectURI == "" {
		return domain.Client{}, ErrInvalidRequest
	}

	for _, registered := range client.RedirectURIs {
		if registered == redirectURI {
			return client, nil
		}
	}
	return domain.Client{}, ErrRedirectURIMismatch
}

// HasTrustedOriginMatch reports whether uri shares an origin (scheme, host,
// port) with any registered redirect URI. Logout is the only caller: a
// post-logout landing page on the client's own origin is harmless even if
// the exact path was never registered. Authorization flows must never use
// this relaxation.
func (s *RegistryService) HasTrustedOriginMatch(client domain.Client, uri string) bool {
	target, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return false
	}

	for _, registered := range client.RedirectURIs {
		reg, err := url.Parse(registered)
		if err != nil {
			continue
		}
		if strings.EqualFold(reg.Scheme, target.Scheme) && strings.EqualFold(reg.Host, target.Host) {
			return true
		}
	}
	return false
}
