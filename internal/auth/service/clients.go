package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
)

// ClientService manages client registrations for the admin API. The
// registry reads what this writes.
type ClientService struct {
	Store store.Store
}

// CreateClientResult carries the one and only copy of a confidential
// client's secret. It is never retrievable again.
type CreateClientResult struct {
	Client       domain.Client
	ClientSecret string
}

// CreateClient registers a client. Confidential clients get a generated
// secret, stored hashed and returned exactly once.
func (s *ClientService) CreateClient(ctx context.Context, name string, redirectURIs []string, confidential bool) (*CreateClientResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(redirectURIs) == 0 {
		return nil, ErrInvalidRequest
	}
	if err := validateRedirectURIs(redirectURIs); err != nil {
		return nil, err
	}

	clientID, err := cryptox.NewToken(cryptox.Size128)
	if err != nil {
		return nil, err
	}

	var secret, secretHash string
	if confidential {
		secret, err = cryptox.NewToken(cryptox.Size256)
		if err != nil {
			return nil, err
		}
		secretHash, err = cryptox.HashPassword(secret)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:           idx.New().String(),
		ClientID:     clientID,
		Name:         name,
		SecretHash:   secretHash,
		RedirectURIs: dedupeStrings(redirectURIs),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		return nil, err
	}

	return &CreateClientResult{Client: client, ClientSecret: secret}, nil
}

// SeedClient ensures a public client with a fixed client_id exists, for
// declarative provisioning at startup. Returns true when it created one.
func (s *ClientService) SeedClient(ctx context.Context, clientID, name string, redirectURIs []string) (bool, error) {
	clientID = strings.TrimSpace(clientID)
	name = strings.TrimSpace(name)
	if clientID == "" || name == "" || len(redirectURIs) == 0 {
		return false, ErrInvalidRequest
	}
	if err := validateRedirectURIs(redirectURIs); err != nil {
		return false, err
	}

	if _, err := s.Store.Clients().GetClientByClientID(ctx, clientID); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:           idx.New().String(),
		ClientID:     clientID,
		Name:         name,
		RedirectURIs: dedupeStrings(redirectURIs),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		return false, err
	}
	return true, nil
}

// ListClients returns all registrations.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// UpdateRedirectURIs replaces the registered redirect set for a client.
func (s *ClientService) UpdateRedirectURIs(ctx context.Context, id string, uris []string) error {
	if len(uris) == 0 {
		return ErrInvalidRequest
	}
	if err := validateRedirectURIs(uris); err != nil {
		return err
	}
	return s.Store.Clients().UpdateClientRedirectURIs(ctx, id, dedupeStrings(uris))
}

// DeleteClient removes a registration. Codes issued to it die with it.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	return s.Store.Clients().DeleteClient(ctx, id)
}

// validateRedirectURIs requires absolute http(s) URIs without fragments.
// Exact-match comparison later depends on registrations being clean.
func validateRedirectURIs(uris []string) error {
	for _, raw := range uris {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return ErrInvalidRequest
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return ErrInvalidRequest
		}
		if u.Host == "" || u.Fragment != "" {
			return ErrInvalidRequest
		}
		if strings.TrimSpace(raw) != raw || raw == "" {
			return ErrInvalidRequest
		}
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
