package service

import (
	"testing"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestValidateClient(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	client, _ := createTestClient(t, st,
		[]string{"https://app.example.com/callback", "https://app.example.com/alt"}, false)

	svc := &RegistryService{Store: st}

	t.Run("exact match passes", func(t *testing.T) {
		got, err := svc.ValidateClient(t.Context(), client.ClientID, "https://app.example.com/callback")
		require.NoError(t, err)
		require.Equal(t, client.ID, got.ID)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := svc.ValidateClient(t.Context(), "nope", "https://app.example.com/callback")
		require.ErrorIs(t, err, ErrInvalidClient)
	})

	t.Run("missing parameters", func(t *testing.T) {
		_, err := svc.ValidateClient(t.Context(), "", "https://app.example.com/callback")
		require.ErrorIs(t, err, ErrInvalidRequest)

		_, err = svc.ValidateClient(t.Context(), client.ClientID, "")
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("no normalization on comparison", func(t *testing.T) {
		for _, uri := range []string{
			"https://app.example.com/callback/",
			"https://APP.example.com/callback",
			"http://app.example.com/callback",
			"https://app.example.com/callback?extra=1",
			"https://app.example.com:443/callback",
		} {
			_, err := svc.ValidateClient(t.Context(), client.ClientID, uri)
			require.ErrorIs(t, err, ErrRedirectURIMismatch, "uri %q must not match", uri)
		}
	})

	t.Run("inactive client is invalid", func(t *testing.T) {
		require.NoError(t, st.Clients().SetClientActive(t.Context(), client.ID, false))
		_, err := svc.ValidateClient(t.Context(), client.ClientID, "https://app.example.com/callback")
		require.ErrorIs(t, err, ErrInvalidClient)
		require.NoError(t, st.Clients().SetClientActive(t.Context(), client.ID, true))
	})
}

func TestHasTrustedOriginMatch(t *testing.T) {
	t.Parallel()

	svc := &RegistryService{}
	client := domain.Client{
		RedirectURIs: []string{"https://app.example.com/callback", "http://localhost:3000/cb"},
	}

	t.Run("same origin different path matches", func(t *testing.T) {
		require.True(t, svc.HasTrustedOriginMatch(client, "https://app.example.com/logged-out"))
		require.True(t, svc.HasTrustedOriginMatch(client, "http://localhost:3000/goodbye"))
	})

	t.Run("host is compared case-insensitively", func(t *testing.T) {
		require.True(t, svc.HasTrustedOriginMatch(client, "https://APP.EXAMPLE.COM/x"))
	})

	t.Run("different scheme host or port does not match", func(t *testing.T) {
		require.False(t, svc.HasTrustedOriginMatch(client, "http://app.example.com/logged-out"))
		require.False(t, svc.HasTrustedOriginMatch(client, "https://evil.example.com/logged-out"))
		require.False(t, svc.HasTrustedOriginMatch(client, "http://localhost:4000/cb"))
	})

	t.Run("relative or malformed uris never match", func(t *testing.T) {
		require.False(t, svc.HasTrustedOriginMatch(client, "/local/path"))
		require.False(t, svc.HasTrustedOriginMatch(client, "://bad"))
		require.False(t, svc.HasTrustedOriginMatch(client, ""))
	})
}
