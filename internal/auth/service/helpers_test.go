package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/internal/auth/store/drivers/sqlite"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dir := t.TempDir()
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	s, err := sqlite.NewStore(filepath.Join(dir, "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func createTestUser(t *testing.T, st store.Store, username, password string, scopes []string) domain.User {
	t.Helper()

	svc := &UserService{Store: st}
	user, err := svc.CreateUser(context.Background(), username, password, scopes)
	require.NoError(t, err)
	return user
}

func createTestClient(t *testing.T, st store.Store, uris []string, confidential bool) (domain.Client, string) {
	t.Helper()

	svc := &ClientService{Store: st}
	res, err := svc.CreateClient(context.Background(), "Test App", uris, confidential)
	require.NoError(t, err)
	return res.Client, res.ClientSecret
}

func createTestSession(t *testing.T, st store.Store, userID string) domain.Session {
	t.Helper()

	now := time.Now().UTC()
	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		Active:    true,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, st.Sessions().CreateSession(context.Background(), sess))
	return sess
}
