package service

import (
	"context"
	"errors"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"
)

// Session revocation reasons recorded against the session row.
const (
	RevokeReasonLogout = "logout"
)

// SessionService manages browser sessions: a server-side row holding the
// authoritative revocation state, plus a signed cookie token referencing it.
type SessionService struct {
	Store      store.Store
	Codec      *jwtx.SessionCodec
	SessionTTL time.Duration
}

// Create establishes a new session for the user and returns the signed
// cookie token alongside the stored row.
func (s *SessionService) Create(ctx context.Context, userID, userAgent, ipAddress string) (string, domain.Session, error) {
	now := time.Now().UTC()
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		Active:    true,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return "", domain.Session{}, err
	}

	token, err := s.Codec.Sign(userID, session.ID, now)
	if err != nil {
		return "", domain.Session{}, err
	}
	return token, session, nil
}

// Resolve authenticates a session cookie token. The signature proves the
// token's integrity; the server-side row decides whether the session is
// still live. Every failure collapses into ErrLoginRequired so callers
// cannot distinguish a forged token from a revoked session.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		return domain.Session{}, ErrLoginRequired
	}

	session, err := s.Store.Sessions().GetSessionByID(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrLoginRequired
		}
		return domain.Session{}, err
	}

	if !session.Active || session.UserID != claims.Subject || time.Now().UTC().After(session.ExpiresAt) {
		return domain.Session{}, ErrLoginRequired
	}
	return session, nil
}

// Revoke flips the session inactive. Revoking twice, or revoking a session
// that never existed, is still success.
func (s *SessionService) Revoke(ctx context.Context, sessionID, reason string) error {
	if sessionID == "" {
		return nil
	}
	return s.Store.Sessions().RevokeSession(ctx, sessionID, reason, time.Now().UTC())
}

// RevokeFromToken best-effort revokes the session a cookie or bearer token
// points at. Parse failures are swallowed: logout must succeed whether or
// not the caller presented anything usable.
func (s *SessionService) RevokeFromToken(ctx context.Context, token, reason string) {
	if token == "" {
		return
	}
	claims, err := s.Codec.Verify(token)
	if err != nil {
		return
	}
	if err := s.Revoke(ctx, claims.SID, reason); err != nil {
		slogx.FromContext(ctx).Warn("session revocation failed", "error", err)
	}
}
