package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/idx"
)

// auditWriteTimeout bounds how long a background audit write may take.
const auditWriteTimeout = 5 * time.Second

// AuditService appends audit events without ever blocking or failing the
// request that produced them.
type AuditService struct {
	Store  store.Store
	Logger *slog.Logger
}

// Record writes the event on a background goroutine, detached from the
// request context so an aborted request still leaves its trace. A write
// failure is logged and dropped; auditing is observability, not control
// flow.
func (s *AuditService) Record(ev domain.AuditEvent) {
	if ev.ID == "" {
		ev.ID = idx.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := s.Store.AuditEvents().CreateAuditEvent(ctx, ev); err != nil {
			s.Logger.Error("audit write failed",
				"event", ev.Event,
				"action", ev.Action,
				"error", err)
		}
	}()
}
