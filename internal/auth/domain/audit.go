package domain

import "time"

// Audit actions.
const (
	AuditActionAccess = "ACCESS"
	AuditActionFailed = "FAILED"
	AuditActionLogout = "LOGOUT"
	AuditActionLogin  = "LOGIN"
)

// Audit event names.
const (
	AuditEventAuthorize = "OAuth:Authorize"
	AuditEventToken     = "OAuth:Token"
	AuditEventLogout    = "OAuth:Logout"
	AuditEventLogin     = "Auth:Login"
)

// AuditEvent records who did what from where. Recording is fire-and-forget
// relative to the request that caused it.
type AuditEvent struct {
	ID        string
	Event     string
	Action    string
	ActorID   string
	ClientID  string
	IPAddress string
	UserAgent string
	Detail    string
	CreatedAt time.Time
}
