package authcore

import (
	"context"
	"time"
)

const (
	auditSignUpSuccess         = "signup_success"
	auditSignUpFailure         = "signup_failure"
	auditSignUpDuplicate       = "signup_duplicate"
	auditSignInSuccess         = "signin_success"
	auditSignInFailure         = "signin_failure"
	auditSignInThrottled       = "signin_throttled"
	auditSignInPending         = "signin_pending_verification"
	auditResetRequested        = "reset_requested"
	auditResetCompleted        = "reset_completed"
	auditResetFailure          = "reset_failure"
	auditVerificationRequested = "verification_requested"
	auditVerificationConfirmed = "verification_confirmed"
	auditVerificationFailure   = "verification_failure"
	auditSessionsInvalidated   = "sessions_invalidated"
	auditSignOut               = "signout"
)

// AuditEvent is one security-relevant flow outcome. Identifier and Err are
// included for operator forensics; plaintext secrets and codes never appear.
type AuditEvent struct {
	Time       time.Time
	Event      string
	Success    bool
	UserID     string
	Provider   string
	Identifier string
	ClientIP   string
	Err        string
}

// AuditSink receives audit events from the async dispatcher. Implementations
// must be safe for concurrent use and should not block for long; a saturated
// dispatcher buffer drops or parks events depending on [AuditConfig].
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit implements [AuditSink].
func (NoOpSink) Emit(context.Context, AuditEvent) {}
