package authcore

import (
	"context"
	"strings"
	"time"

	"github.com/authcore-io/authcore/internal/rate"
	"github.com/authcore-io/authcore/internal/stores"
	"github.com/authcore-io/authcore/jwt"
	"github.com/authcore-io/authcore/session"
)

// Engine is the credential flow orchestrator. It composes the account store,
// session store, verification code store, failure limiter, and the injected
// hasher and sender capabilities into the sign-up, sign-in, reset, and
// verification flows.
//
// Engines are built once through [Builder.Build] and are safe for concurrent
// use afterwards.
type Engine struct {
	config     Config
	accounts   *stores.AccountStore
	sessions   *session.Store
	codes      *stores.VerificationStore
	limiter    *rate.Limiter
	hasher     Hasher
	sender     VerificationSender
	jwtManager *jwt.Manager
	audit      *auditDispatcher
	metrics    *Metrics

	// dummyHash burns a comparable verification on lookups that miss, so
	// response timing does not reveal whether an account exists.
	dummyHash string
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were shed under DropIfFull.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event string, success bool, userID, provider, identifier string, cause error) {
	if e == nil || e.audit == nil {
		return
	}

	ev := AuditEvent{
		Time:       time.Now(),
		Event:      event,
		Success:    success,
		UserID:     userID,
		Provider:   provider,
		Identifier: identifier,
		ClientIP:   clientIPFromContext(ctx),
	}
	if cause != nil {
		ev.Err = cause.Error()
	}

	e.audit.Emit(ctx, ev)
}

func (e *Engine) ready() bool {
	return e != nil && e.accounts != nil && e.sessions != nil &&
		e.codes != nil && e.limiter != nil && e.hasher != nil
}

// normalizeIdentity lowercases and trims identifiers so that rate-limit keys
// and account keys agree on case-insensitive channels like email.
func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func identityKey(provider, identifier string) string {
	return provider + ":" + identifier
}

// mintSession creates a session and, when JWT issuing is enabled, the paired
// access token.
func (e *Engine) mintSession(ctx context.Context, userID string) (*session.Session, string, error) {
	sess, err := e.sessions.Create(ctx, userID)
	if err != nil {
		return nil, "", wrapStoreErr(err)
	}
	e.metricInc(MetricSessionCreated)

	if e.jwtManager == nil {
		return sess, "", nil
	}

	token, err := e.jwtManager.Sign(userID, sess.ID, time.Now())
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

func (e *Engine) verifyDummy(secret string) {
	if e.dummyHash == "" {
		return
	}
	_, _ = e.hasher.Verify(secret, e.dummyHash)
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	return &storeError{cause: err}
}

// storeError flattens backend failures behind ErrStoreUnavailable while
// preserving the cause for logs.
type storeError struct {
	cause error
}

func (e *storeError) Error() string {
	return ErrStoreUnavailable.Error() + ": " + e.cause.Error()
}

func (e *storeError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *storeError) Unwrap() error {
	return e.cause
}
