package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/authcore-io/authcore/session"
)

// ValidateSession checks both lifetime caps and records activity. Expired and
// missing sessions are indistinguishable: both report [ErrNotFound].
func (e *Engine) ValidateSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, mapSessionErr(err)
	}

	if err := e.sessions.Touch(ctx, sessionID, sess.UserID); err != nil {
		return nil, mapSessionErr(err)
	}

	now := time.Now().UnixMilli()
	return &SessionInfo{
		ID:           sess.ID,
		UserID:       sess.UserID,
		CreatedAt:    time.UnixMilli(sess.CreatedAt),
		LastActiveAt: time.UnixMilli(now),
	}, nil
}

// ValidateAccessToken parses a JWT access token and confirms its session is
// still alive. Token and session failures both report [ErrInvalidCredentials].
func (e *Engine) ValidateAccessToken(ctx context.Context, token string) (*SessionInfo, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.jwtManager == nil {
		return nil, ErrVerificationNotConfigured
	}

	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	info, err := e.ValidateSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if info.UserID != claims.UID {
		return nil, ErrInvalidCredentials
	}
	return info, nil
}

// Sessions enumerates the user's currently valid sessions.
func (e *Engine) Sessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, ErrInvalidInput
	}

	sessions, err := e.sessions.List(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, SessionInfo{
			ID:           s.ID,
			UserID:       s.UserID,
			CreatedAt:    time.UnixMilli(s.CreatedAt),
			LastActiveAt: time.UnixMilli(s.LastActiveAt),
		})
	}
	return infos, nil
}

// SignOut destroys one session. Signing out a session that is already gone
// is a no-op.
func (e *Engine) SignOut(ctx context.Context, sessionID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if sessionID == "" {
		return ErrInvalidInput
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
			return nil
		}
		return wrapStoreErr(err)
	}

	existed, err := e.sessions.Delete(ctx, sessionID, sess.UserID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if existed {
		e.metricInc(MetricSignOut)
		e.emitAudit(ctx, auditSignOut, true, sess.UserID, "", "", nil)
	}
	return nil
}

// SignOutAll removes every session of the user except the given IDs and
// returns how many were removed. Used for global sign-out and after
// credential changes.
func (e *Engine) SignOutAll(ctx context.Context, userID string, except ...string) (int, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	if userID == "" {
		return 0, ErrInvalidInput
	}

	removed, err := e.sessions.Invalidate(ctx, userID, except...)
	if err != nil {
		return 0, wrapStoreErr(err)
	}

	for i := 0; i < removed; i++ {
		e.metricInc(MetricSessionInvalidated)
	}
	if removed > 0 {
		e.emitAudit(ctx, auditSessionsInvalidated, true, userID, "", "", nil)
	}
	return removed, nil
}

func mapSessionErr(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return ErrNotFound
	default:
		return wrapStoreErr(err)
	}
}
