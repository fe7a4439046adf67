package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/authcore-io/authcore/internal/stores"
)

// BeginReset starts a password reset: it looks up the account by identifier
// alone, issues a reset-purpose code (superseding any outstanding one), and
// hands it to the sender. req.SessionID, when set, is recorded on the code so
// the initiating session survives the post-reset invalidation sweep.
//
// Unknown identifiers report [ErrInvalidCredentials]; adapters that prefer an
// always-accepted response flatten it themselves.
func (e *Engine) BeginReset(ctx context.Context, req ResetRequest) (*ResetChallenge, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.sender == nil {
		return nil, ErrVerificationNotConfigured
	}

	provider := normalizeIdentity(req.Provider)
	identifier := normalizeIdentity(req.Identifier)
	if provider == "" || identifier == "" {
		return nil, ErrInvalidInput
	}

	account, _, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			e.emitAudit(ctx, auditResetFailure, false, "", provider, identifier, ErrInvalidCredentials)
			return nil, ErrInvalidCredentials
		}
		return nil, wrapStoreErr(err)
	}

	if err := e.issueAndSend(ctx, account, PurposePasswordReset, req.SessionID, req.MaxAge); err != nil {
		return nil, err
	}

	ttl := e.config.Verification.CodeTTL
	if req.MaxAge > 0 {
		ttl = req.MaxAge
	}

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditResetRequested, true, account.UserID, provider, identifier, nil)

	return &ResetChallenge{ExpiresAt: time.Now().Add(ttl)}, nil
}

// CompleteReset redeems a reset code, installs the new secret, and sweeps the
// user's other sessions. The sweep spares the session that initiated the
// reset: req.CurrentSessionID when supplied, otherwise the session recorded
// at issue time. A fresh session is minted for the terminal result.
//
// New-secret policy violations report [ErrInvalidInput] before any mutation;
// every code redemption failure reports [ErrInvalidCredentials].
func (e *Engine) CompleteReset(ctx context.Context, req CompleteResetRequest) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	provider := normalizeIdentity(req.Provider)
	identifier := normalizeIdentity(req.Identifier)
	if provider == "" || identifier == "" || req.Code == "" {
		return nil, ErrInvalidInput
	}
	if len(req.NewSecret) < e.config.Secret.MinLength {
		return nil, ErrInvalidInput
	}

	account, _, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			return nil, e.failReset(ctx, provider, identifier)
		}
		return nil, wrapStoreErr(err)
	}

	record, err := e.redeemCode(ctx, account.AccountID, PurposePasswordReset, req.Code)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, e.failReset(ctx, provider, identifier)
		}
		return nil, err
	}

	newHash, err := e.hasher.Hash(req.NewSecret)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if err := e.accounts.UpdateSecretHash(ctx, provider, identifier, newHash); err != nil {
		return nil, wrapStoreErr(err)
	}

	except := make([]string, 0, 1)
	if req.CurrentSessionID != "" {
		except = append(except, req.CurrentSessionID)
	} else if record.SessionID != "" {
		except = append(except, record.SessionID)
	}

	removed, err := e.sessions.Invalidate(ctx, account.UserID, except...)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	for i := 0; i < removed; i++ {
		e.metricInc(MetricSessionInvalidated)
	}
	if removed > 0 {
		e.emitAudit(ctx, auditSessionsInvalidated, true, account.UserID, provider, identifier, nil)
	}

	sess, token, err := e.mintSession(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricResetCompleted)
	e.emitAudit(ctx, auditResetCompleted, true, account.UserID, provider, identifier, nil)

	return &AuthResult{
		UserID:      account.UserID,
		SessionID:   sess.ID,
		AccessToken: token,
		Account:     toAccount(account),
	}, nil
}

func (e *Engine) failReset(ctx context.Context, provider, identifier string) error {
	e.metricInc(MetricResetFailure)
	e.emitAudit(ctx, auditResetFailure, false, "", provider, identifier, ErrInvalidCredentials)
	return ErrInvalidCredentials
}
