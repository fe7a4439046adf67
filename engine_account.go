package authcore

import (
	"context"
	"errors"

	"github.com/authcore-io/authcore/internal/rate"
	"github.com/authcore-io/authcore/internal/stores"
)

// Account retrieves the account and user bound to (provider, identifier).
func (e *Engine) Account(ctx context.Context, provider, identifier string) (*Account, *User, error) {
	if !e.ready() {
		return nil, nil, ErrEngineNotReady
	}

	provider = normalizeIdentity(provider)
	identifier = normalizeIdentity(identifier)
	if provider == "" || identifier == "" {
		return nil, nil, ErrInvalidInput
	}

	record, userRecord, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, wrapStoreErr(err)
	}

	account := toAccount(record)
	user := &User{ID: userRecord.UserID, Email: userRecord.Email}
	return &account, user, nil
}

// ChangeSecret overwrites the account's secret hash after verifying the
// current secret, then sweeps the user's other sessions. It is the
// in-session counterpart of the reset flow: no verification code involved.
// Wrong current secrets count against the failure budget like sign-ins.
func (e *Engine) ChangeSecret(ctx context.Context, req ChangeSecretRequest) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	provider := normalizeIdentity(req.Provider)
	identifier := normalizeIdentity(req.Identifier)
	if provider == "" || identifier == "" || req.CurrentSecret == "" {
		return ErrInvalidInput
	}
	if len(req.NewSecret) < e.config.Secret.MinLength {
		return ErrInvalidInput
	}

	identity := identityKey(provider, identifier)
	if retryAfter, err := e.limiter.Check(ctx, identity); err != nil {
		if errors.Is(err, rate.ErrLimited) {
			return &ThrottledError{RetryAfter: retryAfter}
		}
		return wrapStoreErr(err)
	}

	account, _, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			e.verifyDummy(req.CurrentSecret)
			return e.failSignIn(ctx, identity, provider, identifier)
		}
		return wrapStoreErr(err)
	}
	if account.SecretHash == "" {
		e.verifyDummy(req.CurrentSecret)
		return e.failSignIn(ctx, identity, provider, identifier)
	}

	ok, err := e.hasher.Verify(req.CurrentSecret, account.SecretHash)
	if err != nil || !ok {
		return e.failSignIn(ctx, identity, provider, identifier)
	}

	newHash, err := e.hasher.Hash(req.NewSecret)
	if err != nil {
		return ErrInvalidInput
	}
	if err := e.accounts.UpdateSecretHash(ctx, provider, identifier, newHash); err != nil {
		return wrapStoreErr(err)
	}

	except := make([]string, 0, 1)
	if req.CurrentSessionID != "" {
		except = append(except, req.CurrentSessionID)
	}
	removed, err := e.sessions.Invalidate(ctx, account.UserID, except...)
	if err != nil {
		return wrapStoreErr(err)
	}
	for i := 0; i < removed; i++ {
		e.metricInc(MetricSessionInvalidated)
	}

	e.emitAudit(ctx, auditResetCompleted, true, account.UserID, provider, identifier, nil)
	return nil
}
