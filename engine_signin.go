package authcore

import (
	"context"
	"errors"

	"github.com/authcore-io/authcore/internal/rate"
	"github.com/authcore-io/authcore/internal/stores"
)

// SignIn verifies an identifier+secret pair and mints a session.
//
// Unknown identity and wrong secret are indistinguishable in both error value
// and timing: lookups that miss still burn a hash verification against a
// decoy hash. A successful sign-in does not reset the failure counter: an
// attacker interleaving guesses with valid logins keeps accruing cost.
func (e *Engine) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	provider := normalizeIdentity(req.Provider)
	identifier := normalizeIdentity(req.Identifier)
	if provider == "" || identifier == "" || req.Secret == "" {
		return nil, ErrInvalidInput
	}

	identity := identityKey(provider, identifier)

	retryAfter, err := e.limiter.Check(ctx, identity)
	if err != nil {
		if errors.Is(err, rate.ErrLimited) {
			e.metricInc(MetricSignInThrottled)
			e.emitAudit(ctx, auditSignInThrottled, false, "", provider, identifier, ErrThrottled)
			return nil, &ThrottledError{RetryAfter: retryAfter}
		}
		return nil, wrapStoreErr(err)
	}

	account, _, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			e.verifyDummy(req.Secret)
			return nil, e.failSignIn(ctx, identity, provider, identifier)
		}
		return nil, wrapStoreErr(err)
	}

	// Accounts without a stored secret (external-provider bindings) cannot
	// be signed into with a password; fail uniformly.
	if account.SecretHash == "" {
		e.verifyDummy(req.Secret)
		return nil, e.failSignIn(ctx, identity, provider, identifier)
	}

	ok, err := e.hasher.Verify(req.Secret, account.SecretHash)
	if err != nil || !ok {
		return nil, e.failSignIn(ctx, identity, provider, identifier)
	}

	if e.sender != nil && !account.EmailVerified {
		if err := e.issueAndSend(ctx, account, PurposeEmailVerification, "", 0); err != nil {
			return nil, err
		}
		e.metricInc(MetricVerificationIssued)
		e.emitAudit(ctx, auditSignInPending, true, account.UserID, provider, identifier, nil)
		return &AuthResult{
			UserID:              account.UserID,
			Account:             toAccount(account),
			PendingVerification: true,
		}, nil
	}

	sess, token, err := e.mintSession(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditSignInSuccess, true, account.UserID, provider, identifier, nil)

	return &AuthResult{
		UserID:      account.UserID,
		SessionID:   sess.ID,
		AccessToken: token,
		Account:     toAccount(account),
	}, nil
}

// failSignIn counts the failure and returns the uniform outcome.
func (e *Engine) failSignIn(ctx context.Context, identity, provider, identifier string) error {
	_ = e.limiter.RecordFailure(ctx, identity)
	e.metricInc(MetricSignInFailure)
	e.emitAudit(ctx, auditSignInFailure, false, "", provider, identifier, ErrInvalidCredentials)
	return ErrInvalidCredentials
}

func toAccount(record *stores.AccountRecord) Account {
	return Account{
		ID:            record.AccountID,
		Provider:      record.Provider,
		Identifier:    record.ExternalID,
		UserID:        record.UserID,
		EmailVerified: record.EmailVerified,
	}
}
