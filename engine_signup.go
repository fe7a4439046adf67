package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/authcore-io/authcore/internal/stores"
)

// SignUp registers a new (provider, identifier) account, creating a user
// unless Link resolves to an existing one.
//
// When a verification sender is configured the flow branches into the
// out-of-band verification sub-flow: no session is minted and the result
// reports PendingVerification. The account creation is committed before the
// send, so a send failure returns the result together with an error matching
// [ErrVerificationSend]; callers handle resend, not rollback.
func (e *Engine) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	provider := normalizeIdentity(req.Provider)
	identifier := normalizeIdentity(req.Identifier)
	if provider == "" || identifier == "" {
		e.emitAudit(ctx, auditSignUpFailure, false, "", provider, identifier, ErrInvalidInput)
		return nil, ErrInvalidInput
	}
	if len(req.Secret) < e.config.Secret.MinLength {
		e.emitAudit(ctx, auditSignUpFailure, false, "", provider, identifier, ErrInvalidInput)
		return nil, ErrInvalidInput
	}

	email := normalizeIdentity(req.Email)
	if email == "" {
		email = identifier
	}

	secretHash, err := e.hasher.Hash(req.Secret)
	if err != nil {
		e.emitAudit(ctx, auditSignUpFailure, false, "", provider, identifier, err)
		return nil, ErrInvalidInput
	}

	account := stores.AccountRecord{
		AccountID:  uuid.NewString(),
		Provider:   provider,
		ExternalID: identifier,
		UserID:     uuid.NewString(),
		SecretHash: secretHash,
	}
	user := stores.UserRecord{UserID: account.UserID, Email: email}

	ownerID, err := e.accounts.Create(ctx, account, user, req.Link)
	if err != nil {
		if errors.Is(err, stores.ErrDuplicateAccount) {
			e.metricInc(MetricSignUpDuplicate)
			e.emitAudit(ctx, auditSignUpDuplicate, false, "", provider, identifier, ErrDuplicateAccount)
			return nil, ErrDuplicateAccount
		}
		e.emitAudit(ctx, auditSignUpFailure, false, "", provider, identifier, err)
		return nil, wrapStoreErr(err)
	}

	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditSignUpSuccess, true, ownerID, provider, identifier, nil)

	result := &AuthResult{
		UserID: ownerID,
		Account: Account{
			ID:         account.AccountID,
			Provider:   provider,
			Identifier: identifier,
			UserID:     ownerID,
		},
	}

	if e.sender != nil {
		result.PendingVerification = true
		record := account
		record.UserID = ownerID
		if err := e.issueAndSend(ctx, &record, PurposeEmailVerification, "", 0); err != nil {
			// The account above is already committed; surface the send
			// failure alongside the created identity so the caller can
			// resend instead of re-registering.
			return result, err
		}
		e.metricInc(MetricVerificationIssued)
		e.emitAudit(ctx, auditVerificationRequested, true, ownerID, provider, identifier, nil)
		return result, nil
	}

	sess, token, err := e.mintSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	result.SessionID = sess.ID
	result.AccessToken = token
	return result, nil
}
