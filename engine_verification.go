package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/authcore-io/authcore/internal"
	"github.com/authcore-io/authcore/internal/stores"
)

// RequestEmailVerification issues a fresh email verification code for the
// account and hands it to the sender. Any outstanding code for the same
// account and purpose is superseded. maxAge overrides the configured code
// lifetime when positive.
//
// An unknown identifier reports [ErrInvalidCredentials], indistinguishable
// from the other failure causes.
func (e *Engine) RequestEmailVerification(ctx context.Context, provider, identifier string, maxAge time.Duration) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if e.sender == nil {
		return ErrVerificationNotConfigured
	}

	provider = normalizeIdentity(provider)
	identifier = normalizeIdentity(identifier)
	if provider == "" || identifier == "" {
		return ErrInvalidInput
	}

	account, _, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			e.emitAudit(ctx, auditVerificationFailure, false, "", provider, identifier, ErrInvalidCredentials)
			return ErrInvalidCredentials
		}
		return wrapStoreErr(err)
	}

	if err := e.issueAndSend(ctx, account, PurposeEmailVerification, "", maxAge); err != nil {
		return err
	}

	e.metricInc(MetricVerificationIssued)
	e.emitAudit(ctx, auditVerificationRequested, true, account.UserID, provider, identifier, nil)
	return nil
}

// ConfirmEmailVerification redeems an email verification code, flips the
// account's verified flag, and mints a session. Expired, superseded,
// mismatched, and missing codes all report [ErrInvalidCredentials].
func (e *Engine) ConfirmEmailVerification(ctx context.Context, req ConfirmVerificationRequest) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	provider := normalizeIdentity(req.Provider)
	identifier := normalizeIdentity(req.Identifier)
	if provider == "" || identifier == "" || req.Code == "" {
		return nil, ErrInvalidInput
	}

	account, _, err := e.accounts.Retrieve(ctx, provider, identifier)
	if err != nil {
		if errors.Is(err, stores.ErrAccountNotFound) {
			return nil, e.failVerification(ctx, provider, identifier)
		}
		return nil, wrapStoreErr(err)
	}

	_, err = e.redeemCode(ctx, account.AccountID, PurposeEmailVerification, req.Code)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, e.failVerification(ctx, provider, identifier)
		}
		return nil, err
	}

	if err := e.accounts.MarkEmailVerified(ctx, provider, identifier); err != nil {
		return nil, wrapStoreErr(err)
	}

	sess, token, err := e.mintSession(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricVerificationConfirmed)
	e.emitAudit(ctx, auditVerificationConfirmed, true, account.UserID, provider, identifier, nil)

	verified := toAccount(account)
	verified.EmailVerified = true

	return &AuthResult{
		UserID:      account.UserID,
		SessionID:   sess.ID,
		AccessToken: token,
		Account:     verified,
	}, nil
}

func (e *Engine) failVerification(ctx context.Context, provider, identifier string) error {
	e.metricInc(MetricVerificationFailure)
	e.emitAudit(ctx, auditVerificationFailure, false, "", provider, identifier, ErrInvalidCredentials)
	return ErrInvalidCredentials
}

// issueAndSend generates a raw code per the configured format, persists its
// hash (superseding any live code for the account+purpose pair), and hands
// the raw code to the sender. Send failures wrap [ErrVerificationSend]; the
// stored code stays live so a resend is not required to invalidate it.
func (e *Engine) issueAndSend(ctx context.Context, account *stores.AccountRecord, purpose Purpose, sessionID string, maxAge time.Duration) error {
	raw, err := e.newRawCode()
	if err != nil {
		return err
	}

	ttl := e.config.Verification.CodeTTL
	if maxAge > 0 {
		ttl = maxAge
	}
	expiresAt := time.Now().Add(ttl)

	record := &stores.CodeRecord{
		AccountID: account.AccountID,
		UserID:    account.UserID,
		SessionID: sessionID,
		CodeHash:  internal.HashCode(raw),
		ExpiresAt: expiresAt.UnixMilli(),
	}

	if err := e.codes.Save(ctx, account.AccountID, string(purpose), record, ttl); err != nil {
		return wrapStoreErr(err)
	}

	err = e.sender.SendVerificationRequest(ctx, VerificationRequest{
		Provider:   account.Provider,
		Identifier: account.ExternalID,
		Code:       raw,
		Purpose:    purpose,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return &verificationSendError{cause: err}
	}
	return nil
}

func (e *Engine) newRawCode() (string, error) {
	if e.config.Verification.Format == CodeFormatOTP {
		return internal.NewOTP(e.config.Verification.OTPDigits)
	}
	secret, err := internal.NewCodeSecret()
	if err != nil {
		return "", err
	}
	return internal.EncodeCodeSecret(secret), nil
}

// redeemCode consumes the live code for (account, purpose). All redemption
// failures collapse to ErrInvalidCredentials; backend trouble surfaces as
// ErrStoreUnavailable.
func (e *Engine) redeemCode(ctx context.Context, accountID string, purpose Purpose, raw string) (*stores.CodeRecord, error) {
	record, err := e.codes.Consume(ctx, accountID, string(purpose), internal.HashCode(raw), e.config.Verification.MaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrCodeNotFound),
			errors.Is(err, stores.ErrCodeMismatch),
			errors.Is(err, stores.ErrCodeAttemptsExceeded):
			return nil, ErrInvalidCredentials
		default:
			return nil, wrapStoreErr(err)
		}
	}
	return record, nil
}

type verificationSendError struct {
	cause error
}

func (e *verificationSendError) Error() string {
	return ErrVerificationSend.Error() + ": " + e.cause.Error()
}

func (e *verificationSendError) Is(target error) bool {
	return target == ErrVerificationSend
}

func (e *verificationSendError) Unwrap() error {
	return e.cause
}
