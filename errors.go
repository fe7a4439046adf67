package authcore

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers wrong secret, unknown identity, and
	// expired, superseded, or mismatched verification codes. The causes are
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateAccount is returned when (provider, identifier) is already
	// registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrThrottled is returned when the failure budget for an identity is
	// spent. Use errors.As with [*ThrottledError] for the retry-after hint.
	ErrThrottled = errors.New("too many failed attempts")
	// ErrInvalidInput is returned for malformed parameters, such as a missing
	// provider or a secret below the policy minimum.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned by session and account lookups that find
	// nothing.
	ErrNotFound = errors.New("not found")
	// ErrVerificationNotConfigured is returned when a flow needs the
	// verification sender capability and none was supplied.
	ErrVerificationNotConfigured = errors.New("verification sender not configured")
	// ErrVerificationSend is returned when the out-of-band delivery of a
	// verification code failed. Storage mutations preceding the send (for
	// example account creation during sign-up) remain committed.
	ErrVerificationSend = errors.New("verification send failed")
	// ErrStoreUnavailable is returned when the storage backend cannot be
	// reached.
	ErrStoreUnavailable = errors.New("storage backend unavailable")
	// ErrEngineNotReady is returned when the Engine was not built through
	// [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ThrottledError reports a rate-limited attempt together with how long the
// caller should wait before retrying. It matches [ErrThrottled] under
// errors.Is.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry after %s", e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}
