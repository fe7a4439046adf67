package authcore

import (
	"context"
	"time"
)

// Hasher is the injected credential hashing capability. Hash output must be
// self-describing (parameters and salt embedded) and Verify must run in
// roughly constant time regardless of match.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, encoded string) (bool, error)
}

// Purpose tags which flow a verification code authorizes.
type Purpose string

const (
	// PurposeEmailVerification proves control of the account's email channel.
	PurposeEmailVerification Purpose = "email_verification"
	// PurposePasswordReset authorizes a credential change.
	PurposePasswordReset Purpose = "password_reset"
)

// CodeFormat selects the shape of generated verification codes.
type CodeFormat int

const (
	// CodeFormatToken generates a 32-byte random code rendered as base64url.
	// At 43 characters it is self-sufficient as a secret.
	CodeFormatToken CodeFormat = iota
	// CodeFormatOTP generates a short numeric code. Short codes are never
	// trusted alone: redemption requires the identifier that requested them.
	CodeFormatOTP
)

// Account is a (provider, identifier) credential binding to a user.
type Account struct {
	ID            string
	Provider      string
	Identifier    string
	UserID        string
	EmailVerified bool
}

// User is the profile shared by one or more accounts. Users are never
// deleted by this core.
type User struct {
	ID    string
	Email string
}

// SessionInfo is the caller-facing view of a session.
type SessionInfo struct {
	ID           string
	UserID       string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// VerificationRequest is handed to the injected sender for out-of-band
// delivery. Code is the raw single-use secret; only its hash is stored.
type VerificationRequest struct {
	Provider   string
	Identifier string
	Code       string
	Purpose    Purpose
	ExpiresAt  time.Time
}

// VerificationSender delivers verification codes out-of-band (email, SMS).
// The core only calls it and never implements delivery.
type VerificationSender interface {
	SendVerificationRequest(ctx context.Context, req VerificationRequest) error
}

// SignUpRequest registers a new (provider, identifier) account.
type SignUpRequest struct {
	Provider   string
	Identifier string
	Secret     string
	// Email is the natural identity used for account linking. When empty it
	// defaults to Identifier.
	Email string
	// Link attaches the new account to an existing user sharing the same
	// email instead of creating an independent user.
	Link bool
}

// SignInRequest authenticates an existing account.
type SignInRequest struct {
	Provider   string
	Identifier string
	Secret     string
}

// ResetRequest starts a password reset for an identifier. SessionID, when
// set, names the session that initiated the reset so it can survive the
// post-reset invalidation sweep.
type ResetRequest struct {
	Provider   string
	Identifier string
	SessionID  string
	// MaxAge overrides the configured code lifetime when positive.
	MaxAge time.Duration
}

// CompleteResetRequest redeems a reset code and installs a new secret.
type CompleteResetRequest struct {
	Provider         string
	Identifier       string
	Code             string
	NewSecret        string
	CurrentSessionID string
}

// ConfirmVerificationRequest redeems an email verification code.
type ConfirmVerificationRequest struct {
	Provider   string
	Identifier string
	Code       string
}

// ChangeSecretRequest replaces an account secret inside an existing session.
type ChangeSecretRequest struct {
	Provider         string
	Identifier       string
	CurrentSecret    string
	NewSecret        string
	CurrentSessionID string
}

// AuthResult is the terminal outcome of a successful flow transition. When
// PendingVerification is set no session was minted; the flow branched into
// the out-of-band verification sub-flow instead.
type AuthResult struct {
	UserID              string
	SessionID           string
	AccessToken         string
	Account             Account
	PendingVerification bool
}

// ResetChallenge reports an issued reset code.
type ResetChallenge struct {
	ExpiresAt time.Time
}
