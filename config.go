package authcore

import (
	"errors"
	"time"

	"github.com/authcore-io/authcore/jwt"
)

// Config tunes every component of the engine. Zero values are filled with
// defaults by [New]; explicit values are validated by [Builder.Build].
type Config struct {
	// KeyPrefix namespaces every Redis key written by the engine.
	KeyPrefix string

	Session      SessionConfig
	JWT          JWTConfig
	SignIn       SignInConfig
	Secret       SecretConfig
	Verification VerificationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// SessionConfig bounds session lifetimes.
type SessionConfig struct {
	// TotalDuration is the absolute lifetime from creation. Default 30 days.
	TotalDuration time.Duration
	// InactiveDuration is the maximum idle gap between touches. Default 30 days.
	InactiveDuration time.Duration
}

// JWTConfig controls the optional access tokens minted alongside sessions.
// Tokens are issued only when Enabled is set and keys are supplied.
type JWTConfig struct {
	Enabled       bool
	// Duration is the access token lifetime. Default 1 hour.
	Duration      time.Duration
	SigningMethod jwt.SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// SignInConfig controls failure throttling.
type SignInConfig struct {
	// MaxFailedAttemptsPerHour is the per-identity failure budget inside one
	// window. Default 10.
	MaxFailedAttemptsPerHour int
	// FailureWindow is the fixed counting window. Default 1 hour.
	FailureWindow time.Duration
}

// SecretConfig is the plaintext secret policy enforced before hashing.
type SecretConfig struct {
	// MinLength is the minimum secret length in bytes. Default 10.
	MinLength int
}

// VerificationConfig controls one-time code generation.
type VerificationConfig struct {
	// CodeTTL is the default code lifetime; flows may override per call.
	// Default 15 minutes.
	CodeTTL time.Duration
	// Format selects opaque tokens or short numeric OTPs.
	Format CodeFormat
	// OTPDigits applies to CodeFormatOTP. Default 6.
	OTPDigits int
	// MaxAttempts bounds mismatched redemption attempts before the code is
	// burned. Default 5.
	MaxAttempts int
}

// AuditConfig controls the async audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events instead of blocking the flow when the buffer
	// is saturated.
	DropIfFull bool
}

// MetricsConfig controls the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration [New] starts from. Override fields
// selectively and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		KeyPrefix: "ac",
		Session: SessionConfig{
			TotalDuration:    30 * 24 * time.Hour,
			InactiveDuration: 30 * 24 * time.Hour,
		},
		JWT: JWTConfig{
			Duration:      time.Hour,
			SigningMethod: jwt.MethodEd25519,
		},
		SignIn: SignInConfig{
			MaxFailedAttemptsPerHour: 10,
			FailureWindow:            time.Hour,
		},
		Secret: SecretConfig{
			MinLength: 10,
		},
		Verification: VerificationConfig{
			CodeTTL:     15 * time.Minute,
			Format:      CodeFormatToken,
			OTPDigits:   6,
			MaxAttempts: 5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.KeyPrefix == "" {
		return errors.New("empty key prefix")
	}
	if cfg.Session.TotalDuration <= 0 || cfg.Session.InactiveDuration <= 0 {
		return errors.New("session durations must be positive")
	}
	if cfg.Session.InactiveDuration > cfg.Session.TotalDuration {
		return errors.New("inactive duration cannot exceed total duration")
	}
	if cfg.SignIn.MaxFailedAttemptsPerHour <= 0 {
		return errors.New("failed attempt budget must be positive")
	}
	if cfg.SignIn.FailureWindow <= 0 {
		return errors.New("failure window must be positive")
	}
	if cfg.Secret.MinLength <= 0 {
		return errors.New("secret minimum length must be positive")
	}
	if cfg.Verification.CodeTTL <= 0 {
		return errors.New("verification code TTL must be positive")
	}
	if cfg.Verification.Format == CodeFormatOTP &&
		(cfg.Verification.OTPDigits < 6 || cfg.Verification.OTPDigits > 10) {
		return errors.New("otp digits out of range")
	}
	if cfg.Verification.MaxAttempts <= 0 {
		return errors.New("verification attempt budget must be positive")
	}
	if cfg.JWT.Enabled && cfg.JWT.Duration <= 0 {
		return errors.New("jwt duration must be positive")
	}
	return nil
}
