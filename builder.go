package authcore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/internal/rate"
	"github.com/authcore-io/authcore/internal/stores"
	"github.com/authcore-io/authcore/jwt"
	"github.com/authcore-io/authcore/password"
	"github.com/authcore-io/authcore/session"
)

// Builder assembles an [Engine]. Construction is allocation-only; the first
// storage round-trip happens on the first Engine call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	hasher    Hasher
	sender    VerificationSender
	auditSink AuditSink

	built bool
}

// New starts a builder with default configuration: 30-day session caps,
// 1-hour JWT lifetime, 10 failed attempts per hour, Argon2id hashing.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration wholesale. Zero-value fields are NOT
// re-defaulted; start from [New]'s defaults and override selectively, or
// supply every field.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the storage backend. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHasher overrides the credential hasher capability. Defaults to
// Argon2id with interactive-login parameters.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithVerificationSender enables the out-of-band verification sub-flows
// (email verification on sign-up/sign-in, password reset). Without a sender,
// sign-up and sign-in mint sessions directly and the reset flows report
// [ErrVerificationNotConfigured].
func (b *Builder) WithVerificationSender(s VerificationSender) *Builder {
	b.sender = s
	return b
}

// WithAuditSink sets the destination for audit events. Only consulted when
// [AuditConfig.Enabled] is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and wires the engine. A builder can only
// build once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(password.DefaultArgon2Params())
		if err != nil {
			return nil, err
		}
	}

	var jwtManager *jwt.Manager
	if b.config.JWT.Enabled {
		var err error
		jwtManager, err = jwt.NewManager(jwt.Config{
			Duration:      b.config.JWT.Duration,
			SigningMethod: b.config.JWT.SigningMethod,
			PrivateKey:    b.config.JWT.PrivateKey,
			PublicKey:     b.config.JWT.PublicKey,
			Issuer:        b.config.JWT.Issuer,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid jwt config: %w", err)
		}
	}

	// The decoy hash keeps lookups that miss indistinguishable, by timing,
	// from real verifications against a wrong secret.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	prefix := b.config.KeyPrefix
	engine := &Engine{
		config:   b.config,
		accounts: stores.NewAccountStore(b.redis, prefix),
		sessions: session.NewStore(b.redis, prefix+":ses", session.Config{
			TotalDuration:    b.config.Session.TotalDuration,
			InactiveDuration: b.config.Session.InactiveDuration,
		}),
		codes: stores.NewVerificationStore(b.redis, prefix+":vcd"),
		limiter: rate.New(b.redis, prefix+":fla", rate.Config{
			Limit:  b.config.SignIn.MaxFailedAttemptsPerHour,
			Window: b.config.SignIn.FailureWindow,
		}),
		hasher:     hasher,
		sender:     b.sender,
		jwtManager: jwtManager,
		audit:      newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:    newMetrics(b.config.Metrics),
		dummyHash:  dummyHash,
	}

	b.built = true
	return engine, nil
}
