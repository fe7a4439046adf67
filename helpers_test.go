package authcore

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/password"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// testHasher uses minimum Argon2id parameters so flow tests stay fast.
func testHasher(t *testing.T) Hasher {
	t.Helper()

	h, err := password.NewArgon2(password.Argon2Params{
		MemoryKB:    8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

// captureSender records every verification request and optionally fails.
type captureSender struct {
	mu       sync.Mutex
	requests []VerificationRequest
	fail     error
}

func (s *captureSender) SendVerificationRequest(_ context.Context, req VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *captureSender) last(t *testing.T) VerificationRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("no verification request captured")
	}
	return s.requests[len(s.requests)-1]
}

type engineOption func(*Config, *Builder)

func withConfig(mutate func(*Config)) engineOption {
	return func(cfg *Config, _ *Builder) { mutate(cfg) }
}

func withSender(s VerificationSender) engineOption {
	return func(_ *Config, b *Builder) { b.WithVerificationSender(s) }
}

func withAuditSink(sink AuditSink) engineOption {
	return func(_ *Config, b *Builder) { b.WithAuditSink(sink) }
}

func newTestEngine(t *testing.T, opts ...engineOption) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, client := newTestRedis(t)

	cfg := defaultConfig()
	builder := New().WithRedis(client).WithHasher(testHasher(t))
	for _, opt := range opts {
		opt(&cfg, builder)
	}
	builder.WithConfig(cfg)

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, mr
}

func mustSignUp(t *testing.T, e *Engine, provider, identifier, secret string) *AuthResult {
	t.Helper()

	result, err := e.SignUp(context.Background(), SignUpRequest{
		Provider:   provider,
		Identifier: identifier,
		Secret:     secret,
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	return result
}

func mustSignIn(t *testing.T, e *Engine, provider, identifier, secret string) *AuthResult {
	t.Helper()

	result, err := e.SignIn(context.Background(), SignInRequest{
		Provider:   provider,
		Identifier: identifier,
		Secret:     secret,
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return result
}
