package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSignInSuccess(t *testing.T) {
	engine, _ := newTestEngine(t)

	signedUp := mustSignUp(t, engine, "password", "alice@example.com", testSecret)
	result := mustSignIn(t, engine, "password", "alice@example.com", testSecret)

	if result.UserID != signedUp.UserID {
		t.Fatalf("expected user %q, got %q", signedUp.UserID, result.UserID)
	}
	if result.SessionID == "" || result.SessionID == signedUp.SessionID {
		t.Fatalf("expected a fresh session, got %q", result.SessionID)
	}
}

func TestSignInFailuresAreUniform(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)

	// Wrong secret and unknown identity report the same error value.
	_, wrongSecret := engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: "wrong secret here",
	})
	_, unknownIdentity := engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "nobody@example.com", Secret: testSecret,
	})

	if !errors.Is(wrongSecret, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong secret, got %v", wrongSecret)
	}
	if !errors.Is(unknownIdentity, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown identity, got %v", unknownIdentity)
	}
	if wrongSecret.Error() != unknownIdentity.Error() {
		t.Fatalf("expected identical messages, got %q vs %q", wrongSecret, unknownIdentity)
	}
}

func TestSignInThrottledAfterBudget(t *testing.T) {
	engine, _ := newTestEngine(t, withConfig(func(cfg *Config) {
		cfg.SignIn.MaxFailedAttemptsPerHour = 3
	}))
	ctx := context.Background()

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)

	for i := 0; i < 3; i++ {
		_, err := engine.SignIn(ctx, SignInRequest{
			Provider: "password", Identifier: "alice@example.com", Secret: "wrong secret here",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Even the correct secret is rejected once the budget is spent.
	_, err := engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: testSecret,
	})
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}

	var throttled *ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("expected *ThrottledError, got %T", err)
	}
	if throttled.RetryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", throttled.RetryAfter)
	}
}

func TestSignInWindowRolloverRestoresBudget(t *testing.T) {
	engine, mr := newTestEngine(t, withConfig(func(cfg *Config) {
		cfg.SignIn.MaxFailedAttemptsPerHour = 2
	}))
	ctx := context.Background()

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)

	for i := 0; i < 2; i++ {
		_, _ = engine.SignIn(ctx, SignInRequest{
			Provider: "password", Identifier: "alice@example.com", Secret: "wrong secret here",
		})
	}
	if _, err := engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: testSecret,
	}); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled before rollover, got %v", err)
	}

	mr.FastForward(time.Hour + time.Second)

	mustSignIn(t, engine, "password", "alice@example.com", testSecret)
}

func TestSignInSuccessDoesNotResetFailureCounter(t *testing.T) {
	engine, _ := newTestEngine(t, withConfig(func(cfg *Config) {
		cfg.SignIn.MaxFailedAttemptsPerHour = 3
	}))
	ctx := context.Background()

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)

	for i := 0; i < 2; i++ {
		_, _ = engine.SignIn(ctx, SignInRequest{
			Provider: "password", Identifier: "alice@example.com", Secret: "wrong secret here",
		})
	}

	// A valid login in between does not clear the accrued failures.
	mustSignIn(t, engine, "password", "alice@example.com", testSecret)

	_, err := engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: "wrong secret here",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// The third failure exhausted the budget despite the interleaved success.
	_, err = engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: testSecret,
	})
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
}

func TestSignInUnverifiedAccountPendsVerification(t *testing.T) {
	sender := &captureSender{}
	engine, _ := newTestEngine(t, withSender(sender))
	ctx := context.Background()

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)
	if sender.count() != 1 {
		t.Fatalf("expected sign-up to issue a code, got %d sends", sender.count())
	}

	result, err := engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: testSecret,
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if !result.PendingVerification || result.SessionID != "" {
		t.Fatalf("expected pending verification without session, got %+v", result)
	}
	if sender.count() != 2 {
		t.Fatalf("expected a fresh code per attempt, got %d sends", sender.count())
	}
}

func TestSignInRejectsInvalidInput(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []SignInRequest{
		{Identifier: "alice@example.com", Secret: testSecret},
		{Provider: "password", Secret: testSecret},
		{Provider: "password", Identifier: "alice@example.com"},
	}
	for _, req := range cases {
		if _, err := engine.SignIn(ctx, req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", req, err)
		}
	}
}

func TestSignInMetrics(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)
	mustSignIn(t, engine, "password", "alice@example.com", testSecret)
	_, _ = engine.SignIn(ctx, SignInRequest{
		Provider: "password", Identifier: "alice@example.com", Secret: "wrong secret here",
	})

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSignUpSuccess] != 1 {
		t.Fatalf("expected 1 sign-up, got %d", snap.Counters[MetricSignUpSuccess])
	}
	if snap.Counters[MetricSignInSuccess] != 1 {
		t.Fatalf("expected 1 sign-in success, got %d", snap.Counters[MetricSignInSuccess])
	}
	if snap.Counters[MetricSignInFailure] != 1 {
		t.Fatalf("expected 1 sign-in failure, got %d", snap.Counters[MetricSignInFailure])
	}
	if snap.Counters[MetricSessionCreated] != 2 {
		t.Fatalf("expected 2 sessions, got %d", snap.Counters[MetricSessionCreated])
	}
}
