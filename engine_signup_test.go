package authcore

import (
	"context"
	"errors"
	"testing"
)

const testSecret = "correct horse battery"

func TestSignUpMintsSessionWithoutSender(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := mustSignUp(t, engine, "password", "alice@example.com", testSecret)
	if result.UserID == "" || result.SessionID == "" {
		t.Fatalf("expected user and session, got %+v", result)
	}
	if result.PendingVerification {
		t.Fatal("expected no pending verification without a sender")
	}
	if result.AccessToken != "" {
		t.Fatal("expected no access token with JWT disabled")
	}

	info, err := engine.ValidateSession(context.Background(), result.SessionID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if info.UserID != result.UserID {
		t.Fatalf("session bound to %q, expected %q", info.UserID, result.UserID)
	}
}

func TestSignUpRejectsInvalidInput(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  SignUpRequest
	}{
		{"empty provider", SignUpRequest{Identifier: "alice@example.com", Secret: testSecret}},
		{"empty identifier", SignUpRequest{Provider: "password", Secret: testSecret}},
		{"short secret", SignUpRequest{Provider: "password", Identifier: "alice@example.com", Secret: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.SignUp(ctx, tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSignUpDuplicateRejected(t *testing.T) {
	engine, _ := newTestEngine(t)

	mustSignUp(t, engine, "password", "alice@example.com", testSecret)

	_, err := engine.SignUp(context.Background(), SignUpRequest{
		Provider:   "password",
		Identifier: "alice@example.com",
		Secret:     "another secret entirely",
	})
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}

	// The original credential still works.
	mustSignIn(t, engine, "password", "alice@example.com", testSecret)
}

func TestSignUpNormalizesIdentity(t *testing.T) {
	engine, _ := newTestEngine(t)

	mustSignUp(t, engine, "Password", "  Alice@Example.COM ", testSecret)
	result := mustSignIn(t, engine, "password", "alice@example.com", testSecret)
	if result.Account.Identifier != "alice@example.com" {
		t.Fatalf("expected normalized identifier, got %q", result.Account.Identifier)
	}
}

func TestSignUpWithSenderPendsVerification(t *testing.T) {
	sender := &captureSender{}
	engine, _ := newTestEngine(t, withSender(sender))

	result := mustSignUp(t, engine, "password", "alice@example.com", testSecret)
	if !result.PendingVerification {
		t.Fatal("expected pending verification")
	}
	if result.SessionID != "" || result.AccessToken != "" {
		t.Fatalf("expected no session before verification, got %+v", result)
	}

	req := sender.last(t)
	if req.Purpose != PurposeEmailVerification {
		t.Fatalf("expected email verification purpose, got %q", req.Purpose)
	}
	if req.Identifier != "alice@example.com" || req.Code == "" {
		t.Fatalf("unexpected verification request: %+v", req)
	}
}

func TestSignUpSendFailureKeepsAccountCommitted(t *testing.T) {
	sendErr := errors.New("smtp unreachable")
	sender := &captureSender{fail: sendErr}
	engine, _ := newTestEngine(t, withSender(sender))

	result, err := engine.SignUp(context.Background(), SignUpRequest{
		Provider:   "password",
		Identifier: "alice@example.com",
		Secret:     testSecret,
	})
	if !errors.Is(err, ErrVerificationSend) {
		t.Fatalf("expected ErrVerificationSend, got %v", err)
	}
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
	if result == nil || result.UserID == "" {
		t.Fatalf("expected committed identity alongside the error, got %+v", result)
	}

	// The account exists; a resend works once delivery recovers.
	sender.fail = nil
	if err := engine.RequestEmailVerification(context.Background(), "password", "alice@example.com", 0); err != nil {
		t.Fatalf("RequestEmailVerification failed: %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("expected one delivered request, got %d", sender.count())
	}
}

func TestSignUpLinkSharesUser(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	first := mustSignUp(t, engine, "password", "alice@example.com", testSecret)

	second, err := engine.SignUp(ctx, SignUpRequest{
		Provider:   "google",
		Identifier: "g-12345",
		Secret:     testSecret,
		Email:      "alice@example.com",
		Link:       true,
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if second.UserID != first.UserID {
		t.Fatalf("expected linked accounts to share a user, got %q and %q", first.UserID, second.UserID)
	}

	account, user, err := engine.Account(ctx, "google", "g-12345")
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if account.UserID != first.UserID || user.Email != "alice@example.com" {
		t.Fatalf("unexpected linked account: %+v user %+v", account, user)
	}
}

func TestSignUpWithoutLinkCreatesSeparateUsers(t *testing.T) {
	engine, _ := newTestEngine(t)

	first := mustSignUp(t, engine, "password", "alice@example.com", testSecret)
	second, err := engine.SignUp(context.Background(), SignUpRequest{
		Provider:   "google",
		Identifier: "g-12345",
		Secret:     testSecret,
		Email:      "alice@example.com",
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if second.UserID == first.UserID {
		t.Fatal("expected independent users without link")
	}
}
