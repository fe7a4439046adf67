package password

import (
	"strings"
	"testing"
)

func testScryptParams() ScryptParams {
	return ScryptParams{
		LogN:       12,
		R:          8,
		P:          1,
		SaltLength: 16,
		KeyLength:  16,
	}
}

func TestScryptHashVerify(t *testing.T) {
	hasher, err := NewScrypt(testScryptParams())
	if err != nil {
		t.Fatalf("NewScrypt failed: %v", err)
	}

	encoded, err := hasher.Hash("a perfectly fine secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$scrypt$") {
		t.Fatalf("unexpected encoding prefix: %q", encoded)
	}

	ok, err := hasher.Verify("a perfectly fine secret", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected match for original secret")
	}

	ok, err = hasher.Verify("a perfectly wrong secret", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch for wrong secret")
	}
}

func TestScryptRejectsMalformedHashes(t *testing.T) {
	hasher, err := NewScrypt(testScryptParams())
	if err != nil {
		t.Fatalf("NewScrypt failed: %v", err)
	}

	for _, encoded := range []string{
		"",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$scrypt$ln=12,r=8$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$scrypt$ln=99,r=8,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		if _, err := hasher.Verify("whatever secret", encoded); err == nil {
			t.Fatalf("expected error for %q", encoded)
		}
	}
}

func TestNewScryptRejectsBadParams(t *testing.T) {
	params := testScryptParams()
	params.LogN = 5
	if _, err := NewScrypt(params); err == nil {
		t.Fatal("expected rejection of tiny cost")
	}

	params = testScryptParams()
	params.R = 0
	if _, err := NewScrypt(params); err == nil {
		t.Fatal("expected rejection of zero r")
	}
}
