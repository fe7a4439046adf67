package internal

import "testing"

func TestIDStringRoundTrip(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID failed: %v", err)
	}

	s := id.String()
	if len(s) != 22 {
		t.Fatalf("expected 22-character id, got %q", s)
	}

	parsed, err := ParseID(s)
	if err != nil {
		t.Fatalf("ParseID failed: %v", err)
	}
	if parsed != id {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, id)
	}
}

func TestParseIDRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "short", "!!not-base64!!", "AAAA"} {
		if _, err := ParseID(s); err == nil {
			t.Fatalf("expected ParseID(%q) to fail", s)
		}
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[ID]bool, 1000)
	for i := 0; i < 1000; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID failed: %v", err)
		}
		if seen[id] {
			t.Fatal("duplicate id generated")
		}
		seen[id] = true
	}
}

func TestCodeSecretEncoding(t *testing.T) {
	secret, err := NewCodeSecret()
	if err != nil {
		t.Fatalf("NewCodeSecret failed: %v", err)
	}

	encoded := EncodeCodeSecret(secret)
	if len(encoded) != 43 {
		t.Fatalf("expected 43-character token, got %d", len(encoded))
	}
}

func TestHashCodeIsDeterministic(t *testing.T) {
	a := HashCode("123456")
	b := HashCode("123456")
	c := HashCode("123457")

	if a != b {
		t.Fatal("expected stable digest for equal input")
	}
	if a == c {
		t.Fatal("expected distinct digest for distinct input")
	}
}

func TestNewOTP(t *testing.T) {
	for _, digits := range []int{6, 8, 10} {
		otp, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d) failed: %v", digits, err)
		}
		if len(otp) != digits {
			t.Fatalf("expected %d digits, got %q", digits, otp)
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in otp %q", otp)
			}
		}
	}

	for _, digits := range []int{0, 5, 11} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("expected NewOTP(%d) to fail", digits)
		}
	}
}
