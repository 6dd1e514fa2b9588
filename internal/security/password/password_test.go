package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("Secret@1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "Secret@1" {
		t.Fatalf("hash must not equal the plain text")
	}

	ok, err := h.Verify(hash, "Secret@1")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify(hash, "Secret@2")
	if err != nil || ok {
		t.Fatalf("expected clean mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	if _, err := h.Verify("not-a-hash", "x"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestIsStrong(t *testing.T) {
	cases := map[string]bool{
		"Secret@1":        true,
		"aB3#xy":          true,
		"short":           false,
		"alllower1@":      false,
		"ALLUPPER1@":      false,
		"NoDigits@@":      false,
		"NoSpecial12":     false,
		"Has Space@1":     false,
		"Unicodé@1A":      false,
		"Aa1@" + "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx": false,
	}
	for in, want := range cases {
		if got := IsStrong(in); got != want {
			t.Fatalf("IsStrong(%q) = %v, want %v", in, got, want)
		}
	}
}
