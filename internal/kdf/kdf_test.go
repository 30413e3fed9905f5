package kdf

import (
	"errors"
	"strings"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
)

func TestArgon2RoundTrip(t *testing.T) {
	t.Parallel()

	d, err := DeriveForEncryption("password", Argon2id, Argon2Params{MemoryKiB: 50, Time: 1, Parallelism: 1}, PBKDF2Params{})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Key) != KeySize {
		t.Fatalf("key length = %d, want %d", len(d.Key), KeySize)
	}
	if !strings.HasPrefix(d.PHSF, "$argon2id$") {
		t.Fatalf("phsf = %q, want argon2id prefix", d.PHSF)
	}

	key, err := VerifyAndDeriveKey("password", d.PHSF)
	if err != nil {
		t.Fatal(err)
	}
	if string(key) != string(d.Key) {
		t.Error("re-derived key does not match original")
	}

	if _, err := VerifyAndDeriveKey("wrong", d.PHSF); !errors.Is(err, pna.ErrWrongPassword) {
		t.Errorf("VerifyAndDeriveKey with wrong password = %v, want ErrWrongPassword", err)
	}
}

func TestPBKDF2RoundTrip(t *testing.T) {
	t.Parallel()

	d, err := DeriveForEncryption("hunter2", PBKDF2Sha256, Argon2Params{}, PBKDF2Params{Iterations: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(d.PHSF, "$pbkdf2-sha256$") {
		t.Fatalf("phsf = %q, want pbkdf2-sha256 prefix", d.PHSF)
	}

	key, err := VerifyAndDeriveKey("hunter2", d.PHSF)
	if err != nil {
		t.Fatal(err)
	}
	if string(key) != string(d.Key) {
		t.Error("re-derived key does not match original")
	}

	if _, err := VerifyAndDeriveKey("wrong", d.PHSF); !errors.Is(err, pna.ErrWrongPassword) {
		t.Errorf("VerifyAndDeriveKey with wrong password = %v, want ErrWrongPassword", err)
	}
}

func TestDecodeMalformedPHSF(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-phc-string",
		"$unknownalgo$x=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1$c2FsdA$aGFzaA", // missing p=
	}
	for _, c := range cases {
		if _, err := VerifyAndDeriveKey("password", c); err == nil {
			t.Errorf("VerifyAndDeriveKey(%q) succeeded, want error", c)
		}
	}
}
