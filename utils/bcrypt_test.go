package utils

import "testing"

func TestComparePasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(string(hash), "s3cret"); err != nil {
		t.Fatalf("ComparePassword with correct password: %v", err)
	}
	if err := ComparePassword(string(hash), "wrong"); err == nil {
		t.Fatal("ComparePassword accepted a wrong password")
	}
}

func TestComparePasswordRejectsCorruptHash(t *testing.T) {
	// A corrupted stored hash errors for a different reason than a mismatch;
	// login must reject on any non-nil error.
	if err := ComparePassword("not-a-bcrypt-hash", "s3cret"); err == nil {
		t.Fatal("ComparePassword accepted a corrupt hash")
	}
}
