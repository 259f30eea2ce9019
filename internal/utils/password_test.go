package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" || hash == "" {
		t.Fatalf("hash = %q, want a bcrypt digest", hash)
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "hunter23") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordClampsAbsurdCost(t *testing.T) {
	hash, err := HashPassword("hunter22", 99)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Fatal("hash from clamped cost does not verify")
	}
}
