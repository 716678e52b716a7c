package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash equals the plaintext password")
	}

	if !CheckPasswordHash("correct-horse-battery", hash) {
		t.Error("correct password did not verify")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password verified")
	}
}

func TestCheckPasswordHashEmptyHash(t *testing.T) {
	// Google sign-in accounts have no stored hash; nothing may match.
	if CheckPasswordHash("", "") {
		t.Error("empty password verified against empty hash")
	}
	if CheckPasswordHash("anything", "") {
		t.Error("password verified against empty hash")
	}
}
