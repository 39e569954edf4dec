package auth

import (
	"testing"
	"time"

	"github.com/obra-coop/obranet/internal/models"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), 15*time.Minute)
	user := models.NewUser("alice", "alice@example.com", models.RoleAdmin, models.RoleEditor)

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Subject != user.ID {
		t.Errorf("claims user = %s/%s, want %s", claims.UserID, claims.Subject, user.ID)
	}
	if claims.Name != "alice" {
		t.Errorf("claims name = %q, want alice", claims.Name)
	}
	if len(claims.Roles) != 2 {
		t.Errorf("claims roles = %v, want admin+editor", claims.Roles)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService([]byte("secret-a"), time.Minute)
	verifier := NewJWTService([]byte("secret-b"), time.Minute)

	token, err := issuer.GenerateToken(models.NewUser("alice", "alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), -time.Minute)

	token, err := svc.GenerateToken(models.NewUser("alice", "alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), time.Minute)
	for _, tok := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := svc.ValidateToken(tok); err == nil {
			t.Errorf("ValidateToken(%q) succeeded", tok)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("short password: err = %v, want ErrPasswordTooShort", err)
	}

	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Error("password stored in the clear")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password!!") {
		t.Error("wrong password accepted")
	}
}
