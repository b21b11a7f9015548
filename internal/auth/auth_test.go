package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"logiscore/internal/config"

	"github.com/google/uuid"
)

func newTestService(expiration time.Duration) *Service {
	return NewService(&config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        expiration,
		RefreshExpiration: 168 * time.Hour,
	})
}

func testIdentity() Identity {
	return Identity{
		UserID:    uuid.New(),
		Email:     "shipper@example.com",
		Role:      "user",
		SessionID: uuid.New(),
	}
}

func TestHashPassword(t *testing.T) {
	svc := newTestService(time.Hour)

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" || hash == password {
		t.Error("Hash should be non-empty and differ from the password")
	}

	if err := svc.VerifyPassword(hash, password); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}
	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(time.Hour)
	id := testIdentity()

	issued, err := svc.GenerateToken(id)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if issued.Token == "" || issued.JTI == "" {
		t.Fatal("Token and JTI should not be empty")
	}

	claims, err := svc.ValidateToken(issued.Token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != id.UserID {
		t.Errorf("Expected user ID %s, got %s", id.UserID, claims.UserID)
	}
	if claims.Email != id.Email {
		t.Errorf("Expected email %s, got %s", id.Email, claims.Email)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("Expected access token, got %s", claims.TokenType)
	}
	if claims.SessionID != id.SessionID {
		t.Errorf("Expected session %s, got %s", id.SessionID, claims.SessionID)
	}
	if claims.ID != issued.JTI {
		t.Errorf("Expected JTI %s, got %s", issued.JTI, claims.ID)
	}
}

func TestRefreshTokenType(t *testing.T) {
	svc := newTestService(time.Hour)

	issued, err := svc.GenerateRefreshToken(testIdentity())
	if err != nil {
		t.Fatalf("Failed to generate refresh token: %v", err)
	}
	claims, err := svc.ValidateToken(issued.Token)
	if err != nil {
		t.Fatalf("Failed to validate refresh token: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("Expected refresh token, got %s", claims.TokenType)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(-1 * time.Hour)

	issued, err := svc.GenerateToken(testIdentity())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = svc.ValidateToken(issued.Token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}

	claims, err := svc.ExtractClaims(issued.Token)
	if err != nil {
		t.Fatalf("ExtractClaims should accept expired tokens: %v", err)
	}
	if claims.ID != issued.JTI {
		t.Errorf("Expected JTI %s, got %s", issued.JTI, claims.ID)
	}
}

func TestValidateTokenFromOtherKey(t *testing.T) {
	issuer := newTestService(time.Hour)
	verifier := newTestService(time.Hour)

	issued, err := issuer.GenerateToken(testIdentity())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := verifier.ValidateToken(issued.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestPEMSecretIsStable(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
	singleLine := strings.ReplaceAll(pemText, "\n", `\n`)

	a := NewService(&config.JWTConfig{Secret: pemText, Expiration: time.Hour})
	b := NewService(&config.JWTConfig{Secret: singleLine, Expiration: time.Hour})

	issued, err := a.GenerateToken(testIdentity())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := b.ValidateToken(issued.Token); err != nil {
		t.Errorf("Token signed with the same PEM key should validate: %v", err)
	}
}

func TestGenerateRandomToken(t *testing.T) {
	token1, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}
	token2, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate second random token: %v", err)
	}

	if token1 == "" || token1 == token2 {
		t.Error("Random tokens should be non-empty and different")
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		if err != nil {
			t.Fatalf("Failed to generate code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("Expected 6 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("Expected only digits, got %q", code)
			}
		}
	}
}
