package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"logiscore/internal/auth"
	"logiscore/internal/config"
	"logiscore/internal/models"
	"logiscore/internal/repository"
)

type authFixture struct {
	users    *fakeUsers
	sessions *fakeSessions
	mailer   *fakeMailer
	svc      *AuthService
	config   *config.Config
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Expiration:        15 * time.Minute,
			RefreshExpiration: time.Hour,
		},
		Session: config.SessionConfig{
			VerificationCodeTTL: 10 * time.Minute,
			PasswordResetTTL:    time.Hour,
		},
		App: config.AppConfig{EnableRegistration: true},
	}
	f := &authFixture{
		users:    newFakeUsers(),
		sessions: newFakeSessions(),
		mailer:   &fakeMailer{},
		config:   cfg,
	}
	f.svc = NewAuthService(f.users, f.sessions, auth.NewService(&cfg.JWT), f.mailer, cfg)
	return f
}

func (f *authFixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "correct horse",
		FullName: "Dana Shipper",
		UserType: models.UserTypeShipper,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return user
}

func (f *authFixture) verified(t *testing.T, email string) (*models.User, *TokenPair) {
	t.Helper()
	user := f.register(t, email)
	mail, ok := f.mailer.last("verification")
	if !ok {
		t.Fatal("expected a verification email")
	}
	pair, err := f.svc.VerifyCode(context.Background(), email, mail.payload, ClientInfo{IPAddress: "203.0.113.7"})
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	return user, pair
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.register(t, "  Dana@Example.COM ")
	if user.Email != "dana@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.IsVerified || user.Role != models.RoleUser {
		t.Errorf("expected unverified regular user, got verified=%v role=%q", user.IsVerified, user.Role)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in clear text")
	}
	mail, ok := f.mailer.last("verification")
	if !ok || mail.to != "dana@example.com" || len(mail.payload) != 6 {
		t.Errorf("unexpected verification mail %+v", mail)
	}

	_, err := f.svc.Register(ctx, RegisterInput{
		Email: "dana@example.com", Password: "another one", FullName: "Dana", UserType: models.UserTypeShipper,
	})
	if !errors.Is(err, repository.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "long enough", FullName: "A", UserType: "shipper"}},
		{"short password", RegisterInput{Email: "a@b.io", Password: "short", FullName: "A", UserType: "shipper"}},
		{"missing name", RegisterInput{Email: "a@b.io", Password: "long enough", FullName: "  ", UserType: "shipper"}},
		{"unknown user type", RegisterInput{Email: "a@b.io", Password: "long enough", FullName: "A", UserType: "carrier"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if _, err := f.svc.Register(context.Background(), tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegisterDisabled(t *testing.T) {
	f := newAuthFixture(t)
	f.config.App.EnableRegistration = false

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "a@b.io", Password: "long enough", FullName: "A", UserType: "shipper",
	})
	if !errors.Is(err, ErrRegistrationDisabled) {
		t.Errorf("expected ErrRegistrationDisabled, got %v", err)
	}
}

func TestVerifyCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "dana@example.com")

	if _, err := f.svc.VerifyCode(ctx, "dana@example.com", "000000x", ClientInfo{}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := f.svc.VerifyCode(ctx, "nobody@example.com", "123456", ClientInfo{}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode for unknown email, got %v", err)
	}

	mail, _ := f.mailer.last("verification")
	pair, err := f.svc.VerifyCode(ctx, "dana@example.com", mail.payload, ClientInfo{})
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.TokenType != "bearer" || pair.ExpiresIn != 900 {
		t.Errorf("unexpected token pair %+v", pair)
	}
	if !user.IsVerified {
		t.Error("expected user to be verified")
	}
	if _, ok := f.mailer.last("welcome"); !ok {
		t.Error("expected a welcome email")
	}
	if len(f.sessions.sessions) != 2 {
		t.Errorf("expected access and refresh sessions, got %d", len(f.sessions.sessions))
	}

	if _, err := f.svc.VerifyCode(ctx, "dana@example.com", mail.payload, ClientInfo{}); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyCodeExpired(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "dana@example.com")
	past := time.Now().Add(-time.Minute)
	user.VerificationCodeExpires = &past

	if _, err := f.svc.VerifyCode(context.Background(), user.Email, *user.VerificationCode, ClientInfo{}); !errors.Is(err, ErrCodeExpired) {
		t.Errorf("expected ErrCodeExpired, got %v", err)
	}
}

func TestResendCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.ResendCode(ctx, "nobody@example.com"); err != nil {
		t.Errorf("expected unknown email to be accepted, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Error("expected no mail for unknown email")
	}

	user := f.register(t, "dana@example.com")
	if err := f.svc.ResendCode(ctx, "dana@example.com"); err != nil {
		t.Fatalf("ResendCode failed: %v", err)
	}
	mail, _ := f.mailer.last("verification")
	if mail.payload != *user.VerificationCode {
		t.Error("expected the stored code to match the mailed code")
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.verified(t, "dana@example.com")
	f.register(t, "pending@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "DANA@example.com", "correct horse", nil},
		{"wrong password", "dana@example.com", "wrong horse", ErrInvalidCredentials},
		{"unknown email", "ghost@example.com", "correct horse", ErrInvalidCredentials},
		{"unverified", "pending@example.com", "correct horse", ErrEmailNotVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := f.svc.Login(ctx, tt.email, tt.password, ClientInfo{UserAgent: "test"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && (pair.User == nil || pair.User.LastLoginAt == nil) {
				t.Error("expected last login to be recorded")
			}
		})
	}
}

func TestLoginInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user, _ := f.verified(t, "dana@example.com")
	user.IsActive = false

	if _, err := f.svc.Login(context.Background(), "dana@example.com", "correct horse", ClientInfo{}); !errors.Is(err, ErrUserInactive) {
		t.Errorf("expected ErrUserInactive, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, pair := f.verified(t, "dana@example.com")

	if _, err := f.svc.Refresh(ctx, pair.AccessToken, ClientInfo{}); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected access token to be rejected, got %v", err)
	}

	next, err := f.svc.Refresh(ctx, pair.RefreshToken, ClientInfo{})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("expected a new refresh token")
	}
	if len(f.sessions.sessions) != 2 {
		t.Errorf("expected old session to be replaced, got %d rows", len(f.sessions.sessions))
	}

	if _, err := f.svc.Refresh(ctx, pair.RefreshToken, ClientInfo{}); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected reused refresh token to fail, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, pair := f.verified(t, "dana@example.com")

	claims, err := auth.NewService(&f.config.JWT).ExtractClaims(pair.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Logout(ctx, claims.SessionID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if len(f.sessions.sessions) != 0 {
		t.Errorf("expected all session rows gone, got %d", len(f.sessions.sessions))
	}
	if _, err := f.svc.Refresh(ctx, pair.RefreshToken, ClientInfo{}); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected refresh after logout to fail, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.verified(t, "dana@example.com")

	if err := f.svc.RequestPasswordReset(ctx, "ghost@example.com"); err != nil {
		t.Errorf("expected unknown email to be accepted, got %v", err)
	}
	if _, ok := f.mailer.last("reset"); ok {
		t.Error("expected no reset mail for unknown email")
	}

	if err := f.svc.RequestPasswordReset(ctx, "dana@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	mail, ok := f.mailer.last("reset")
	if !ok {
		t.Fatal("expected a reset mail")
	}

	if err := f.svc.ConfirmPasswordReset(ctx, mail.payload, "short"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := f.svc.ConfirmPasswordReset(ctx, "bogus", "brand new pass"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expected ErrInvalidResetToken, got %v", err)
	}
	if err := f.svc.ConfirmPasswordReset(ctx, mail.payload, "brand new pass"); err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}

	if len(f.sessions.sessions) != 0 {
		t.Error("expected sessions to be revoked after reset")
	}
	if err := f.svc.ConfirmPasswordReset(ctx, mail.payload, "brand new pass"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expected used token to be rejected, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "dana@example.com", "brand new pass", ClientInfo{}); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, _ := f.verified(t, "dana@example.com")

	if err := f.svc.ChangePassword(ctx, user.ID, "wrong horse", "brand new pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, user.ID, "correct horse", "brand new pass"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := f.svc.Login(ctx, "dana@example.com", "brand new pass", ClientInfo{}); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}
