package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"logiscore/internal/auth"
	"logiscore/internal/config"
	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrInvalidCode          = errors.New("invalid verification code")
	ErrCodeExpired          = errors.New("verification code has expired")
	ErrAlreadyVerified      = errors.New("email is already verified")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
)

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Username    *string
	CompanyName *string
	UserType    string
}

// ClientInfo identifies where a login came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// TokenPair is returned on login, verification and refresh
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *models.User `json:"user"`
}

// AuthService handles accounts and sessions
type AuthService struct {
	users    UserStore
	sessions SessionStore
	authSvc  *auth.Service
	mailer   Mailer
	config   *config.Config
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	authSvc *auth.Service,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		authSvc:  authSvc,
		mailer:   mailer,
		config:   cfg,
	}
}

// Register creates an unverified account and emails a verification code
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !s.config.App.EnableRegistration {
		return nil, ErrRegistrationDisabled
	}

	email := validator.SanitizeEmail(in.Email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validator.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fullName := validator.SanitizeString(in.FullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if in.UserType != models.UserTypeShipper && in.UserType != models.UserTypeForwarder {
		return nil, fmt.Errorf("%w: user_type must be shipper or forwarder", ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := s.authSvc.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(s.config.Session.VerificationCodeTTL)

	user := &models.User{
		Email:                   email,
		Username:                trimmed(in.Username),
		FullName:                &fullName,
		CompanyName:             trimmed(in.CompanyName),
		PasswordHash:            passwordHash,
		UserType:                in.UserType,
		Role:                    models.RoleUser,
		IsActive:                true,
		VerificationCode:        &code,
		VerificationCodeExpires: &expires,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationCode(user.Email, code, s.config.Session.VerificationCodeTTL); err != nil {
		slog.Error("Failed to send verification code", "user_id", user.ID, "error", err)
	}

	slog.Info("User registered", "user_id", user.ID, "user_type", user.UserType)
	return user, nil
}

// VerifyCode confirms the email address and logs the user in
func (s *AuthService) VerifyCode(ctx context.Context, email, code string, client ClientInfo) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, validator.SanitizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if user.VerificationCode == nil ||
		subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(strings.TrimSpace(code))) != 1 {
		return nil, ErrInvalidCode
	}
	if user.VerificationCodeExpires == nil || time.Now().After(*user.VerificationCodeExpires) {
		return nil, ErrCodeExpired
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpires = nil

	if err := s.mailer.SendWelcomeEmail(user.Email, user.UserType); err != nil {
		slog.Warn("Failed to send welcome email", "user_id", user.ID, "error", err)
	}

	return s.issueTokens(ctx, user, client)
}

// ResendCode issues a fresh verification code. Unknown addresses are
// accepted silently so the endpoint does not reveal registered emails.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, validator.SanitizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return err
	}
	ttl := s.config.Session.VerificationCodeTTL
	if err := s.users.SetVerificationCode(ctx, user.ID, code, time.Now().Add(ttl)); err != nil {
		return err
	}
	return s.mailer.SendVerificationCode(user.Email, code, ttl)
}

// Login checks credentials and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, validator.SanitizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}

	return s.issueTokens(ctx, user, client)
}

// Refresh exchanges a refresh token for a new token pair. The old session is
// revoked so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	claims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, auth.ErrInvalidToken
	}
	if _, err := s.sessions.GetByJTI(ctx, claims.ID); err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.sessions.DeleteBySessionID(ctx, claims.SessionID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, client)
}

// Logout revokes both tokens of a session
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.DeleteBySessionID(ctx, sessionID)
}

// RequestPasswordReset emails a reset link. Unknown addresses are accepted
// silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, validator.SanitizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := auth.GenerateRandomToken(32)
	if err != nil {
		return err
	}
	ttl := s.config.Session.PasswordResetTTL
	if err := s.users.SetResetToken(ctx, user.ID, token, time.Now().Add(ttl)); err != nil {
		return err
	}
	return s.mailer.SendPasswordResetEmail(user.Email, token, ttl)
}

// ConfirmPasswordReset sets a new password and ends every session of the user
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := validator.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if user.ResetTokenExpires == nil || time.Now().After(*user.ResetTokenExpires) {
		return ErrInvalidResetToken
	}

	hash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.sessions.DeleteAllUserSessions(ctx, user.ID); err != nil {
		slog.Warn("Failed to revoke sessions after password reset", "user_id", user.ID, "error", err)
	}
	return nil
}

// Me returns the caller's account
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.authSvc.VerifyPassword(user.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	if err := validator.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := s.authSvc.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// issueTokens creates an access and a refresh token sharing one session id
// and stores a session row for each
func (s *AuthService) issueTokens(ctx context.Context, user *models.User, client ClientInfo) (*TokenPair, error) {
	identity := auth.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: uuid.New(),
	}

	access, err := s.authSvc.GenerateToken(identity)
	if err != nil {
		return nil, err
	}
	refresh, err := s.authSvc.GenerateRefreshToken(identity)
	if err != nil {
		return nil, err
	}

	for _, tok := range []struct {
		issued    *auth.IssuedToken
		tokenType string
	}{
		{access, auth.TokenTypeAccess},
		{refresh, auth.TokenTypeRefresh},
	} {
		session := &models.Session{
			UserID:    user.ID,
			SessionID: identity.SessionID,
			JTI:       tok.issued.JTI,
			TokenType: tok.tokenType,
			ExpiresAt: tok.issued.ExpiresAt,
			IPAddress: optional(client.IPAddress),
			UserAgent: optional(client.UserAgent),
		}
		if err := s.sessions.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	return &TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.JWT.Expiration.Seconds()),
		User:         user,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
