package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"logiscore/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `
	id, email, username, full_name, company_name, password_hash, user_type, role,
	subscription_tier, is_verified, is_active, verification_code, verification_code_expires,
	reset_token, reset_token_expires, last_login_at, created_at, updated_at
`

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and fills in ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, full_name, company_name, password_hash, user_type, role,
		                   subscription_tier, is_verified, is_active, verification_code, verification_code_expires,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = "free"
	}

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.FullName,
		user.CompanyName,
		user.PasswordHash,
		user.UserType,
		user.Role,
		user.SubscriptionTier,
		user.IsVerified,
		user.IsActive,
		user.VerificationCode,
		user.VerificationCodeExpires,
		now,
	)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByResetToken retrieves the user owning an unexpired reset token
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = $1 AND reset_token_expires > $2`,
		token, time.Now(),
	)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SetVerificationCode stores a fresh email verification code
func (r *UserRepository) SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error {
	return r.exec(ctx, "set verification code",
		`UPDATE users SET verification_code = $1, verification_code_expires = $2, updated_at = NOW() WHERE id = $3`,
		code, expires, userID,
	)
}

// MarkVerified marks the email as verified and clears the code
func (r *UserRepository) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	return r.exec(ctx, "verify user", `
		UPDATE users
		SET is_verified = TRUE, verification_code = NULL, verification_code_expires = NULL, updated_at = NOW()
		WHERE id = $1
	`, userID)
}

// SetResetToken stores a password reset token
func (r *UserRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	return r.exec(ctx, "set reset token",
		`UPDATE users SET reset_token = $1, reset_token_expires = $2, updated_at = NOW() WHERE id = $3`,
		token, expires, userID,
	)
}

// UpdatePassword sets a new password hash and clears any reset token
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return r.exec(ctx, "update password", `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE id = $2
	`, passwordHash, userID)
}

// UpdateLastLogin records a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	return r.exec(ctx, "update last login",
		`UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
}

// UpdateSubscriptionTier changes the user's plan
func (r *UserRepository) UpdateSubscriptionTier(ctx context.Context, userID uuid.UUID, tier string) error {
	return r.exec(ctx, "update subscription tier",
		`UPDATE users SET subscription_tier = $1, updated_at = NOW() WHERE id = $2`, tier, userID)
}

// ClearExpiredTokens removes expired verification codes and reset tokens
func (r *UserRepository) ClearExpiredTokens(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET verification_code = CASE WHEN verification_code_expires < NOW() THEN NULL ELSE verification_code END,
		    verification_code_expires = CASE WHEN verification_code_expires < NOW() THEN NULL ELSE verification_code_expires END,
		    reset_token = CASE WHEN reset_token_expires < NOW() THEN NULL ELSE reset_token END,
		    reset_token_expires = CASE WHEN reset_token_expires < NOW() THEN NULL ELSE reset_token_expires END
		WHERE verification_code_expires < NOW() OR reset_token_expires < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired tokens: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.CompanyName,
		&user.PasswordHash,
		&user.UserType,
		&user.Role,
		&user.SubscriptionTier,
		&user.IsVerified,
		&user.IsActive,
		&user.VerificationCode,
		&user.VerificationCodeExpires,
		&user.ResetToken,
		&user.ResetTokenExpires,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a postgres unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
