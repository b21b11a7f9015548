package service

import (
	"context"
	"errors"
	"time"

	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

// ErrInvalidInput marks request data rejected before any write
var ErrInvalidInput = errors.New("invalid input")

// QuestionStore is the persistence the question catalog needs
type QuestionStore interface {
	ListActive(ctx context.Context) ([]scoring.Question, error)
	Import(ctx context.Context, questions []scoring.Question, deactivateMissing bool) (*repository.ImportResult, error)
}

// CompanyStore is the persistence for companies and branches
type CompanyStore interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, f repository.ListFilter) ([]models.CompanyListing, error)
	Suggestions(ctx context.Context, q string, limit int) ([]string, error)
	Count(ctx context.Context) (int, error)
	CreateBranch(ctx context.Context, branch *models.Branch) error
	GetBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	ListActiveBranches(ctx context.Context, companyID uuid.UUID) ([]models.Branch, error)
}

// ReviewStore is the persistence for reviews and their scores
type ReviewStore interface {
	CreateWithScores(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	GetByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*models.Review, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, skip, limit int) ([]models.Review, error)
	List(ctx context.Context, skip, limit int) ([]models.Review, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	SummaryTotals(ctx context.Context, companyID uuid.UUID) (scoring.ReviewTotals, []scoring.CategoryTotals, error)
	CountByActive(ctx context.Context) (active, inactive int, err error)
}

// UserStore is the persistence for accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdateSubscriptionTier(ctx context.Context, userID uuid.UUID, tier string) error
	Count(ctx context.Context) (int, error)
}

// SessionStore is the persistence for issued tokens
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByJTI(ctx context.Context, jti string) (*models.Session, error)
	DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

// DisputeStore is the persistence for review disputes
type DisputeStore interface {
	Create(ctx context.Context, d *models.Dispute) error
	List(ctx context.Context, status string) ([]models.Dispute, error)
	Resolve(ctx context.Context, id uuid.UUID, status string, notes *string) error
	CountPending(ctx context.Context) (int, error)
}

// Sealer encrypts the author of an anonymous review
type Sealer interface {
	Seal(ctx context.Context, userID uuid.UUID) (string, error)
}

// Mailer sends account emails
type Mailer interface {
	SendVerificationCode(to, code string, ttl time.Duration) error
	SendPasswordResetEmail(to, token string, ttl time.Duration) error
	SendWelcomeEmail(to, userType string) error
}
