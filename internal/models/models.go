package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User types
const (
	UserTypeShipper   = "shipper"
	UserTypeForwarder = "forwarder"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account
type User struct {
	ID                      uuid.UUID  `json:"id" db:"id"`
	Email                   string     `json:"email" db:"email"`
	Username                *string    `json:"username,omitempty" db:"username"`
	FullName                *string    `json:"full_name,omitempty" db:"full_name"`
	CompanyName             *string    `json:"company_name,omitempty" db:"company_name"`
	PasswordHash            string     `json:"-" db:"password_hash"`
	UserType                string     `json:"user_type" db:"user_type"`
	Role                    string     `json:"role" db:"role"`
	SubscriptionTier        string     `json:"subscription_tier" db:"subscription_tier"`
	IsVerified              bool       `json:"is_verified" db:"is_verified"`
	IsActive                bool       `json:"is_active" db:"is_active"`
	VerificationCode        *string    `json:"-" db:"verification_code"`
	VerificationCodeExpires *time.Time `json:"-" db:"verification_code_expires"`
	ResetToken              *string    `json:"-" db:"reset_token"`
	ResetTokenExpires       *time.Time `json:"-" db:"reset_token_expires"`
	LastLoginAt             *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session represents one issued token. Access and refresh tokens issued
// together share a SessionID.
type Session struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	SessionID      uuid.UUID `json:"session_id" db:"session_id"`
	JTI            string    `json:"-" db:"jti"`
	TokenType      string    `json:"token_type" db:"token_type"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      *string   `json:"user_agent,omitempty" db:"user_agent"`
}

// Company is a freight forwarder that can be reviewed
type Company struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Website     *string   `json:"website,omitempty" db:"website"`
	LogoURL     *string   `json:"logo_url,omitempty" db:"logo_url"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CompanyListing is a company with its review rollup, as shown in lists
// and search results
type CompanyListing struct {
	Company
	Rating      *float64 `json:"rating"`
	ReviewCount int      `json:"review_count"`
}

// Branch is a location of a company
type Branch struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Review is a stored review. Scores are immutable once written.
type Review struct {
	ID                  uuid.UUID             `json:"id" db:"id"`
	CompanyID           uuid.UUID             `json:"company_id" db:"company_id"`
	BranchID            *uuid.UUID            `json:"branch_id,omitempty" db:"branch_id"`
	UserID              *uuid.UUID            `json:"user_id,omitempty" db:"user_id"`
	SealedSubmitter     *string               `json:"-" db:"sealed_submitter"`
	ReviewType          string                `json:"review_type" db:"review_type"`
	IsAnonymous         bool                  `json:"is_anonymous" db:"is_anonymous"`
	ReviewWeight        float64               `json:"review_weight" db:"review_weight"`
	AggregateRating     float64               `json:"aggregate_rating" db:"aggregate_rating"`
	WeightedRating      float64               `json:"weighted_rating" db:"weighted_rating"`
	TotalQuestionsRated int                   `json:"total_questions_rated" db:"total_questions_rated"`
	ReviewText          *string               `json:"review_text,omitempty" db:"review_text"`
	IdempotencyKey      *string               `json:"-" db:"idempotency_key"`
	IsActive            bool                  `json:"is_active" db:"is_active"`
	CreatedAt           time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at" db:"updated_at"`
	CategoryScores      []ReviewCategoryScore `json:"category_scores,omitempty"`
}

// ReviewCategoryScore is one rated question of a review with the catalog
// text captured at submission time
type ReviewCategoryScore struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ReviewID         uuid.UUID `json:"review_id" db:"review_id"`
	CategoryID       string    `json:"category_id" db:"category_id"`
	CategoryName     string    `json:"category_name" db:"category_name"`
	QuestionID       string    `json:"question_id" db:"question_id"`
	QuestionText     string    `json:"question_text" db:"question_text"`
	Rating           int       `json:"rating" db:"rating"`
	RatingDefinition string    `json:"rating_definition" db:"rating_definition"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Dispute statuses
const (
	DisputeStatusPending  = "pending"
	DisputeStatusResolved = "resolved"
	DisputeStatusRejected = "rejected"
)

// Dispute is a user report against a review
type Dispute struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ReviewID    uuid.UUID  `json:"review_id" db:"review_id"`
	ReportedBy  uuid.UUID  `json:"reported_by" db:"reported_by"`
	Reason      string     `json:"reason" db:"reason"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      string     `json:"status" db:"status"`
	AdminNotes  *string    `json:"admin_notes,omitempty" db:"admin_notes"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DashboardStats are the counters shown on the admin dashboard
type DashboardStats struct {
	Users           int `json:"users"`
	Companies       int `json:"companies"`
	ActiveReviews   int `json:"active_reviews"`
	InactiveReviews int `json:"inactive_reviews"`
	PendingDisputes int `json:"pending_disputes"`
}

// SubscriptionPlan is a purchasable plan
type SubscriptionPlan struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Price        int      `json:"price" yaml:"price"`
	Currency     string   `json:"currency" yaml:"currency"`
	BillingCycle string   `json:"billing_cycle" yaml:"billing_cycle"`
	UserType     string   `json:"user_type" yaml:"user_type"`
	IsPopular    bool     `json:"is_popular" yaml:"is_popular"`
	Features     []string `json:"features" yaml:"features"`
}

// Tier returns the subscription tier stored on the user, e.g. "shipper_premium"
func (p SubscriptionPlan) Tier() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.Name)), " ", "_")
}
