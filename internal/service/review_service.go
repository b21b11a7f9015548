package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

// SubmitReviewInput is one review submission. UserID is nil for callers
// that are not logged in.
type SubmitReviewInput struct {
	CompanyID       uuid.UUID
	BranchID        *uuid.UUID
	UserID          *uuid.UUID
	ReviewType      string
	IsAnonymous     bool
	CategoryRatings []scoring.CategoryAnswer
	ReviewText      *string
	IdempotencyKey  string
}

// ReviewService validates, scores and stores reviews and computes company
// rating summaries
type ReviewService struct {
	reviews   ReviewStore
	companies CompanyStore
	questions *QuestionService
	policy    scoring.WeightPolicy
	sealer    Sealer
}

// NewReviewService creates a new review service. sealer may be nil, in which
// case anonymous reviews keep no link to their author at all.
func NewReviewService(
	reviews ReviewStore,
	companies CompanyStore,
	questions *QuestionService,
	policy scoring.WeightPolicy,
	sealer Sealer,
) *ReviewService {
	if policy == nil {
		policy = scoring.DefaultPolicy
	}
	return &ReviewService{
		reviews:   reviews,
		companies: companies,
		questions: questions,
		policy:    policy,
		sealer:    sealer,
	}
}

// Submit validates and stores a review. The returned bool is false when the
// idempotency key was already used and the stored review is returned as is.
func (s *ReviewService) Submit(ctx context.Context, in SubmitReviewInput) (*models.Review, bool, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := s.reviews.GetByIdempotencyKey(ctx, in.CompanyID, key)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repository.ErrReviewNotFound) {
			return nil, false, err
		}
	}

	if err := s.checkTarget(ctx, in.CompanyID, in.BranchID); err != nil {
		return nil, false, err
	}

	reviewType, err := scoring.ParseReviewType(in.ReviewType)
	if err != nil {
		return nil, false, err
	}

	catalog, err := s.questions.Catalog(ctx)
	if err != nil {
		return nil, false, err
	}

	// Without an account there is nobody to vouch for the review
	anonymous := in.IsAnonymous || in.UserID == nil

	result, err := scoring.Aggregate(in.CategoryRatings, catalog, s.policy, anonymous)
	if err != nil {
		return nil, false, err
	}

	review := &models.Review{
		CompanyID:           in.CompanyID,
		BranchID:            in.BranchID,
		ReviewType:          string(reviewType),
		IsAnonymous:         anonymous,
		ReviewWeight:        result.ReviewWeight,
		AggregateRating:     result.AggregateRating,
		WeightedRating:      result.WeightedRating,
		TotalQuestionsRated: result.TotalQuestionsRated,
		ReviewText:          trimmed(in.ReviewText),
		CategoryScores:      make([]models.ReviewCategoryScore, 0, len(result.Scores)),
	}
	if key != "" {
		review.IdempotencyKey = &key
	}

	if in.UserID != nil {
		if anonymous {
			if s.sealer != nil {
				sealed, err := s.sealer.Seal(ctx, *in.UserID)
				if err != nil {
					return nil, false, fmt.Errorf("%w: seal submitter: %v", scoring.ErrPersistenceFailure, err)
				}
				review.SealedSubmitter = &sealed
			}
		} else {
			review.UserID = in.UserID
		}
	}

	for _, sc := range result.Scores {
		review.CategoryScores = append(review.CategoryScores, models.ReviewCategoryScore{
			CategoryID:       sc.CategoryID,
			CategoryName:     sc.CategoryName,
			QuestionID:       sc.QuestionID,
			QuestionText:     sc.QuestionText,
			Rating:           sc.Rating,
			RatingDefinition: sc.RatingDefinition,
		})
	}

	if err := s.reviews.CreateWithScores(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			// A concurrent request with the same key won the insert
			existing, getErr := s.reviews.GetByIdempotencyKey(ctx, in.CompanyID, key)
			if getErr != nil {
				return nil, false, fmt.Errorf("%w: %v", scoring.ErrPersistenceFailure, getErr)
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	slog.Info("Review submitted",
		"review_id", review.ID,
		"company_id", review.CompanyID,
		"anonymous", review.IsAnonymous,
		"questions_rated", review.TotalQuestionsRated,
	)
	return review, true, nil
}

// checkTarget verifies that the company is active and that the optional
// branch is an active branch of that company
func (s *ReviewService) checkTarget(ctx context.Context, companyID uuid.UUID, branchID *uuid.UUID) error {
	if _, err := s.activeCompany(ctx, companyID); err != nil {
		return err
	}
	if branchID == nil {
		return nil
	}

	branch, err := s.companies.GetBranch(ctx, *branchID)
	if errors.Is(err, repository.ErrBranchNotFound) {
		return fmt.Errorf("%w: branch %s", scoring.ErrNotFound, branchID)
	}
	if err != nil {
		return err
	}
	if !branch.IsActive || branch.CompanyID != companyID {
		return fmt.Errorf("%w: branch %s", scoring.ErrNotFound, branchID)
	}
	return nil
}

func (s *ReviewService) activeCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCompanyNotFound) {
		return nil, fmt.Errorf("%w: company %s", scoring.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, fmt.Errorf("%w: company %s", scoring.ErrNotFound, id)
	}
	return company, nil
}

// Summary computes the rating rollup of a company's active reviews
func (s *ReviewService) Summary(ctx context.Context, companyID uuid.UUID) (*scoring.Summary, error) {
	if _, err := s.activeCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.summarize(ctx, companyID)
}

func (s *ReviewService) summarize(ctx context.Context, companyID uuid.UUID) (*scoring.Summary, error) {
	totals, categoryTotals, err := s.reviews.SummaryTotals(ctx, companyID)
	if err != nil {
		return nil, err
	}

	categories, err := s.questions.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	return scoring.Summarize(totals, categoryTotals, categories), nil
}

// Get returns an active review with its scores
func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "review", id)
	}
	if !review.IsActive {
		return nil, fmt.Errorf("%w: review %s", scoring.ErrNotFound, id)
	}
	return review, nil
}

// ListByCompany returns a company's active reviews, newest first
func (s *ReviewService) ListByCompany(ctx context.Context, companyID uuid.UUID, skip, limit int) ([]models.Review, error) {
	if _, err := s.activeCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.reviews.ListByCompany(ctx, companyID, skip, limit)
}

// ListAll returns all reviews including deactivated ones
func (s *ReviewService) ListAll(ctx context.Context, skip, limit int) ([]models.Review, error) {
	return s.reviews.List(ctx, skip, limit)
}

// Deactivate hides a review from summaries. Its rows stay in place.
func (s *ReviewService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.reviews.Deactivate(ctx, id); err != nil {
		return notFound(err, "review", id)
	}
	slog.Info("Review deactivated", "review_id", id)
	return nil
}

// Delete removes a review and its category scores
func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.reviews.Delete(ctx, id); err != nil {
		return notFound(err, "review", id)
	}
	slog.Info("Review deleted", "review_id", id)
	return nil
}

// notFound translates repository not-found errors into scoring.ErrNotFound
func notFound(err error, kind string, id uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound),
		errors.Is(err, repository.ErrCompanyNotFound),
		errors.Is(err, repository.ErrBranchNotFound),
		errors.Is(err, repository.ErrDisputeNotFound):
		return fmt.Errorf("%w: %s %s", scoring.ErrNotFound, kind, id)
	}
	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
