package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"logiscore/internal/database"
	"logiscore/internal/models"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateIdempotencyKey means a review with the same company and
	// idempotency key already exists
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

const reviewColumns = `
	id, company_id, branch_id, user_id, sealed_submitter, review_type, is_anonymous, review_weight,
	aggregate_rating, weighted_rating, total_questions_rated, review_text, idempotency_key,
	is_active, created_at, updated_at
`

// ReviewRepository stores reviews and their category scores
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateWithScores writes the review row and every score row in one
// transaction. Either all rows become visible or none do.
func (r *ReviewRepository) CreateWithScores(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := time.Now()

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, company_id, branch_id, user_id, sealed_submitter, review_type, is_anonymous,
			                     review_weight, aggregate_rating, weighted_rating, total_questions_rated,
			                     review_text, idempotency_key, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, $14, $14)
		`,
			review.ID,
			review.CompanyID,
			review.BranchID,
			review.UserID,
			review.SealedSubmitter,
			review.ReviewType,
			review.IsAnonymous,
			review.ReviewWeight,
			review.AggregateRating,
			review.WeightedRating,
			review.TotalQuestionsRated,
			review.ReviewText,
			review.IdempotencyKey,
			now,
		)
		if isUniqueViolation(err) && review.IdempotencyKey != nil {
			return ErrDuplicateIdempotencyKey
		}
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO review_category_scores (id, review_id, category_id, category_name, question_id,
			                                    question_text, rating, rating_definition, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`)
		if err != nil {
			return fmt.Errorf("prepare score insert: %w", err)
		}
		defer stmt.Close()

		for i := range review.CategoryScores {
			s := &review.CategoryScores[i]
			s.ID = uuid.New()
			s.ReviewID = review.ID
			s.CreatedAt = now
			if _, err := stmt.ExecContext(ctx,
				s.ID, s.ReviewID, s.CategoryID, s.CategoryName, s.QuestionID,
				s.QuestionText, s.Rating, s.RatingDefinition, s.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert score for %s: %w", s.QuestionID, err)
			}
		}
		return nil
	})

	if errors.Is(err, ErrDuplicateIdempotencyKey) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", scoring.ErrPersistenceFailure, err)
	}

	review.IsActive = true
	review.CreatedAt = now
	review.UpdatedAt = now
	return nil
}

// GetByID returns a review with its category scores
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.CategoryScores, err = r.scores(ctx, review.ID); err != nil {
		return nil, err
	}
	return review, nil
}

// GetByIdempotencyKey returns the review a key was first used for
func (r *ReviewRepository) GetByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*models.Review, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM reviews WHERE company_id = $1 AND idempotency_key = $2`, companyID, key,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review by idempotency key: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ReviewRepository) scores(ctx context.Context, reviewID uuid.UUID) ([]models.ReviewCategoryScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, review_id, category_id, category_name, question_id, question_text, rating, rating_definition, created_at
		FROM review_category_scores
		WHERE review_id = $1
		ORDER BY created_at, category_id, question_id
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category scores: %w", err)
	}
	defer rows.Close()

	scores := []models.ReviewCategoryScore{}
	for rows.Next() {
		var s models.ReviewCategoryScore
		if err := rows.Scan(
			&s.ID,
			&s.ReviewID,
			&s.CategoryID,
			&s.CategoryName,
			&s.QuestionID,
			&s.QuestionText,
			&s.Rating,
			&s.RatingDefinition,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ListByCompany returns a company's active reviews, newest first
func (r *ReviewRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, skip, limit int) ([]models.Review, error) {
	return r.list(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, companyID, limit, skip)
}

// List returns all reviews including inactive ones, newest first
func (r *ReviewRepository) List(ctx context.Context, skip, limit int) ([]models.Review, error) {
	return r.list(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, skip)
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

// Deactivate hides a review from summaries and listings
func (r *ReviewRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate review: %w", err)
	}
	return expectOne(result, ErrReviewNotFound)
}

// Delete removes a review. Its category scores cascade.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectOne(result, ErrReviewNotFound)
}

// SummaryTotals reads the review and category sums for a company from one
// consistent snapshot
func (r *ReviewRepository) SummaryTotals(ctx context.Context, companyID uuid.UUID) (scoring.ReviewTotals, []scoring.CategoryTotals, error) {
	var totals scoring.ReviewTotals
	var categories []scoring.CategoryTotals

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return totals, nil, fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(aggregate_rating), 0),
		       COALESCE(SUM(weighted_rating), 0),
		       COALESCE(SUM(review_weight), 0)
		FROM reviews
		WHERE company_id = $1 AND is_active = TRUE
	`, companyID).Scan(&totals.Count, &totals.SumAggregate, &totals.SumWeighted, &totals.SumWeight)
	if err != nil {
		return totals, nil, fmt.Errorf("failed to sum reviews: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT s.category_id,
		       (ARRAY_AGG(s.category_name ORDER BY s.created_at DESC))[1],
		       SUM(s.rating),
		       COUNT(*)
		FROM review_category_scores s
		JOIN reviews rv ON rv.id = s.review_id
		WHERE rv.company_id = $1 AND rv.is_active = TRUE
		GROUP BY s.category_id
		ORDER BY s.category_id
	`, companyID)
	if err != nil {
		return totals, nil, fmt.Errorf("failed to sum category scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ct scoring.CategoryTotals
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &ct.Sum, &ct.Count); err != nil {
			return totals, nil, fmt.Errorf("failed to scan category totals: %w", err)
		}
		categories = append(categories, ct)
	}
	if err := rows.Err(); err != nil {
		return totals, nil, err
	}

	return totals, categories, nil
}

// CountByActive returns the number of active and inactive reviews
func (r *ReviewRepository) CountByActive(ctx context.Context) (active, inactive int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_active), COUNT(*) FILTER (WHERE NOT is_active)
		FROM reviews
	`).Scan(&active, &inactive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return active, inactive, nil
}

func scanReview(row rowScanner) (*models.Review, error) {
	review := &models.Review{}
	err := row.Scan(
		&review.ID,
		&review.CompanyID,
		&review.BranchID,
		&review.UserID,
		&review.SealedSubmitter,
		&review.ReviewType,
		&review.IsAnonymous,
		&review.ReviewWeight,
		&review.AggregateRating,
		&review.WeightedRating,
		&review.TotalQuestionsRated,
		&review.ReviewText,
		&review.IdempotencyKey,
		&review.IsActive,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

func expectOne(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
