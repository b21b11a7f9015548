package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"

	"logiscore/internal/database"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrQuestionReferenced is returned when an import would change the text of
// a question that stored reviews already point at
var ErrQuestionReferenced = errors.New("question is referenced by reviews and cannot be changed; use a new question id")

// ImportResult counts what a catalog import changed
type ImportResult struct {
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Unchanged   int `json:"unchanged"`
	Deactivated int `json:"deactivated"`
}

// QuestionRepository reads and maintains the question catalog
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListActive returns active questions in catalog order
func (r *QuestionRepository) ListActive(ctx context.Context) ([]scoring.Question, error) {
	query := `
		SELECT question_id, category_id, category_name, question_text, rating_definitions
		FROM review_questions
		WHERE is_active = TRUE
		ORDER BY position, created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []scoring.Question{}
	for rows.Next() {
		var q scoring.Question
		if err := rows.Scan(&q.ID, &q.CategoryID, &q.CategoryName, &q.Text, &q.RatingDefinitions); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

type storedQuestion struct {
	scoring.Question
	active     bool
	position   int
	referenced bool
}

// Import upserts questions by question id in one transaction. Position
// follows the slice order. With deactivateMissing, active questions absent
// from the slice are deactivated.
func (r *QuestionRepository) Import(ctx context.Context, questions []scoring.Question, deactivateMissing bool) (*ImportResult, error) {
	result := &ImportResult{}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		existing, err := loadStoredQuestions(ctx, tx)
		if err != nil {
			return err
		}

		seen := make([]string, 0, len(questions))
		for i, q := range questions {
			seen = append(seen, q.ID)
			position := i + 1

			old, ok := existing[q.ID]
			if !ok {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO review_questions (id, category_id, category_name, question_id, question_text, rating_definitions, position, is_active)
					VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
				`, uuid.New(), q.CategoryID, q.CategoryName, q.ID, q.Text, q.RatingDefinitions, position); err != nil {
					return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
				}
				result.Created++
				continue
			}

			contentChanged := old.Text != q.Text || !maps.Equal(old.RatingDefinitions, q.RatingDefinitions)
			if contentChanged && old.referenced {
				return fmt.Errorf("%w: %s", ErrQuestionReferenced, q.ID)
			}

			if !contentChanged && old.active && old.position == position &&
				old.CategoryID == q.CategoryID && old.CategoryName == q.CategoryName {
				result.Unchanged++
				continue
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE review_questions
				SET category_id = $1, category_name = $2, question_text = $3, rating_definitions = $4,
				    position = $5, is_active = TRUE, updated_at = NOW()
				WHERE question_id = $6
			`, q.CategoryID, q.CategoryName, q.Text, q.RatingDefinitions, position, q.ID); err != nil {
				return fmt.Errorf("failed to update question %s: %w", q.ID, err)
			}
			result.Updated++
		}

		if deactivateMissing {
			res, err := tx.ExecContext(ctx, `
				UPDATE review_questions SET is_active = FALSE, updated_at = NOW()
				WHERE is_active = TRUE AND NOT (question_id = ANY($1))
			`, pq.Array(seen))
			if err != nil {
				return fmt.Errorf("failed to deactivate questions: %w", err)
			}
			n, _ := res.RowsAffected()
			result.Deactivated = int(n)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func loadStoredQuestions(ctx context.Context, tx *sql.Tx) (map[string]storedQuestion, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT q.question_id, q.category_id, q.category_name, q.question_text, q.rating_definitions,
		       q.is_active, q.position,
		       EXISTS (SELECT 1 FROM review_category_scores s WHERE s.question_id = q.question_id)
		FROM review_questions q
		FOR UPDATE OF q
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]storedQuestion)
	for rows.Next() {
		var sq storedQuestion
		if err := rows.Scan(
			&sq.ID,
			&sq.CategoryID,
			&sq.CategoryName,
			&sq.Text,
			&sq.RatingDefinitions,
			&sq.active,
			&sq.position,
			&sq.referenced,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		stored[sq.ID] = sq
	}
	return stored, rows.Err()
}
