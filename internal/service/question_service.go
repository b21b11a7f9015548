package service

import (
	"context"
	"fmt"
	"strings"

	"logiscore/internal/repository"
	"logiscore/internal/scoring"
)

// QuestionService serves the active question catalog
type QuestionService struct {
	questions QuestionStore
}

// NewQuestionService creates a new question service
func NewQuestionService(questions QuestionStore) *QuestionService {
	return &QuestionService{questions: questions}
}

// ListActiveCategories returns the active catalog grouped by category in
// catalog order
func (s *QuestionService) ListActiveCategories(ctx context.Context) ([]scoring.Category, error) {
	questions, err := s.questions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.GroupByCategory(questions), nil
}

// Catalog returns a lookup over the active questions
func (s *QuestionService) Catalog(ctx context.Context) (*scoring.Catalog, error) {
	questions, err := s.questions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.NewCatalog(questions), nil
}

// Import replaces the catalog content with categories. Question ids must be
// unique and every rating definition key must be a valid rating.
func (s *QuestionService) Import(ctx context.Context, categories []scoring.Category, deactivateMissing bool) (*repository.ImportResult, error) {
	if err := validateCatalog(categories); err != nil {
		return nil, err
	}
	return s.questions.Import(ctx, scoring.Flatten(categories), deactivateMissing)
}

func validateCatalog(categories []scoring.Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("%w: catalog has no categories", ErrInvalidInput)
	}

	seenCategories := make(map[string]bool)
	seenQuestions := make(map[string]bool)
	for _, c := range categories {
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: category needs an id and a name", ErrInvalidInput)
		}
		if seenCategories[c.ID] {
			return fmt.Errorf("%w: category %q listed twice", ErrInvalidInput, c.ID)
		}
		seenCategories[c.ID] = true

		if len(c.Questions) == 0 {
			return fmt.Errorf("%w: category %q has no questions", ErrInvalidInput, c.ID)
		}
		for _, q := range c.Questions {
			if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Text) == "" {
				return fmt.Errorf("%w: question in %q needs an id and text", ErrInvalidInput, c.ID)
			}
			if seenQuestions[q.ID] {
				return fmt.Errorf("%w: question %q listed twice", ErrInvalidInput, q.ID)
			}
			seenQuestions[q.ID] = true

			for _, v := range q.RatingDefinitions.Values() {
				if v < scoring.MinRating || v > scoring.MaxRating {
					return fmt.Errorf("%w: question %q defines rating %d outside %d..%d",
						ErrInvalidInput, q.ID, v, scoring.MinRating, scoring.MaxRating)
				}
			}
		}
	}
	return nil
}
