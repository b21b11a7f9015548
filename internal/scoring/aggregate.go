package scoring

import (
	"fmt"
	"strings"
)

// ReviewType classifies the shipment a review is about
type ReviewType string

const (
	ReviewTypeGeneral     ReviewType = "general"
	ReviewTypeImport      ReviewType = "import"
	ReviewTypeExport      ReviewType = "export"
	ReviewTypeDomestic    ReviewType = "domestic"
	ReviewTypeWarehousing ReviewType = "warehousing"
)

// ParseReviewType normalizes s. An empty string means general.
func ParseReviewType(s string) (ReviewType, error) {
	switch t := ReviewType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ReviewTypeGeneral, nil
	case ReviewTypeGeneral, ReviewTypeImport, ReviewTypeExport, ReviewTypeDomestic, ReviewTypeWarehousing:
		return t, nil
	default:
		return "", invalid(ErrInvalidReviewType, "review_type", "%q is not one of general, import, export, domestic, warehousing", s)
	}
}

// QuestionAnswer is one submitted rating
type QuestionAnswer struct {
	QuestionID string `json:"question_id"`
	Rating     int    `json:"rating"`
}

// CategoryAnswer groups submitted ratings by category
type CategoryAnswer struct {
	CategoryID string           `json:"category_id"`
	Questions  []QuestionAnswer `json:"questions"`
}

// ScoredAnswer is a rated answer with the catalog text captured at
// submission time. Later catalog edits never change it.
type ScoredAnswer struct {
	CategoryID       string
	CategoryName     string
	QuestionID       string
	QuestionText     string
	Rating           int
	RatingDefinition string
}

// Result is the outcome of aggregating one submission
type Result struct {
	AggregateRating     float64
	WeightedRating      float64
	ReviewWeight        float64
	TotalQuestionsRated int
	Scores              []ScoredAnswer
}

// Validate checks every answer against the catalog. It returns a
// *ValidationError for the first problem found.
func Validate(answers []CategoryAnswer, catalog *Catalog) error {
	seen := make(map[string]struct{})
	rated := 0

	for ci, group := range answers {
		for qi, answer := range group.Questions {
			field := fmt.Sprintf("category_ratings[%d].questions[%d]", ci, qi)

			q, ok := catalog.Lookup(answer.QuestionID)
			if !ok {
				return invalid(ErrUnknownQuestion, field+".question_id", "question %q is not in the active catalog", answer.QuestionID)
			}
			if group.CategoryID != "" && group.CategoryID != q.CategoryID {
				return invalid(ErrUnknownQuestion, field+".question_id", "question %q does not belong to category %q", answer.QuestionID, group.CategoryID)
			}
			if _, dup := seen[answer.QuestionID]; dup {
				return invalid(ErrDuplicateQuestion, field+".question_id", "question %q answered more than once", answer.QuestionID)
			}
			seen[answer.QuestionID] = struct{}{}

			if answer.Rating < MinRating || answer.Rating > MaxRating {
				return invalid(ErrInvalidRating, field+".rating", "rating %d is outside %d..%d", answer.Rating, MinRating, MaxRating)
			}
			if answer.Rating != NotRated {
				rated++
			}
		}
	}

	if rated == 0 {
		return invalid(ErrEmptySubmission, "category_ratings", "no question has a rating above %d", NotRated)
	}
	return nil
}

// Aggregate validates answers and computes the review scores. Unrated
// answers are dropped. The weight comes from policy and is fixed here.
func Aggregate(answers []CategoryAnswer, catalog *Catalog, policy WeightPolicy, isAnonymous bool) (*Result, error) {
	if err := Validate(answers, catalog); err != nil {
		return nil, err
	}

	var scores []ScoredAnswer
	sum := 0
	for _, group := range answers {
		for _, answer := range group.Questions {
			if answer.Rating == NotRated {
				continue
			}
			q, _ := catalog.Lookup(answer.QuestionID)
			scores = append(scores, ScoredAnswer{
				CategoryID:       q.CategoryID,
				CategoryName:     q.CategoryName,
				QuestionID:       q.ID,
				QuestionText:     q.Text,
				Rating:           answer.Rating,
				RatingDefinition: q.RatingDefinitions[answer.Rating],
			})
			sum += answer.Rating
		}
	}

	// Validate guarantees at least one rated answer
	mean := float64(sum) / float64(len(scores))
	weight := policy.Weight(isAnonymous)

	return &Result{
		AggregateRating:     mean,
		WeightedRating:      mean * weight,
		ReviewWeight:        weight,
		TotalQuestionsRated: len(scores),
		Scores:              scores,
	}, nil
}
