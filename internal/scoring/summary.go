package scoring

import "sort"

// ReviewTotals are the sums over a company's active reviews
type ReviewTotals struct {
	Count        int
	SumAggregate float64
	SumWeighted  float64
	SumWeight    float64
}

// CategoryTotals are the rating sums for one category across a company's
// active reviews
type CategoryTotals struct {
	CategoryID   string
	CategoryName string
	Sum          int
	Count        int
}

// CategoryScore is the rollup for one category. AverageRating is nil when
// no review rated the category.
type CategoryScore struct {
	CategoryID    string   `json:"category_id"`
	CategoryName  string   `json:"category_name"`
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
}

// Summary is the read-time rollup of a company's active reviews
type Summary struct {
	OverallRating         *float64            `json:"overall_rating"`
	WeightedOverallRating *float64            `json:"weighted_overall_rating"`
	ReviewCount           int                 `json:"review_count"`
	PerCategory           map[string]*float64 `json:"per_category"`
	Categories            []CategoryScore     `json:"categories"`
}

// Summarize builds a summary. Overall is the plain mean of review aggregate
// ratings; WeightedOverall divides the weighted sum by the total weight.
// Every catalog category is listed in catalog order, followed by any
// retired categories that still have ratings.
func Summarize(totals ReviewTotals, categoryTotals []CategoryTotals, catalog []Category) *Summary {
	s := &Summary{
		ReviewCount: totals.Count,
		PerCategory: make(map[string]*float64),
		Categories:  make([]CategoryScore, 0, len(catalog)),
	}

	if totals.Count > 0 {
		s.OverallRating = ptr(totals.SumAggregate / float64(totals.Count))
		if totals.SumWeight > 0 {
			s.WeightedOverallRating = ptr(totals.SumWeighted / totals.SumWeight)
		}
	}

	byID := make(map[string]CategoryTotals, len(categoryTotals))
	for _, ct := range categoryTotals {
		byID[ct.CategoryID] = ct
	}

	add := func(id, name string) {
		score := CategoryScore{CategoryID: id, CategoryName: name}
		if ct, ok := byID[id]; ok && ct.Count > 0 {
			score.AverageRating = ptr(float64(ct.Sum) / float64(ct.Count))
			score.RatingCount = ct.Count
		}
		s.PerCategory[id] = score.AverageRating
		s.Categories = append(s.Categories, score)
	}

	listed := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		listed[c.ID] = true
		add(c.ID, c.Name)
	}

	var retired []CategoryTotals
	for _, ct := range categoryTotals {
		if !listed[ct.CategoryID] {
			retired = append(retired, ct)
		}
	}
	sort.Slice(retired, func(i, j int) bool { return retired[i].CategoryID < retired[j].CategoryID })
	for _, ct := range retired {
		add(ct.CategoryID, ct.CategoryName)
	}

	return s
}

// Category returns the average for a category id and whether it has data
func (s *Summary) Category(id string) (float64, bool) {
	v := s.PerCategory[id]
	if v == nil {
		return 0, false
	}
	return *v, true
}

func ptr(f float64) *float64 {
	return &f
}
