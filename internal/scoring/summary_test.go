package scoring

import "testing"

var summaryCatalog = []Category{
	{ID: "responsiveness", Name: "Responsiveness"},
	{ID: "documentation", Name: "Documentation"},
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(ReviewTotals{}, nil, summaryCatalog)

	if s.ReviewCount != 0 {
		t.Errorf("expected 0 reviews, got %d", s.ReviewCount)
	}
	if s.OverallRating != nil {
		t.Errorf("expected empty overall, got %v", *s.OverallRating)
	}
	if s.WeightedOverallRating != nil {
		t.Errorf("expected empty weighted overall, got %v", *s.WeightedOverallRating)
	}
	if len(s.Categories) != 2 {
		t.Fatalf("expected every catalog category listed, got %d", len(s.Categories))
	}
	for _, c := range s.Categories {
		if c.AverageRating != nil {
			t.Errorf("category %s should be empty, got %v", c.CategoryID, *c.AverageRating)
		}
		if v, ok := s.PerCategory[c.CategoryID]; !ok || v != nil {
			t.Errorf("per_category[%s] should be present and nil", c.CategoryID)
		}
	}
}

func TestSummarizeCategoryAverage(t *testing.T) {
	// two reviews rated responsiveness 4 and 2
	totals := ReviewTotals{Count: 2, SumAggregate: 4 + 2, SumWeighted: 4 + 1, SumWeight: 1.5}
	categories := []CategoryTotals{
		{CategoryID: "responsiveness", CategoryName: "Responsiveness", Sum: 6, Count: 2},
	}

	s := Summarize(totals, categories, summaryCatalog)

	got, ok := s.Category("responsiveness")
	if !ok || got != 3.0 {
		t.Errorf("expected responsiveness 3.0, got %v (ok=%v)", got, ok)
	}
	if _, ok := s.Category("documentation"); ok {
		t.Error("documentation has no ratings and should be empty, not zero")
	}
	if s.OverallRating == nil || *s.OverallRating != 3.0 {
		t.Errorf("expected overall 3.0, got %v", s.OverallRating)
	}
	if s.WeightedOverallRating == nil || *s.WeightedOverallRating != 5.0/1.5 {
		t.Errorf("unexpected weighted overall %v", s.WeightedOverallRating)
	}
	if s.ReviewCount != 2 {
		t.Errorf("expected review count 2, got %d", s.ReviewCount)
	}
	if s.Categories[0].RatingCount != 2 {
		t.Errorf("expected 2 ratings for responsiveness, got %d", s.Categories[0].RatingCount)
	}
}

func TestSummarizeRetiredCategoriesFollowCatalog(t *testing.T) {
	categories := []CategoryTotals{
		{CategoryID: "zeta", CategoryName: "Zeta", Sum: 3, Count: 1},
		{CategoryID: "legacy", CategoryName: "Legacy", Sum: 8, Count: 2},
		{CategoryID: "documentation", CategoryName: "Documentation", Sum: 1, Count: 1},
	}

	s := Summarize(ReviewTotals{Count: 1, SumAggregate: 2, SumWeighted: 2, SumWeight: 1}, categories, summaryCatalog)

	order := []string{"responsiveness", "documentation", "legacy", "zeta"}
	if len(s.Categories) != len(order) {
		t.Fatalf("expected %d categories, got %d", len(order), len(s.Categories))
	}
	for i, id := range order {
		if s.Categories[i].CategoryID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, s.Categories[i].CategoryID)
		}
	}
	if v, _ := s.Category("legacy"); v != 4.0 {
		t.Errorf("expected legacy average 4.0, got %v", v)
	}
}
