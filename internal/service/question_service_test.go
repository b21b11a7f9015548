package service

import (
	"context"
	"errors"
	"testing"

	"logiscore/internal/scoring"
)

func TestListActiveCategories(t *testing.T) {
	svc := NewQuestionService(&fakeQuestions{questions: testQuestions()})

	categories, err := svc.ListActiveCategories(context.Background())
	if err != nil {
		t.Fatalf("ListActiveCategories failed: %v", err)
	}
	want := []string{"responsiveness", "shipping", "documentation"}
	if len(categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(categories))
	}
	for i, id := range want {
		if categories[i].ID != id {
			t.Errorf("category %d: expected %s, got %s", i, id, categories[i].ID)
		}
	}
	if len(categories[0].Questions) != 2 {
		t.Errorf("expected 2 responsiveness questions, got %d", len(categories[0].Questions))
	}
}

func TestImportCatalog(t *testing.T) {
	defs := scoring.RatingDefinitions{1: "Poor", 4: "Excellent"}
	valid := func() []scoring.Category {
		return []scoring.Category{{
			ID:   "pricing",
			Name: "Pricing",
			Questions: []scoring.Question{
				{ID: "price_clarity", Text: "Invoices are clear", RatingDefinitions: defs},
			},
		}}
	}

	tests := []struct {
		name    string
		mutate  func([]scoring.Category) []scoring.Category
		wantErr bool
	}{
		{"valid", func(c []scoring.Category) []scoring.Category { return c }, false},
		{"empty", func([]scoring.Category) []scoring.Category { return nil }, true},
		{"category without name", func(c []scoring.Category) []scoring.Category { c[0].Name = ""; return c }, true},
		{"category without questions", func(c []scoring.Category) []scoring.Category { c[0].Questions = nil; return c }, true},
		{"duplicate question", func(c []scoring.Category) []scoring.Category {
			c[0].Questions = append(c[0].Questions, c[0].Questions[0])
			return c
		}, true},
		{"rating key out of range", func(c []scoring.Category) []scoring.Category {
			c[0].Questions[0].RatingDefinitions = scoring.RatingDefinitions{5: "Perfect"}
			return c
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeQuestions{}
			svc := NewQuestionService(store)

			_, err := svc.Import(context.Background(), tt.mutate(valid()), false)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				if store.imported != nil {
					t.Error("expected nothing imported")
				}
				return
			}
			if err != nil {
				t.Fatalf("Import failed: %v", err)
			}
			if len(store.imported) != 1 || store.imported[0].CategoryID != "pricing" || store.imported[0].CategoryName != "Pricing" {
				t.Errorf("expected flattened questions, got %+v", store.imported)
			}
		})
	}
}
