package service

import (
	"context"
	"errors"
	"testing"

	"logiscore/internal/models"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

func TestCompanyProfile(t *testing.T) {
	f := newReviewFixture(t, nil)
	companies := NewCompanyService(f.companies, f.svc)
	ctx := context.Background()

	branch, err := companies.CreateBranch(ctx, f.company.ID, CreateBranchInput{Name: "Rotterdam", Location: " NL "})
	if err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}
	if branch.Location != "NL" {
		t.Errorf("expected trimmed location, got %q", branch.Location)
	}
	if _, _, err := f.svc.Submit(ctx, SubmitReviewInput{
		CompanyID:       f.company.ID,
		BranchID:        &branch.ID,
		CategoryRatings: answers("resp_time", 4, "ship_ontime", 3),
	}); err != nil {
		t.Fatal(err)
	}

	profile, err := companies.Profile(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Company.Name != "Acme Freight" || len(profile.Branches) != 1 {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.Summary.ReviewCount != 1 || *profile.Summary.OverallRating != 3.5 {
		t.Errorf("unexpected summary %+v", profile.Summary)
	}

	if _, err := companies.Profile(ctx, uuid.New()); !errors.Is(err, scoring.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := companies.CreateBranch(ctx, uuid.New(), CreateBranchInput{Name: "X", Location: "Y"}); !errors.Is(err, scoring.ErrNotFound) {
		t.Errorf("expected ErrNotFound for branch of unknown company, got %v", err)
	}
	if _, err := companies.CreateBranch(ctx, f.company.ID, CreateBranchInput{Name: "X"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompanySearch(t *testing.T) {
	f := newReviewFixture(t, nil)
	companies := NewCompanyService(f.companies, f.svc)
	ctx := context.Background()

	for _, name := range []string{"Blue Ocean Logistics", "Acme Air Cargo"} {
		if _, err := companies.Create(ctx, CreateCompanyInput{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := companies.Create(ctx, CreateCompanyInput{Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, _, err := f.svc.Submit(ctx, SubmitReviewInput{CompanyID: f.company.ID, CategoryRatings: answers("resp_time", 2)}); err != nil {
		t.Fatal(err)
	}

	results, err := companies.Search(ctx, "acme", 10, false)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	byName := map[string]models.CompanyListing{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if l := byName["Acme Freight"]; l.Rating == nil || *l.Rating != 2 || l.ReviewCount != 1 {
		t.Errorf("unexpected listing %+v", l)
	}
	if l := byName["Acme Air Cargo"]; l.Rating != nil || l.ReviewCount != 0 {
		t.Errorf("expected unrated listing, got %+v", l)
	}

	names, err := companies.Suggestions(ctx, "ocean", 5)
	if err != nil || len(names) != 1 || names[0] != "Blue Ocean Logistics" {
		t.Errorf("unexpected suggestions %v (%v)", names, err)
	}
	if _, err := companies.Suggestions(ctx, " ", 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty query, got %v", err)
	}

	all, err := companies.List(ctx, 0, 2, false)
	if err != nil || len(all) != 2 {
		t.Errorf("expected first page of 2, got %d (%v)", len(all), err)
	}
}
