package service

import (
	"context"
	"fmt"
	"strings"

	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scoring"
	"logiscore/pkg/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CompanyProfile is everything the company page shows
type CompanyProfile struct {
	Company  *models.Company  `json:"company"`
	Branches []models.Branch  `json:"branches"`
	Summary  *scoring.Summary `json:"summary"`
}

// CreateCompanyInput holds the fields of a new company
type CreateCompanyInput struct {
	Name        string  `json:"name" yaml:"name"`
	Website     *string `json:"website,omitempty" yaml:"website"`
	LogoURL     *string `json:"logo_url,omitempty" yaml:"logo_url"`
	Description *string `json:"description,omitempty" yaml:"description"`
}

// CreateBranchInput holds the fields of a new branch
type CreateBranchInput struct {
	Name     string  `json:"name" yaml:"name"`
	Location string  `json:"location" yaml:"location"`
	Address  *string `json:"address,omitempty" yaml:"address"`
	Phone    *string `json:"phone,omitempty" yaml:"phone"`
	Email    *string `json:"email,omitempty" yaml:"email"`
}

// CompanyService lists, searches and maintains companies
type CompanyService struct {
	companies CompanyStore
	reviews   *ReviewService
}

// NewCompanyService creates a new company service
func NewCompanyService(companies CompanyStore, reviews *ReviewService) *CompanyService {
	return &CompanyService{companies: companies, reviews: reviews}
}

// List returns active companies with their rating
func (s *CompanyService) List(ctx context.Context, skip, limit int, random bool) ([]models.CompanyListing, error) {
	return s.companies.List(ctx, repository.ListFilter{Skip: skip, Limit: limit, Random: random})
}

// Search returns active companies whose name contains q
func (s *CompanyService) Search(ctx context.Context, q string, limit int, random bool) ([]models.CompanyListing, error) {
	return s.companies.List(ctx, repository.ListFilter{
		Query:  strings.TrimSpace(q),
		Limit:  limit,
		Random: random,
	})
}

// Suggestions returns company names for autocompletion
func (s *CompanyService) Suggestions(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q is required", ErrInvalidInput)
	}
	return s.companies.Suggestions(ctx, q, limit)
}

// Profile loads the company, its branches and its rating summary
// concurrently
func (s *CompanyService) Profile(ctx context.Context, id uuid.UUID) (*CompanyProfile, error) {
	profile := &CompanyProfile{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		company, err := s.reviews.activeCompany(gctx, id)
		profile.Company = company
		return err
	})
	g.Go(func() error {
		branches, err := s.companies.ListActiveBranches(gctx, id)
		profile.Branches = branches
		return err
	})
	g.Go(func() error {
		summary, err := s.reviews.summarize(gctx, id)
		profile.Summary = summary
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Branches returns the active branches of an active company
func (s *CompanyService) Branches(ctx context.Context, id uuid.UUID) ([]models.Branch, error) {
	if _, err := s.reviews.activeCompany(ctx, id); err != nil {
		return nil, err
	}
	return s.companies.ListActiveBranches(ctx, id)
}

// Create adds an active company
func (s *CompanyService) Create(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	name := validator.SanitizeString(in.Name)
	if err := validator.ValidateRequired("name", name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	company := &models.Company{
		Name:        name,
		Website:     trimmed(in.Website),
		LogoURL:     trimmed(in.LogoURL),
		Description: trimmed(in.Description),
		IsActive:    true,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// CreateBranch adds an active branch to an existing company
func (s *CompanyService) CreateBranch(ctx context.Context, companyID uuid.UUID, in CreateBranchInput) (*models.Branch, error) {
	name := validator.SanitizeString(in.Name)
	location := validator.SanitizeString(in.Location)
	if err := validator.ValidateRequired("name", name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validator.ValidateRequired("location", location); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, notFound(err, "company", companyID)
	}

	branch := &models.Branch{
		CompanyID: companyID,
		Name:      name,
		Location:  location,
		Address:   trimmed(in.Address),
		Phone:     trimmed(in.Phone),
		Email:     trimmed(in.Email),
		IsActive:  true,
	}
	if err := s.companies.CreateBranch(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}
