package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

type memQuestions struct {
	questions []scoring.Question
}

func (m *memQuestions) ListActive(context.Context) ([]scoring.Question, error) {
	return m.questions, nil
}

func (m *memQuestions) Import(_ context.Context, qs []scoring.Question, _ bool) (*repository.ImportResult, error) {
	m.questions = qs
	return &repository.ImportResult{Created: len(qs)}, nil
}

type memCompanies struct {
	mu        sync.Mutex
	companies []*models.Company
	branches  []*models.Branch
}

func (m *memCompanies) Create(_ context.Context, c *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.companies = append(m.companies, c)
	return nil
}

func (m *memCompanies) GetByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (m *memCompanies) List(_ context.Context, f repository.ListFilter) ([]models.CompanyListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CompanyListing
	for _, c := range m.companies {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Query)) {
			out = append(out, models.CompanyListing{Company: *c})
		}
	}
	return out, nil
}

func (m *memCompanies) Suggestions(ctx context.Context, q string, limit int) ([]string, error) {
	listings, _ := m.List(ctx, repository.ListFilter{Query: q})
	var names []string
	for _, l := range listings {
		names = append(names, l.Name)
	}
	return names, nil
}

func (m *memCompanies) Count(context.Context) (int, error) {
	return len(m.companies), nil
}

func (m *memCompanies) CreateBranch(_ context.Context, b *models.Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New()
	m.branches = append(m.branches, b)
	return nil
}

func (m *memCompanies) GetBranch(_ context.Context, id uuid.UUID) (*models.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.branches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, repository.ErrBranchNotFound
}

func (m *memCompanies) ListActiveBranches(_ context.Context, companyID uuid.UUID) ([]models.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Branch
	for _, b := range m.branches {
		if b.CompanyID == companyID && b.IsActive {
			out = append(out, *b)
		}
	}
	return out, nil
}

type memReviews struct {
	mu        sync.Mutex
	reviews   []*models.Review
	createErr error
}

func (m *memReviews) CreateWithScores(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	r.ID = uuid.New()
	r.IsActive = true
	r.CreatedAt = time.Now()
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (m *memReviews) GetByIdempotencyKey(_ context.Context, companyID uuid.UUID, key string) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.CompanyID == companyID && r.IdempotencyKey != nil && *r.IdempotencyKey == key {
			return r, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (m *memReviews) ListByCompany(_ context.Context, companyID uuid.UUID, _, _ int) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		if r.CompanyID == companyID && r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReviews) List(context.Context, int, int) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memReviews) Deactivate(ctx context.Context, id uuid.UUID) error {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	r.IsActive = false
	return nil
}

func (m *memReviews) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reviews {
		if r.ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrReviewNotFound
}

func (m *memReviews) SummaryTotals(_ context.Context, companyID uuid.UUID) (scoring.ReviewTotals, []scoring.CategoryTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var totals scoring.ReviewTotals
	byID := map[string]*scoring.CategoryTotals{}
	var order []string
	for _, r := range m.reviews {
		if r.CompanyID != companyID || !r.IsActive {
			continue
		}
		totals.Count++
		totals.SumAggregate += r.AggregateRating
		totals.SumWeighted += r.WeightedRating
		totals.SumWeight += r.ReviewWeight
		for _, s := range r.CategoryScores {
			ct, ok := byID[s.CategoryID]
			if !ok {
				ct = &scoring.CategoryTotals{CategoryID: s.CategoryID, CategoryName: s.CategoryName}
				byID[s.CategoryID] = ct
				order = append(order, s.CategoryID)
			}
			ct.Sum += s.Rating
			ct.Count++
		}
	}
	var cats []scoring.CategoryTotals
	for _, id := range order {
		cats = append(cats, *byID[id])
	}
	return totals, cats, nil
}

func (m *memReviews) CountByActive(context.Context) (int, int, error) {
	active := 0
	for _, r := range m.reviews {
		if r.IsActive {
			active++
		}
	}
	return active, len(m.reviews) - active, nil
}
