package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

type fakeQuestions struct {
	questions []scoring.Question
	imported  []scoring.Question
}

func (f *fakeQuestions) ListActive(context.Context) ([]scoring.Question, error) {
	return f.questions, nil
}

func (f *fakeQuestions) Import(_ context.Context, qs []scoring.Question, _ bool) (*repository.ImportResult, error) {
	f.imported = qs
	return &repository.ImportResult{Created: len(qs)}, nil
}

type fakeCompanies struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*models.Company
	branches  map[uuid.UUID]*models.Branch
	reviews   *fakeReviews
}

func newFakeCompanies() *fakeCompanies {
	return &fakeCompanies{
		companies: map[uuid.UUID]*models.Company{},
		branches:  map[uuid.UUID]*models.Branch{},
	}
}

func (f *fakeCompanies) Create(_ context.Context, c *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.companies[c.ID] = c
	return nil
}

func (f *fakeCompanies) GetByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeCompanies) List(ctx context.Context, filter repository.ListFilter) ([]models.CompanyListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CompanyListing{}
	for _, c := range f.companies {
		if !c.IsActive || !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Query)) {
			continue
		}
		l := models.CompanyListing{Company: *c}
		if f.reviews != nil {
			totals, _, _ := f.reviews.SummaryTotals(ctx, c.ID)
			l.ReviewCount = totals.Count
			if totals.Count > 0 {
				avg := totals.SumAggregate / float64(totals.Count)
				l.Rating = &avg
			}
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if filter.Skip < len(out) {
		out = out[filter.Skip:]
	} else {
		out = out[:0]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeCompanies) Suggestions(_ context.Context, q string, limit int) ([]string, error) {
	names := []string{}
	for _, c := range f.companies {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (f *fakeCompanies) Count(context.Context) (int, error) {
	return len(f.companies), nil
}

func (f *fakeCompanies) CreateBranch(_ context.Context, b *models.Branch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.branches[b.ID] = b
	return nil
}

func (f *fakeCompanies) GetBranch(_ context.Context, id uuid.UUID) (*models.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.branches[id]
	if !ok {
		return nil, repository.ErrBranchNotFound
	}
	return b, nil
}

func (f *fakeCompanies) ListActiveBranches(_ context.Context, companyID uuid.UUID) ([]models.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Branch{}
	for _, b := range f.branches {
		if b.CompanyID == companyID && b.IsActive {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeReviews struct {
	mu        sync.Mutex
	reviews   []*models.Review
	createErr error
	creates   int
}

func (f *fakeReviews) CreateWithScores(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if r.IdempotencyKey != nil {
		for _, existing := range f.reviews {
			if existing.CompanyID == r.CompanyID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *r.IdempotencyKey {
				return repository.ErrDuplicateIdempotencyKey
			}
		}
	}
	r.ID = uuid.New()
	r.IsActive = true
	r.CreatedAt = time.Now()
	for i := range r.CategoryScores {
		r.CategoryScores[i].ID = uuid.New()
		r.CategoryScores[i].ReviewID = r.ID
	}
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeReviews) find(id uuid.UUID) (int, *models.Review) {
	for i, r := range f.reviews {
		if r.ID == id {
			return i, r
		}
	}
	return -1, nil
}

func (f *fakeReviews) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, r := f.find(id); r != nil {
		return r, nil
	}
	return nil, repository.ErrReviewNotFound
}

func (f *fakeReviews) GetByIdempotencyKey(_ context.Context, companyID uuid.UUID, key string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.CompanyID == companyID && r.IdempotencyKey != nil && *r.IdempotencyKey == key {
			return r, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (f *fakeReviews) ListByCompany(_ context.Context, companyID uuid.UUID, skip, limit int) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for i := len(f.reviews) - 1; i >= 0; i-- {
		if r := f.reviews[i]; r.CompanyID == companyID && r.IsActive {
			out = append(out, *r)
		}
	}
	return page(out, skip, limit), nil
}

func (f *fakeReviews) List(_ context.Context, skip, limit int) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for i := len(f.reviews) - 1; i >= 0; i-- {
		out = append(out, *f.reviews[i])
	}
	return page(out, skip, limit), nil
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return items[:0]
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (f *fakeReviews) Deactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, r := f.find(id)
	if r == nil {
		return repository.ErrReviewNotFound
	}
	r.IsActive = false
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, _ := f.find(id)
	if i < 0 {
		return repository.ErrReviewNotFound
	}
	f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
	return nil
}

func (f *fakeReviews) SummaryTotals(_ context.Context, companyID uuid.UUID) (scoring.ReviewTotals, []scoring.CategoryTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var totals scoring.ReviewTotals
	byCategory := map[string]*scoring.CategoryTotals{}
	for _, r := range f.reviews {
		if r.CompanyID != companyID || !r.IsActive {
			continue
		}
		totals.Count++
		totals.SumAggregate += r.AggregateRating
		totals.SumWeighted += r.WeightedRating
		totals.SumWeight += r.ReviewWeight
		for _, s := range r.CategoryScores {
			ct, ok := byCategory[s.CategoryID]
			if !ok {
				ct = &scoring.CategoryTotals{CategoryID: s.CategoryID, CategoryName: s.CategoryName}
				byCategory[s.CategoryID] = ct
			}
			ct.Sum += s.Rating
			ct.Count++
		}
	}

	categories := []scoring.CategoryTotals{}
	for _, ct := range byCategory {
		categories = append(categories, *ct)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].CategoryID < categories[j].CategoryID })
	return totals, categories, nil
}

func (f *fakeReviews) CountByActive(context.Context) (int, int, error) {
	active, inactive := 0, 0
	for _, r := range f.reviews {
		if r.IsActive {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrUserExists
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.SubscriptionTier == "" {
		u.SubscriptionTier = "free"
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) get(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.get(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.get(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	return f.get(func(u *models.User) bool { return u.ResetToken != nil && *u.ResetToken == token })
}

func (f *fakeUsers) update(id uuid.UUID, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) SetVerificationCode(_ context.Context, id uuid.UUID, code string, expires time.Time) error {
	return f.update(id, func(u *models.User) { u.VerificationCode, u.VerificationCodeExpires = &code, &expires })
}

func (f *fakeUsers) MarkVerified(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(u *models.User) {
		u.IsVerified = true
		u.VerificationCode, u.VerificationCodeExpires = nil, nil
	})
}

func (f *fakeUsers) SetResetToken(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	return f.update(id, func(u *models.User) { u.ResetToken, u.ResetTokenExpires = &token, &expires })
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return f.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.ResetToken, u.ResetTokenExpires = nil, nil
	})
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(u *models.User) { now := time.Now(); u.LastLoginAt = &now })
}

func (f *fakeUsers) UpdateSubscriptionTier(_ context.Context, id uuid.UUID, tier string) error {
	return f.update(id, func(u *models.User) { u.SubscriptionTier = tier })
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	return len(f.users), nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*models.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	f.sessions[s.JTI] = s
	return nil
}

func (f *fakeSessions) GetByJTI(_ context.Context, jti string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[jti]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) DeleteBySessionID(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for jti, s := range f.sessions {
		if s.SessionID == sessionID {
			delete(f.sessions, jti)
		}
	}
	return nil
}

func (f *fakeSessions) DeleteAllUserSessions(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for jti, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, jti)
		}
	}
	return nil
}

type fakeDisputes struct {
	disputes []*models.Dispute
}

func (f *fakeDisputes) Create(_ context.Context, d *models.Dispute) error {
	d.ID = uuid.New()
	d.Status = models.DisputeStatusPending
	f.disputes = append(f.disputes, d)
	return nil
}

func (f *fakeDisputes) List(_ context.Context, status string) ([]models.Dispute, error) {
	out := []models.Dispute{}
	for _, d := range f.disputes {
		if status == "" || d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDisputes) Resolve(_ context.Context, id uuid.UUID, status string, notes *string) error {
	for _, d := range f.disputes {
		if d.ID == id && d.Status == models.DisputeStatusPending {
			d.Status = status
			d.AdminNotes = notes
			return nil
		}
	}
	return repository.ErrDisputeNotFound
}

func (f *fakeDisputes) CountPending(context.Context) (int, error) {
	n := 0
	for _, d := range f.disputes {
		if d.Status == models.DisputeStatusPending {
			n++
		}
	}
	return n, nil
}

type sentMail struct {
	kind, to, payload string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) record(kind, to, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind, to, payload})
	return f.err
}

func (f *fakeMailer) SendVerificationCode(to, code string, _ time.Duration) error {
	return f.record("verification", to, code)
}

func (f *fakeMailer) SendPasswordResetEmail(to, token string, _ time.Duration) error {
	return f.record("reset", to, token)
}

func (f *fakeMailer) SendWelcomeEmail(to, userType string) error {
	return f.record("welcome", to, userType)
}

func (f *fakeMailer) last(kind string) (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].kind == kind {
			return f.sent[i], true
		}
	}
	return sentMail{}, false
}

type fakeSealer struct {
	err error
}

func (f fakeSealer) Seal(_ context.Context, userID uuid.UUID) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "sealed:" + userID.String(), nil
}

var errBoom = errors.New("boom")
