package service

import (
	"context"
	"fmt"
	"strings"

	"logiscore/internal/models"
	"logiscore/internal/scoring"

	"github.com/google/uuid"
)

// AdminService backs the moderation endpoints
type AdminService struct {
	users     UserStore
	companies CompanyStore
	reviews   ReviewStore
	disputes  DisputeStore
}

// NewAdminService creates a new admin service
func NewAdminService(users UserStore, companies CompanyStore, reviews ReviewStore, disputes DisputeStore) *AdminService {
	return &AdminService{
		users:     users,
		companies: companies,
		reviews:   reviews,
		disputes:  disputes,
	}
}

// Dashboard returns the headline counters
func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	var err error

	if stats.Users, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Companies, err = s.companies.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveReviews, stats.InactiveReviews, err = s.reviews.CountByActive(ctx); err != nil {
		return nil, err
	}
	if stats.PendingDisputes, err = s.disputes.CountPending(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// OpenDispute files a report against an active review
func (s *AdminService) OpenDispute(ctx context.Context, reviewID, reporter uuid.UUID, reason string, description *string) (*models.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "review", reviewID)
	}
	if !review.IsActive {
		return nil, fmt.Errorf("%w: review %s", scoring.ErrNotFound, reviewID)
	}

	d := &models.Dispute{
		ReviewID:    reviewID,
		ReportedBy:  reporter,
		Reason:      reason,
		Description: trimmed(description),
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Disputes lists disputes, optionally by status
func (s *AdminService) Disputes(ctx context.Context, status string) ([]models.Dispute, error) {
	switch status {
	case "", models.DisputeStatusPending, models.DisputeStatusResolved, models.DisputeStatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown dispute status %q", ErrInvalidInput, status)
	}
	return s.disputes.List(ctx, status)
}

// ResolveDispute closes a pending dispute as resolved or rejected
func (s *AdminService) ResolveDispute(ctx context.Context, id uuid.UUID, status string, notes *string) error {
	if status != models.DisputeStatusResolved && status != models.DisputeStatusRejected {
		return fmt.Errorf("%w: status must be resolved or rejected", ErrInvalidInput)
	}
	if err := s.disputes.Resolve(ctx, id, status, trimmed(notes)); err != nil {
		return notFound(err, "pending dispute", id)
	}
	return nil
}
