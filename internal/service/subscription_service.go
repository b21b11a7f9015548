package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"logiscore/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var plansYAML []byte

var (
	ErrPlanNotFound     = errors.New("subscription plan not found")
	ErrPlanNotAvailable = errors.New("subscription plan is not available for this user type")
)

// CurrentSubscription is the caller's plan state
type CurrentSubscription struct {
	SubscriptionTier string                   `json:"subscription_tier"`
	UserType         string                   `json:"user_type"`
	Plan             *models.SubscriptionPlan `json:"plan,omitempty"`
}

// SubscriptionService serves the plan table and records simulated upgrades.
// No payment provider is contacted.
type SubscriptionService struct {
	users UserStore
	plans []models.SubscriptionPlan
}

// NewSubscriptionService loads the embedded plan table
func NewSubscriptionService(users UserStore) (*SubscriptionService, error) {
	var plans []models.SubscriptionPlan
	if err := yaml.Unmarshal(plansYAML, &plans); err != nil {
		return nil, fmt.Errorf("failed to parse subscription plans: %w", err)
	}
	return &SubscriptionService{users: users, plans: plans}, nil
}

// Plans returns the plans offered to a user type
func (s *SubscriptionService) Plans(userType string) []models.SubscriptionPlan {
	plans := []models.SubscriptionPlan{}
	for _, p := range s.plans {
		if p.UserType == userType {
			plans = append(plans, p)
		}
	}
	return plans
}

// Current returns the caller's tier and, for paid tiers, the matching plan
func (s *SubscriptionService) Current(ctx context.Context, userID uuid.UUID) (*CurrentSubscription, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := &CurrentSubscription{
		SubscriptionTier: user.SubscriptionTier,
		UserType:         user.UserType,
	}
	for i := range s.plans {
		if s.plans[i].Tier() == user.SubscriptionTier {
			current.Plan = &s.plans[i]
			break
		}
	}
	return current, nil
}

// Subscribe switches the caller to planID
func (s *SubscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, planID string) (*CurrentSubscription, error) {
	var plan *models.SubscriptionPlan
	for i := range s.plans {
		if s.plans[i].ID == planID {
			plan = &s.plans[i]
			break
		}
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.UserType != plan.UserType {
		return nil, fmt.Errorf("%w: %s is only available for %ss", ErrPlanNotAvailable, plan.Name, plan.UserType)
	}

	if err := s.users.UpdateSubscriptionTier(ctx, userID, plan.Tier()); err != nil {
		return nil, err
	}

	slog.Info("Subscription changed", "user_id", userID, "plan", plan.ID)
	return &CurrentSubscription{
		SubscriptionTier: plan.Tier(),
		UserType:         user.UserType,
		Plan:             plan,
	}, nil
}
