package service

import (
	"context"
	"errors"
	"testing"

	"logiscore/internal/models"
)

func TestSubscriptionPlans(t *testing.T) {
	svc, err := NewSubscriptionService(newFakeUsers())
	if err != nil {
		t.Fatalf("NewSubscriptionService failed: %v", err)
	}

	for _, userType := range []string{models.UserTypeShipper, models.UserTypeForwarder} {
		plans := svc.Plans(userType)
		if len(plans) != 3 {
			t.Errorf("expected 3 %s plans, got %d", userType, len(plans))
		}
		for _, p := range plans {
			if p.UserType != userType || len(p.Features) == 0 || p.Price <= 0 {
				t.Errorf("unexpected plan %+v", p)
			}
		}
	}
	if plans := svc.Plans("carrier"); len(plans) != 0 {
		t.Errorf("expected no plans for unknown user type, got %d", len(plans))
	}
}

func TestSubscribe(t *testing.T) {
	users := newFakeUsers()
	shipper := &models.User{Email: "s@example.com", UserType: models.UserTypeShipper}
	if err := users.Create(context.Background(), shipper); err != nil {
		t.Fatal(err)
	}
	svc, err := NewSubscriptionService(users)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	current, err := svc.Current(ctx, shipper.ID)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current.SubscriptionTier != "free" || current.Plan != nil {
		t.Errorf("expected free tier without plan, got %+v", current)
	}

	if _, err := svc.Subscribe(ctx, shipper.ID, "forwarder-premium"); !errors.Is(err, ErrPlanNotAvailable) {
		t.Errorf("expected ErrPlanNotAvailable, got %v", err)
	}
	if _, err := svc.Subscribe(ctx, shipper.ID, "gold"); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}

	current, err = svc.Subscribe(ctx, shipper.ID, "shipper-premium")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if current.SubscriptionTier != "shipper_premium" || current.Plan == nil || current.Plan.ID != "shipper-premium" {
		t.Errorf("unexpected subscription %+v", current)
	}

	current, _ = svc.Current(ctx, shipper.ID)
	if current.Plan == nil || current.Plan.ID != "shipper-premium" {
		t.Errorf("expected the stored tier to resolve to its plan, got %+v", current)
	}
}
