package handlers

import (
	"net/http"

	"logiscore/internal/middleware"
	"logiscore/internal/service"
)

// SubscriptionHandler serves plans and simulated upgrades
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// SubscribeRequest selects a plan
type SubscribeRequest struct {
	PlanID string `json:"plan_id"`
}

// Plans lists the plans offered to the caller's user type
// @Summary Subscription plans
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SubscriptionPlan
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /subscriptions/plans [get]
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	current, err := h.subscriptions.Current(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.subscriptions.Plans(current.UserType))
}

// Current returns the caller's subscription
// @Summary Current subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.CurrentSubscription
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /subscriptions/current [get]
func (h *SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	current, err := h.subscriptions.Current(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, current)
}

// Subscribe switches the caller to a plan. No payment is taken.
// @Summary Subscribe to a plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeRequest true "Plan"
// @Success 200 {object} service.CurrentSubscription
// @Failure 400 {object} map[string]string "Plan not available for user type"
// @Failure 404 {object} map[string]string "Unknown plan"
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.subscriptions.Subscribe(r.Context(), userID, req.PlanID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, current)
}
