package handlers

import (
	"net/http"
	"strings"

	"logiscore/internal/middleware"
	"logiscore/internal/scoring"
	"logiscore/internal/service"
	"logiscore/pkg/validator"

	"github.com/google/uuid"
)

// ReviewHandler handles review submission and lookup
type ReviewHandler struct {
	reviews   *service.ReviewService
	questions *service.QuestionService
	admin     *service.AdminService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *service.ReviewService, questions *service.QuestionService, admin *service.AdminService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, questions: questions, admin: admin}
}

// SubmitReviewRequest is the body of a review submission
type SubmitReviewRequest struct {
	CompanyID       uuid.UUID                `json:"company_id"`
	BranchID        *uuid.UUID               `json:"branch_id,omitempty"`
	ReviewType      string                   `json:"review_type"`
	IsAnonymous     bool                     `json:"is_anonymous"`
	CategoryRatings []scoring.CategoryAnswer `json:"category_ratings"`
	ReviewText      *string                  `json:"review_text,omitempty"`
}

// OpenDisputeRequest reports a review to the moderators
type OpenDisputeRequest struct {
	Reason      string  `json:"reason"`
	Description *string `json:"description,omitempty"`
}

// Questions returns the active question catalog
// @Summary Review questions
// @Description Active categories with their questions and rating definitions, in catalog order
// @Tags Reviews
// @Produce json
// @Success 200 {array} scoring.Category
// @Router /reviews/questions [get]
func (h *ReviewHandler) Questions(w http.ResponseWriter, r *http.Request) {
	categories, err := h.questions.ListActiveCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

// Submit stores a new review
// @Summary Submit a review
// @Description Validates the ratings, computes aggregate and weighted scores and stores the review with its category scores atomically. Reviews without a logged-in user are anonymous. A repeated Idempotency-Key returns the stored review with 200.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client retry key (max 128 chars)"
// @Param request body SubmitReviewRequest true "Review"
// @Success 201 {object} models.Review
// @Success 200 {object} models.Review "Replay of a known Idempotency-Key"
// @Failure 400 {object} map[string]string "Invalid ratings"
// @Failure 404 {object} map[string]string "Company or branch not found"
// @Failure 500 {object} map[string]string "Review could not be stored"
// @Router /reviews [post]
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if err := validator.ValidateMaxLength(IdempotencyKeyHeader, key, maxIdempotencyKeyLength); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SubmitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CompanyID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "company_id is required")
		return
	}

	in := service.SubmitReviewInput{
		CompanyID:       req.CompanyID,
		BranchID:        req.BranchID,
		ReviewType:      req.ReviewType,
		IsAnonymous:     req.IsAnonymous,
		CategoryRatings: req.CategoryRatings,
		ReviewText:      req.ReviewText,
		IdempotencyKey:  key,
	}
	if userID, ok := middleware.GetUserID(r); ok {
		in.UserID = &userID
	}

	review, created, err := h.reviews.Submit(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondWithJSON(w, status, review)
}

// Get returns one active review
// @Summary Get a review
// @Tags Reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} models.Review
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

// OpenDispute reports a review
// @Summary Dispute a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body OpenDisputeRequest true "Reason"
// @Success 201 {object} models.Dispute
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id}/disputes [post]
func (h *ReviewHandler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req OpenDisputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	dispute, err := h.admin.OpenDispute(r.Context(), id, userID, req.Reason, req.Description)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, dispute)
}
