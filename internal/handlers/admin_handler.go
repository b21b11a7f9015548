package handlers

import (
	"net/http"

	"logiscore/internal/service"
)

// AdminHandler serves moderation and data maintenance endpoints
type AdminHandler struct {
	admin     *service.AdminService
	reviews   *service.ReviewService
	companies *service.CompanyService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *service.AdminService, reviews *service.ReviewService, companies *service.CompanyService) *AdminHandler {
	return &AdminHandler{admin: admin, reviews: reviews, companies: companies}
}

// ResolveDisputeRequest closes a dispute
type ResolveDisputeRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// Dashboard returns headline counters
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Dashboard(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// ListReviews lists all reviews including deactivated ones
// @Summary List all reviews
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-1000)" default(100)
// @Success 200 {array} models.Review
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/reviews [get]
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r, 100, 1000)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := h.reviews.ListAll(r.Context(), skip, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

// DeactivateReview hides a review from summaries
// @Summary Deactivate a review
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} map[string]string "Review not found"
// @Router /admin/reviews/{id}/deactivate [post]
func (h *AdminHandler) DeactivateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reviews.Deactivate(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Review deactivated"})
}

// DeleteReview removes a review and its category scores
// @Summary Delete a review
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} map[string]string "Review not found"
// @Router /admin/reviews/{id} [delete]
func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Review deleted"})
}

// ListDisputes lists disputes, optionally filtered by status
// @Summary List disputes
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, resolved or rejected"
// @Success 200 {array} models.Dispute
// @Failure 400 {object} map[string]string "Unknown status"
// @Router /admin/disputes [get]
func (h *AdminHandler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.admin.Disputes(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, disputes)
}

// ResolveDispute closes a pending dispute
// @Summary Resolve a dispute
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dispute ID"
// @Param request body ResolveDisputeRequest true "Outcome"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 404 {object} map[string]string "No pending dispute"
// @Router /admin/disputes/{id}/resolve [post]
func (h *AdminHandler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ResolveDisputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.admin.ResolveDispute(r.Context(), id, req.Status, req.AdminNotes); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Dispute " + req.Status})
}

// CreateCompany adds a company
// @Summary Create a company
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCompanyInput true "Company"
// @Success 201 {object} models.Company
// @Failure 400 {object} map[string]string "Missing name"
// @Router /admin/companies [post]
func (h *AdminHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCompanyInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	company, err := h.companies.Create(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, company)
}

// CreateBranch adds a branch to a company
// @Summary Create a branch
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param request body service.CreateBranchInput true "Branch"
// @Success 201 {object} models.Branch
// @Failure 400 {object} map[string]string "Missing name or location"
// @Failure 404 {object} map[string]string "Company not found"
// @Router /admin/companies/{id}/branches [post]
func (h *AdminHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req service.CreateBranchInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	branch, err := h.companies.CreateBranch(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, branch)
}
