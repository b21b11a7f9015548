package handlers

import (
	"net/http"

	"logiscore/internal/service"
)

// CompanyHandler serves company listings and profiles
type CompanyHandler struct {
	companies *service.CompanyService
	reviews   *service.ReviewService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies *service.CompanyService, reviews *service.ReviewService) *CompanyHandler {
	return &CompanyHandler{companies: companies, reviews: reviews}
}

// List returns active companies with their rating
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-1000)" default(100)
// @Param random query bool false "Random order"
// @Success 200 {array} models.CompanyListing
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Router /companies [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r, 100, 1000)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	companies, err := h.companies.List(r.Context(), skip, limit, queryBool(r, "random"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, companies)
}

// Get returns the company profile
// @Summary Company profile
// @Description Company, active branches and rating summary
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} service.CompanyProfile
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.companies.Profile(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// Branches returns the active branches of a company
// @Summary Company branches
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {array} models.Branch
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id}/branches [get]
func (h *CompanyHandler) Branches(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	branches, err := h.companies.Branches(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, branches)
}

// Summary returns the rating rollup of a company
// @Summary Company rating summary
// @Description Overall and per-category averages over active reviews. Averages are null without data.
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} scoring.Summary
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id}/summary [get]
func (h *CompanyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.reviews.Summary(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// Reviews returns a company's active reviews, newest first
// @Summary Company reviews
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(20)
// @Success 200 {array} models.Review
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id}/reviews [get]
func (h *CompanyHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, limit, err := pagination(r, 20, 100)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := h.reviews.ListByCompany(r.Context(), id, skip, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}
