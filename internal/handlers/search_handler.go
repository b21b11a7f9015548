package handlers

import (
	"net/http"

	"logiscore/internal/service"
)

// SearchHandler serves company search and autocompletion
type SearchHandler struct {
	companies *service.CompanyService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(companies *service.CompanyService) *SearchHandler {
	return &SearchHandler{companies: companies}
}

// Companies searches active companies by name
// @Summary Search companies
// @Tags Search
// @Produce json
// @Param q query string false "Name contains"
// @Param limit query int false "Max results (1-100)" default(20)
// @Param random query bool false "Random order"
// @Success 200 {array} models.CompanyListing
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Router /search/companies [get]
func (h *SearchHandler) Companies(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20, 1, 100)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.companies.Search(r.Context(), r.URL.Query().Get("q"), limit, queryBool(r, "random"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}

// Suggestions returns company names for autocompletion
// @Summary Company name suggestions
// @Tags Search
// @Produce json
// @Param q query string true "Name prefix or fragment"
// @Param limit query int false "Max results (1-50)" default(10)
// @Success 200 {array} string
// @Failure 400 {object} map[string]string "Missing query"
// @Router /search/suggestions [get]
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10, 1, 50)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := h.companies.Suggestions(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, names)
}
