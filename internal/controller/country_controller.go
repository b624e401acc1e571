package controller

import (
	"net/http"

	"github.com/brocantio/checkout/internal/service"
)

// CountryController serves the shipping form's country reference list. The
// list is public: the form renders it before the buyer authenticates.
type CountryController struct {
	countries service.CountrySource
}

// NewCountryController creates a new CountryController.
func NewCountryController(countries service.CountrySource) *CountryController {
	return &CountryController{countries: countries}
}

// List handles GET /api/v1/countries
func (h *CountryController) List(w http.ResponseWriter, r *http.Request) {
	countries := h.countries.Countries(r.Context())

	resp := make([]CountryResponse, 0, len(countries))
	for _, c := range countries {
		resp = append(resp, FromCountry(c))
	}
	writeJSON(w, http.StatusOK, resp)
}
