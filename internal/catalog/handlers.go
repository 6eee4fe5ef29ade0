package catalog

import (
	"net/http"

	"github.com/noah-isme/kasir-api/internal/common"
)

// Handler serves the read-only product catalog.
type Handler struct {
	Svc *Service
}

// Products returns the full catalog in one response.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load products", nil)
		return
	}
	if products == nil {
		products = []Product{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}
