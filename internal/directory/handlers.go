package directory

import (
	"net/http"

	"github.com/noah-isme/kasir-api/internal/common"
)

// Handler serves the read-only customer directory.
type Handler struct {
	Q Querier
}

// Customers returns the full directory in one response.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "directory not configured", nil)
		return
	}
	customers, err := h.Q.ListCustomers(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load customers", nil)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": customers})
}
