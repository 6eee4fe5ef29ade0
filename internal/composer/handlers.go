package composer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/obs"
	"github.com/noah-isme/kasir-api/internal/pricing"
)

// Handler exposes HTTP handlers for composing and submitting order drafts.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type draftPatchRequest struct {
	CustomerID    *string `json:"customerId"`
	PaymentMethod *string `json:"paymentMethod" validate:"omitempty,oneof=cash card qris transfer"`
	Notes         *string `json:"notes"`
}

type itemPatchRequest struct {
	ProductID *string `json:"productId"`
	Qty       *int    `json:"qty" validate:"omitempty,gte=1"`
	UnitPrice *int64  `json:"unitPrice" validate:"omitempty,gte=0"`
}

// CreateDraft handles POST /api/v1/drafts.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	draft, err := h.Svc.Create()
	if err != nil {
		common.RenderError(w, err)
		return
	}
	if obs.DraftCreatedTotal != nil {
		obs.DraftCreatedTotal.Inc()
	}
	view, err := h.Svc.View(draft.ID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// GetDraft handles GET /api/v1/drafts/{draftId}.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	view, err := h.Svc.View(chi.URLParam(r, "draftId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// PatchDraft handles PATCH /api/v1/drafts/{draftId}.
func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	var req draftPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	id := chi.URLParam(r, "draftId")
	if err := h.Svc.SetDetails(id, DraftPatch{
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}); err != nil {
		h.writeError(w, err)
		return
	}
	h.renderDraft(w, id)
}

// AddItem handles POST /api/v1/drafts/{draftId}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	id := chi.URLParam(r, "draftId")
	if err := h.Svc.AddItem(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.renderDraft(w, id)
}

// PatchItem handles PATCH /api/v1/drafts/{draftId}/items/{index}.
func (h *Handler) PatchItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var req itemPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	patch := ItemPatch{ProductID: req.ProductID, Qty: req.Qty}
	if req.UnitPrice != nil {
		price := pricing.Money(*req.UnitPrice)
		patch.UnitPrice = &price
	}
	id := chi.URLParam(r, "draftId")
	if err := h.Svc.UpdateItem(id, index, patch); err != nil {
		h.writeError(w, err)
		return
	}
	h.renderDraft(w, id)
}

// RemoveItem handles DELETE /api/v1/drafts/{draftId}/items/{index}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "draftId")
	if err := h.Svc.RemoveItem(id, index); err != nil {
		h.writeError(w, err)
		return
	}
	h.renderDraft(w, id)
}

// Submit handles POST /api/v1/drafts/{draftId}/submit. On success the created
// order's route is exposed both as a Location header and in the body.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "composer service not configured", nil)
		return
	}
	id := chi.URLParam(r, "draftId")
	nav := &headerNavigator{header: w.Header()}
	orderID, err := h.Svc.Submit(r.Context(), id, nav)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"orderId":    orderID,
			"redirectTo": nav.pushed,
		},
	})
}

// headerNavigator maps the post-submit navigation onto the HTTP response.
type headerNavigator struct {
	header http.Header
	pushed string
}

func (n *headerNavigator) Push(path string) {
	n.pushed = path
	n.header.Set("Location", path)
}

func (h *Handler) renderDraft(w http.ResponseWriter, id string) {
	view, err := h.Svc.View(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) validate(req any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(req)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDraftNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft not found", nil)
	case errors.Is(err, ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft item not found", nil)
	default:
		common.RenderError(w, err)
	}
}

func itemIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item index", nil)
		return 0, false
	}
	return index, true
}
