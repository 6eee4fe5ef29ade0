package composer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/obs"
	"github.com/noah-isme/kasir-api/internal/pricing"
	"github.com/noah-isme/kasir-api/internal/store"
)

// StatusPending is the fixed status every newly created order starts in.
const StatusPending = "pending"

// Submit validates the draft, creates the order row, then creates its line
// items as one batch, and finally pushes the created order's route onto nav.
// The item insert only runs after the order insert succeeded; a failure after
// the order row exists is surfaced without deleting that row. The draft is
// kept on any failure so the cashier can retry.
func (s *Service) Submit(ctx context.Context, id string, nav Navigator) (string, error) {
	if s == nil || s.DB == nil {
		return "", errors.New("composer service not configured")
	}
	ctx, span := otel.Tracer("composer.Service").Start(ctx, "ComposerService.Submit")
	defer span.End()

	start := time.Now()
	result := "error"
	defer func() {
		span.SetAttributes(
			attribute.String("draft.id", id),
			attribute.String("submit.result", result),
			attribute.Float64("submit.duration_ms", obs.DurationMillis(time.Since(start))),
		)
		if obs.DraftSubmitTotal != nil {
			obs.DraftSubmitTotal.WithLabelValues(result).Inc()
		}
	}()

	order, items, err := s.beginSubmit(id)
	if err != nil {
		if errors.Is(err, errValidation) {
			result = "validation"
		}
		return "", err
	}
	defer s.endSubmit(id)

	created, err := s.DB.Insert(ctx, "orders", []store.Record{order})
	if err != nil || len(created) == 0 {
		result = "order_insert_failed"
		return "", s.failSubmit(id, err, "failed to create order")
	}
	orderID, err := recordID(created[0])
	if err != nil {
		result = "order_insert_failed"
		return "", s.failSubmit(id, err, "failed to create order")
	}
	span.SetAttributes(attribute.String("order.id", orderID))

	batch := make([]store.Record, 0, len(items))
	for _, it := range items {
		line := pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice}
		batch = append(batch, store.Record{
			"order_id":    orderID,
			"product_id":  it.ProductID,
			"quantity":    it.Qty,
			"unit_price":  it.UnitPrice,
			"total_price": line.Subtotal(),
		})
	}
	if _, err := s.DB.Insert(ctx, "order_items", batch); err != nil {
		// The order row stays behind: there is no compensating delete, the
		// cashier sees the failure and the retry path relies on the
		// idempotency key in front of this endpoint.
		result = "items_insert_failed"
		return "", s.failSubmit(id, err, "failed to create order items")
	}

	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()

	if nav != nil {
		nav.Push("/orders/" + orderID)
	}
	result = "success"
	return orderID, nil
}

var errValidation = errors.New("draft validation failed")

// beginSubmit runs the pre-flight checks under the lock and returns the order
// payload plus a copy of the items. No store call happens before the empty
// check passes.
func (s *Service) beginSubmit(id string) (store.Record, []Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.find(id)
	if err != nil {
		return nil, nil, err
	}
	if draft.Submitting {
		return nil, nil, common.NewAppError("SUBMIT_IN_PROGRESS", "order submission already in progress", http.StatusConflict, nil)
	}
	if len(draft.Items) == 0 {
		draft.LastError = emptyItemsMessage
		return nil, nil, common.NewAppError("VALIDATION", emptyItemsMessage, http.StatusUnprocessableEntity, errValidation)
	}
	draft.Submitting = true
	draft.LastError = ""

	items := make([]Item, len(draft.Items))
	copy(items, draft.Items)

	lines := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
	}
	total := pricing.Total(lines)

	order := store.Record{
		"customer_id":    nullableID(draft.CustomerID),
		"total_amount":   total,
		"status":         StatusPending,
		"payment_method": nullableString(draft.PaymentMethod),
		"notes":          nullableString(draft.Notes),
	}
	return order, items, nil
}

// endSubmit clears the submitting flag on every terminal path. The draft may
// already be gone after a successful submit.
func (s *Service) endSubmit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft, ok := s.drafts[id]; ok {
		draft.Submitting = false
	}
}

// failSubmit records the user-facing message on the draft and returns the
// error to surface. Store errors pass their own message through; anything
// opaque falls back to the generic text.
func (s *Service) failSubmit(id string, err error, fallback string) error {
	message := fallback
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	s.mu.Lock()
	if draft, ok := s.drafts[id]; ok {
		draft.LastError = message
	}
	s.mu.Unlock()
	if appErr != nil {
		return appErr
	}
	return common.NewAppError("STORE_ERROR", message, http.StatusBadGateway, err)
}

func nullableID(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableString(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

// recordID extracts the generated identifier from a created row.
func recordID(row store.Record) (string, error) {
	value, ok := row["id"]
	if !ok {
		return "", errors.New("created record has no id column")
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", value)
	}
}
