package composer

import (
	"errors"

	"github.com/noah-isme/kasir-api/internal/obs"
	"github.com/noah-isme/kasir-api/internal/pricing"
)

// ItemView is a line item as the dashboard renders it: the draft fields plus
// the derived subtotal and the soft stock warning.
type ItemView struct {
	ProductID    string        `json:"productId"`
	Qty          int           `json:"qty"`
	UnitPrice    pricing.Money `json:"unitPrice"`
	Subtotal     pricing.Money `json:"subtotal"`
	StockWarning bool          `json:"stockWarning"`
}

// DraftView is a read-only snapshot of a draft. Totals are derived at read
// time, never stored on the draft.
type DraftView struct {
	ID             string        `json:"draftId"`
	CustomerID     *string       `json:"customerId"`
	PaymentMethod  string        `json:"paymentMethod"`
	Notes          string        `json:"notes"`
	Items          []ItemView    `json:"items"`
	Total          pricing.Money `json:"total"`
	FormattedTotal string        `json:"formattedTotal"`
	Submitting     bool          `json:"submitting"`
	LastError      string        `json:"lastError,omitempty"`
}

// View renders the current state of a draft.
func (s *Service) View(id string) (DraftView, error) {
	if s == nil {
		return DraftView{}, errors.New("composer service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.find(id)
	if err != nil {
		return DraftView{}, err
	}
	return s.render(draft), nil
}

func (s *Service) render(draft *Draft) DraftView {
	items := make([]ItemView, 0, len(draft.Items))
	var total pricing.Money
	for _, it := range draft.Items {
		line := pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice}
		view := ItemView{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			Subtotal:  line.Subtotal(),
		}
		if s.Products != nil && it.ProductID != "" {
			if product, ok := s.Products.Product(it.ProductID); ok && it.Qty > product.StockQuantity {
				view.StockWarning = true
				if obs.StockWarningTotal != nil {
					obs.StockWarningTotal.Inc()
				}
			}
		}
		total += view.Subtotal
		items = append(items, view)
	}
	return DraftView{
		ID:             draft.ID,
		CustomerID:     draft.CustomerID,
		PaymentMethod:  draft.PaymentMethod,
		Notes:          draft.Notes,
		Items:          items,
		Total:          total,
		FormattedTotal: pricing.FormatIDR(total),
		Submitting:     draft.Submitting,
		LastError:      draft.LastError,
	}
}
