package composer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/kasir-api/internal/catalog"
	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/pricing"
	"github.com/noah-isme/kasir-api/internal/store"
)

// WalkIn is the sentinel accepted at the HTTP boundary for "no customer".
// Internally a walk-in draft carries a nil customer reference; the sentinel
// never leaves the edge.
const WalkIn = "walk-in"

// PaymentMethods enumerates the accepted payment methods. The first entry is
// the default for a new draft.
var PaymentMethods = []string{"cash", "card", "qris", "transfer"}

// ErrDraftNotFound indicates the requested draft does not exist or expired.
var ErrDraftNotFound = errors.New("draft not found")

// ErrItemNotFound indicates the item index is outside the draft's item list.
var ErrItemNotFound = errors.New("draft item not found")

const emptyItemsMessage = "Please add at least one item to the order"

// Item is one draft line: a product reference, a quantity and the unit price
// snapshotted when the product was picked. Quantity and price stay editable
// after selection.
type Item struct {
	ProductID string
	Qty       int
	UnitPrice pricing.Money
}

// Draft is the in-memory order being composed. It belongs to a single cashier
// session and is discarded after a successful submit or once the TTL passes.
type Draft struct {
	ID            string
	CustomerID    *string
	PaymentMethod string
	Notes         string
	Items         []Item
	Submitting    bool
	LastError     string
	ExpiresAt     time.Time
}

// ProductSource resolves catalog products for price snapshots and stock
// warnings.
type ProductSource interface {
	Product(id string) (catalog.Product, bool)
}

// Navigator receives the route to transition to after a successful submit.
type Navigator interface {
	Push(path string)
}

// Service owns every draft and serialises all mutations, making each draft a
// single-writer object. Store calls during submit run outside the lock.
type Service struct {
	DB       store.Client
	Products ProductSource
	TTL      time.Duration
	Now      func() time.Time

	mu     sync.Mutex
	drafts map[string]*Draft
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 2 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens an empty draft: walk-in customer, cash payment, no items.
func (s *Service) Create() (*Draft, error) {
	if s == nil {
		return nil, errors.New("composer service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drafts == nil {
		s.drafts = make(map[string]*Draft)
	}
	draft := &Draft{
		ID:            uuid.NewString(),
		PaymentMethod: PaymentMethods[0],
		Items:         []Item{},
		ExpiresAt:     s.now().Add(s.ttl()),
	}
	s.drafts[draft.ID] = draft
	return draft, nil
}

// locked lookup; drops the draft when expired.
func (s *Service) find(id string) (*Draft, error) {
	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if !draft.ExpiresAt.IsZero() && draft.ExpiresAt.Before(s.now()) {
		delete(s.drafts, id)
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// AddItem appends a blank line item: no product, quantity 1, price 0.
func (s *Service) AddItem(id string) error {
	if s == nil {
		return errors.New("composer service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.find(id)
	if err != nil {
		return err
	}
	draft.Items = append(draft.Items, Item{Qty: 1})
	return nil
}

// RemoveItem deletes the item at index, preserving the order of the rest.
func (s *Service) RemoveItem(id string, index int) error {
	if s == nil {
		return errors.New("composer service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(draft.Items) {
		return ErrItemNotFound
	}
	draft.Items = append(draft.Items[:index], draft.Items[index+1:]...)
	return nil
}

// ItemPatch mutates a single field of a line item. Setting ProductID also
// snapshots the catalog price onto the item, replacing any manual override;
// Qty and UnitPrice edits touch only their own field.
type ItemPatch struct {
	ProductID *string
	Qty       *int
	UnitPrice *pricing.Money
}

// UpdateItem applies the patch to the item at index.
func (s *Service) UpdateItem(id string, index int, patch ItemPatch) error {
	if s == nil {
		return errors.New("composer service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(draft.Items) {
		return ErrItemNotFound
	}
	item := &draft.Items[index]
	if patch.ProductID != nil {
		item.ProductID = *patch.ProductID
		if s.Products != nil {
			if product, ok := s.Products.Product(item.ProductID); ok {
				item.UnitPrice = product.Price
			}
		}
	}
	if patch.Qty != nil {
		item.Qty = *patch.Qty
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = *patch.UnitPrice
	}
	return nil
}

// DraftPatch updates the order-level fields of a draft.
type DraftPatch struct {
	CustomerID    *string
	PaymentMethod *string
	Notes         *string
}

// SetDetails applies order-level edits. An empty or walk-in customer id
// clears the customer reference.
func (s *Service) SetDetails(id string, patch DraftPatch) error {
	if s == nil {
		return errors.New("composer service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.find(id)
	if err != nil {
		return err
	}
	if patch.CustomerID != nil {
		customer := strings.TrimSpace(*patch.CustomerID)
		if customer == "" || customer == WalkIn {
			draft.CustomerID = nil
		} else {
			draft.CustomerID = &customer
		}
	}
	if patch.PaymentMethod != nil {
		method := strings.TrimSpace(*patch.PaymentMethod)
		if !validPaymentMethod(method) {
			return common.NewAppError("VALIDATION", fmt.Sprintf("unknown payment method %q", method), http.StatusBadRequest, nil)
		}
		draft.PaymentMethod = method
	}
	if patch.Notes != nil {
		draft.Notes = *patch.Notes
	}
	return nil
}

func validPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Sweep removes expired drafts. Meant to run on a ticker.
func (s *Service) Sweep() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, draft := range s.drafts {
		if !draft.ExpiresAt.IsZero() && draft.ExpiresAt.Before(now) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}
