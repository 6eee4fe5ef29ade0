package composer_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/composer"
	"github.com/noah-isme/kasir-api/internal/store"
)

type insertCall struct {
	table   string
	records []store.Record
}

type fakeStore struct {
	calls   []insertCall
	failOn  map[string]error
	orderID string
}

func (f *fakeStore) Insert(_ context.Context, table string, records []store.Record) ([]store.Record, error) {
	f.calls = append(f.calls, insertCall{table: table, records: records})
	if err, ok := f.failOn[table]; ok {
		return nil, err
	}
	if table == "orders" {
		id := f.orderID
		if id == "" {
			id = "ord-1"
		}
		return []store.Record{{"id": id}}, nil
	}
	return records, nil
}

type fakeNav struct {
	paths []string
}

func (n *fakeNav) Push(path string) { n.paths = append(n.paths, path) }

func newDraftWithItems(t *testing.T, db store.Client) (*composer.Service, string) {
	t.Helper()
	svc := &composer.Service{DB: db}
	draft, err := svc.Create()
	require.NoError(t, err)
	require.NoError(t, svc.AddItem(draft.ID))
	require.NoError(t, svc.AddItem(draft.ID))
	require.NoError(t, svc.UpdateItem(draft.ID, 0, composer.ItemPatch{ProductID: strPtr("p-1"), Qty: intPtr(2), UnitPrice: moneyPtr(10)}))
	require.NoError(t, svc.UpdateItem(draft.ID, 1, composer.ItemPatch{ProductID: strPtr("p-2"), Qty: intPtr(1), UnitPrice: moneyPtr(5)}))
	return svc, draft.ID
}

func TestSubmitEmptyDraftRejected(t *testing.T) {
	db := &fakeStore{}
	svc := &composer.Service{DB: db}
	draft, err := svc.Create()
	require.NoError(t, err)

	nav := &fakeNav{}
	_, err = svc.Submit(context.Background(), draft.ID, nav)
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, "Please add at least one item to the order", appErr.Message)

	require.Empty(t, db.calls)
	require.Empty(t, nav.paths)

	view, err := svc.View(draft.ID)
	require.NoError(t, err)
	require.False(t, view.Submitting)
	require.Equal(t, "Please add at least one item to the order", view.LastError)
}

func TestSubmitWritesOrderThenItems(t *testing.T) {
	db := &fakeStore{orderID: "ord-42"}
	svc, draftID := newDraftWithItems(t, db)
	require.NoError(t, svc.SetDetails(draftID, composer.DraftPatch{
		PaymentMethod: strPtr("qris"),
		Notes:         strPtr("  antar ke meja 4  "),
	}))

	nav := &fakeNav{}
	orderID, err := svc.Submit(context.Background(), draftID, nav)
	require.NoError(t, err)
	require.Equal(t, "ord-42", orderID)

	require.Len(t, db.calls, 2)
	require.Equal(t, "orders", db.calls[0].table)
	require.Equal(t, "order_items", db.calls[1].table)

	order := db.calls[0].records[0]
	require.Nil(t, order["customer_id"])
	require.EqualValues(t, 25, order["total_amount"])
	require.Equal(t, "pending", order["status"])
	require.Equal(t, "qris", order["payment_method"])
	require.Equal(t, "antar ke meja 4", order["notes"])

	items := db.calls[1].records
	require.Len(t, items, 2)
	require.Equal(t, "ord-42", items[0]["order_id"])
	require.Equal(t, "p-1", items[0]["product_id"])
	require.Equal(t, 2, items[0]["quantity"])
	require.EqualValues(t, 10, items[0]["unit_price"])
	require.EqualValues(t, 20, items[0]["total_price"])
	require.EqualValues(t, 5, items[1]["total_price"])

	require.Equal(t, []string{"/orders/ord-42"}, nav.paths)

	// draft is gone after a successful submit
	_, err = svc.View(draftID)
	require.ErrorIs(t, err, composer.ErrDraftNotFound)
}

func TestSubmitNamedCustomer(t *testing.T) {
	db := &fakeStore{}
	svc, draftID := newDraftWithItems(t, db)
	require.NoError(t, svc.SetDetails(draftID, composer.DraftPatch{CustomerID: strPtr("c-7")}))

	_, err := svc.Submit(context.Background(), draftID, &fakeNav{})
	require.NoError(t, err)
	require.Equal(t, "c-7", db.calls[0].records[0]["customer_id"])
}

func TestSubmitOrderInsertFails(t *testing.T) {
	db := &fakeStore{failOn: map[string]error{"orders": errors.New("connection refused")}}
	svc, draftID := newDraftWithItems(t, db)

	nav := &fakeNav{}
	_, err := svc.Submit(context.Background(), draftID, nav)
	require.Error(t, err)

	// no item insert is attempted when the order insert fails
	require.Len(t, db.calls, 1)
	require.Empty(t, nav.paths)

	view, err := svc.View(draftID)
	require.NoError(t, err)
	require.False(t, view.Submitting)
	require.Equal(t, "failed to create order", view.LastError)
}

func TestSubmitItemInsertFailsKeepsDraft(t *testing.T) {
	storeErr := common.NewAppError("STORE_ERROR", "null value in column \"product_id\"", http.StatusBadGateway, nil)
	db := &fakeStore{failOn: map[string]error{"order_items": storeErr}}
	svc, draftID := newDraftWithItems(t, db)

	nav := &fakeNav{}
	_, err := svc.Submit(context.Background(), draftID, nav)
	require.Error(t, err)

	require.Len(t, db.calls, 2)
	require.Empty(t, nav.paths)

	// the draft survives so the cashier can retry; the store message surfaces
	view, viewErr := svc.View(draftID)
	require.NoError(t, viewErr)
	require.False(t, view.Submitting)
	require.Equal(t, "null value in column \"product_id\"", view.LastError)
}

func TestSubmitReentrancyGuard(t *testing.T) {
	db := &fakeStore{}
	svc, draftID := newDraftWithItems(t, db)

	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &blockingStore{inner: db, release: release, started: started}
	svc.DB = blocking

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), draftID, &fakeNav{})
		done <- err
	}()
	<-started

	_, err := svc.Submit(context.Background(), draftID, &fakeNav{})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "SUBMIT_IN_PROGRESS", appErr.Code)

	close(release)
	require.NoError(t, <-done)
}

type blockingStore struct {
	inner   store.Client
	release chan struct{}
	started chan struct{}
	once    bool
}

func (b *blockingStore) Insert(ctx context.Context, table string, records []store.Record) ([]store.Record, error) {
	if !b.once {
		b.once = true
		close(b.started)
		<-b.release
	}
	return b.inner.Insert(ctx, table, records)
}
