package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/catalog"
)

type fakeQuerier struct {
	products []catalog.Product
	calls    int
}

func (f *fakeQuerier) ListProducts(_ context.Context) ([]catalog.Product, error) {
	f.calls++
	return f.products, nil
}

func sku(s string) *string { return &s }

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p-1", Name: "Kaos Hitam", Price: 249000, StockQuantity: 12, SKU: sku("KH-01")},
		{ID: "p-2", Name: "Sepatu Putih", Price: 500000, StockQuantity: 0},
	}
}

func TestListUsesCacheOnSecondCall(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	querier := &fakeQuerier{products: testProducts()}
	svc := &catalog.Service{Q: querier, Cache: catalog.NewCache(client, time.Minute)}

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, querier.calls)

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, querier.calls)
}

func TestListWithoutCache(t *testing.T) {
	querier := &fakeQuerier{products: testProducts()}
	svc := &catalog.Service{Q: querier}

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Kaos Hitam", products[0].Name)
}

func TestSnapshotLookup(t *testing.T) {
	var snap catalog.Snapshot
	_, ok := snap.Product("p-1")
	require.False(t, ok)

	snap.Update(testProducts())
	p, ok := snap.Product("p-1")
	require.True(t, ok)
	require.EqualValues(t, 249000, p.Price)

	snap.Update(nil)
	_, ok = snap.Product("p-1")
	require.False(t, ok)
}

func TestProductsHandler(t *testing.T) {
	querier := &fakeQuerier{products: testProducts()}
	handler := &catalog.Handler{Svc: &catalog.Service{Q: querier}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.Products(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, "KH-01", *resp.Data[0].SKU)
	require.Nil(t, resp.Data[1].SKU)
}
