package directory_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/directory"
)

type fakeQuerier struct {
	customers []directory.Customer
	err       error
}

func (f fakeQuerier) ListCustomers(_ context.Context) ([]directory.Customer, error) {
	return f.customers, f.err
}

func TestCustomersHandler(t *testing.T) {
	email := "budi@example.com"
	handler := &directory.Handler{Q: fakeQuerier{customers: []directory.Customer{
		{ID: "c-1", Name: "Budi Santoso", Email: &email},
		{ID: "c-2", Name: "Siti Rahma"},
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	rec := httptest.NewRecorder()
	handler.Customers(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []directory.Customer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, "budi@example.com", *resp.Data[0].Email)
	require.Nil(t, resp.Data[1].Email)
}

func TestCustomersHandlerError(t *testing.T) {
	handler := &directory.Handler{Q: fakeQuerier{err: errors.New("boom")}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	rec := httptest.NewRecorder()
	handler.Customers(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCustomersHandlerEmpty(t *testing.T) {
	handler := &directory.Handler{Q: fakeQuerier{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	rec := httptest.NewRecorder()
	handler.Customers(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
}
