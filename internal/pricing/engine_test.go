package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/pricing"
)

func TestTotal(t *testing.T) {
	require.EqualValues(t, 0, pricing.Total(nil))
	require.EqualValues(t, 0, pricing.Total([]pricing.Item{}))

	items := []pricing.Item{
		{Qty: 2, UnitPrice: 10},
		{Qty: 1, UnitPrice: 5},
	}
	require.EqualValues(t, 25, pricing.Total(items))
	require.EqualValues(t, 20, items[0].Subtotal())
	require.EqualValues(t, 5, items[1].Subtotal())
}

func TestTotalIgnoresNonPositiveQty(t *testing.T) {
	items := []pricing.Item{
		{Qty: 0, UnitPrice: 100},
		{Qty: -3, UnitPrice: 100},
		{Qty: 1, UnitPrice: 100},
	}
	require.EqualValues(t, 100, pricing.Total(items))
}

func TestFormatIDR(t *testing.T) {
	require.Equal(t, "Rp 0", pricing.FormatIDR(0))
	require.Equal(t, "Rp 500", pricing.FormatIDR(500))
	require.Equal(t, "Rp 1.000", pricing.FormatIDR(1000))
	require.Equal(t, "Rp 249.000", pricing.FormatIDR(249000))
	require.Equal(t, "Rp 12.345.678", pricing.FormatIDR(12345678))
	require.Equal(t, "-Rp 1.500", pricing.FormatIDR(-1500))
}
