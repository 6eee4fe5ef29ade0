package pricing

import "strconv"

// Money represents a monetary value stored in minor units.
type Money = int64

// Item describes a line item used for total calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Subtotal returns qty multiplied by the unit price for a single item.
func (it Item) Subtotal() Money {
	if it.Qty <= 0 {
		return 0
	}
	return Money(it.Qty) * it.UnitPrice
}

// Total sums qty multiplied by unit price across all items. It is computed on
// every call so edits after a previous read are always reflected.
func Total(items []Item) Money {
	var total Money
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// FormatIDR renders an amount the way the dashboard shows rupiah:
// "Rp 249.000" with dot-grouped thousands. Display only; stored values stay
// in minor units.
func FormatIDR(amount Money) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	grouped := make([]byte, 0, len(digits)+len(digits)/3)
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, d)
	}
	if negative {
		return "-Rp " + string(grouped)
	}
	return "Rp " + string(grouped)
}
