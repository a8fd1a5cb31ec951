package invoice

import "math"

// CalculatedLineItem is a read-only projection of a LineItem with the derived
// amounts filled in. It is recomputed from the current item state on every
// read and never stored, so the derived values cannot drift from edits.
type CalculatedLineItem struct {
	LineItem
	AmountIncTax int64 `json:"amountIncTax"`
	NetPrice     int64 `json:"netPrice"`
	TaxAmount    int64 `json:"taxAmount"`
}

// Calculate derives the tax-inclusive amount, tax-exclusive price and tax
// amount for one item. Truncation is floor (toward negative infinity), not
// rounding. The tax amount is always the remainder, so
// NetPrice+TaxAmount == AmountIncTax holds exactly for every item.
//
// The 10% consumption tax is fixed, not configurable. The tax-exclusive base
// is floor(amount / 1.1), computed as floor(amount*10 / 11) in integer
// arithmetic: IEEE division gets exact multiples of 11 wrong
// (1100/1.1 == 999.9999999999999, which would floor to 999 instead of 1000).
func Calculate(item LineItem) CalculatedLineItem {
	amount := int64(math.Floor(item.UnitPriceIncTax * item.Quantity))
	net := floorDiv(amount*10, 11)
	return CalculatedLineItem{
		LineItem:     item,
		AmountIncTax: amount,
		NetPrice:     net,
		TaxAmount:    amount - net,
	}
}

// floorDiv divides rounding toward negative infinity. Go's / truncates
// toward zero, which would shift negative amounts up by one yen.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CalculatedItems projects every item on the invoice in row order.
func (inv *Invoice) CalculatedItems() []CalculatedLineItem {
	items := make([]CalculatedLineItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, Calculate(*item))
	}
	return items
}

// TotalAmount sums the already-truncated per-item amounts. Truncating the
// aggregate sum instead would generally give a different result.
func (inv *Invoice) TotalAmount() int64 {
	var total int64
	for _, item := range inv.Items {
		total += Calculate(*item).AmountIncTax
	}
	return total
}
