package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// Header field names accepted by SetHeaderField.
const (
	FieldDate                = "date"
	FieldVendorName          = "vendorName"
	FieldRequesterName       = "requesterName"
	FieldDeliveryDestination = "deliveryDestination"
)

// Line item field names accepted by UpdateItemField.
const (
	ItemFieldName            = "name"
	ItemFieldQuantity        = "quantity"
	ItemFieldUnit            = "unit"
	ItemFieldUnitPriceIncTax = "unitPriceIncTax"
)

// DefaultUnit is the unit label for new rows.
const DefaultUnit = "個"

// LineItem is one purchased item on the invoice
type LineItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitPriceIncTax float64 `json:"unitPriceIncTax"` // Single item price including tax
}

// Invoice is the editable document aggregate for one uploaded invoice or
// receipt. It lives only in memory for the duration of the editing session.
type Invoice struct {
	Date                string      `json:"date"`
	VendorName          string      `json:"vendorName"`
	RequesterName       string      `json:"requesterName"`
	DeliveryDestination string      `json:"deliveryDestination"`
	Items               []*LineItem `json:"items"`
}

// SetHeaderField replaces one header attribute. Unknown field names are
// ignored; header values carry no validation beyond string coercion.
func (inv *Invoice) SetHeaderField(field string, value any) {
	switch field {
	case FieldDate:
		inv.Date = coerceString(value)
	case FieldVendorName:
		inv.VendorName = coerceString(value)
	case FieldRequesterName:
		inv.RequesterName = coerceString(value)
	case FieldDeliveryDestination:
		inv.DeliveryDestination = coerceString(value)
	}
}

// AddItem appends a new empty row with the given ID and returns it.
func (inv *Invoice) AddItem(id string) *LineItem {
	item := &LineItem{
		ID:       id,
		Quantity: 1,
		Unit:     DefaultUnit,
	}
	inv.Items = append(inv.Items, item)
	return item
}

// UpdateItemField replaces the named field on the item with the given ID.
// A stale or unknown ID is a silent no-op so the edit surface never errors
// on a row that was deleted under it.
func (inv *Invoice) UpdateItemField(id, field string, value any) {
	item := inv.findItem(id)
	if item == nil {
		return
	}
	switch field {
	case ItemFieldName:
		item.Name = coerceString(value)
	case ItemFieldQuantity:
		item.Quantity = coerceNumber(value)
	case ItemFieldUnit:
		item.Unit = coerceString(value)
	case ItemFieldUnitPriceIncTax:
		item.UnitPriceIncTax = coerceNumber(value)
	}
}

// DeleteItem removes the item with the given ID, preserving the order of the
// remaining rows. No-op when the ID is absent.
func (inv *Invoice) DeleteItem(id string) {
	for i, item := range inv.Items {
		if item.ID == id {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return
		}
	}
}

func (inv *Invoice) findItem(id string) *LineItem {
	for _, item := range inv.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// coerceNumber mirrors the numeric inputs of the edit surface: numbers pass
// through, numeric strings are parsed, anything else becomes 0.
func coerceNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
