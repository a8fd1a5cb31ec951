package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// defaultUnit is used for extracted items with no recognizable unit label.
const defaultUnit = "個"

// defaultItemName marks rows where the model could not read the product name.
const defaultItemName = "不明な商品"

// ParseInvoiceJSON decodes a model response into InvoiceData. Malformed or
// partial fields are defaulted rather than rejected so one unreadable cell
// never costs the user the whole document. A response with no JSON object at
// all is a decode failure.
func ParseInvoiceJSON(text string) (*InvoiceData, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	// Items stays raw so a malformed items value degrades to an empty list
	// instead of failing the whole document
	var envelope struct {
		Date                string          `json:"date"`
		VendorName          string          `json:"vendorName"`
		RequesterName       string          `json:"requesterName"`
		DeliveryDestination string          `json:"deliveryDestination"`
		Items               json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data := InvoiceData{
		Date:                normalizeDate(envelope.Date),
		VendorName:          strings.TrimSpace(envelope.VendorName),
		RequesterName:       strings.TrimSpace(envelope.RequesterName),
		DeliveryDestination: strings.TrimSpace(envelope.DeliveryDestination),
		Items:               []ItemData{},
	}

	if len(envelope.Items) > 0 {
		var items []ItemData
		if err := json.Unmarshal(envelope.Items, &items); err == nil && items != nil {
			data.Items = items
		}
	}
	for i := range data.Items {
		item := &data.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			item.Name = defaultItemName
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		item.Unit = strings.TrimSpace(item.Unit)
		if item.Unit == "" {
			item.Unit = defaultUnit
		}
	}

	return &data, nil
}

// normalizeDate coerces the extracted date to YYYY-MM-DD, falling back to
// today when the model produced nothing parseable.
func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().Format("2006-01-02")
	}

	if d, err := time.Parse("2006-01-02", date); err == nil {
		return d.Format("2006-01-02")
	}

	// Try other common formats
	formats := []string{
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
	}
	for _, format := range formats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}

	return time.Now().Format("2006-01-02")
}
