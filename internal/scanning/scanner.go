package scanning

import "context"

// ItemData is one extracted line item, before the editor assigns row IDs.
type ItemData struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitPriceIncTax float64 `json:"unitPriceIncTax"`
}

// InvoiceData contains the structured fields extracted from one document.
// Every field is best-effort: the decode step defaults anything the model
// could not determine, so callers always get a usable record.
type InvoiceData struct {
	Date                string     `json:"date"` // YYYY-MM-DD
	VendorName          string     `json:"vendorName"`
	RequesterName       string     `json:"requesterName"`
	DeliveryDestination string     `json:"deliveryDestination"`
	Items               []ItemData `json:"items"`
}

// Scanner defines the interface for invoice extraction providers.
type Scanner interface {
	// ScanInvoice analyzes an invoice image/PDF and extracts structured
	// line-item data. apiKey is the session credential; providers that do
	// not need one ignore it.
	ScanInvoice(ctx context.Context, data []byte, contentType string, apiKey string) (*InvoiceData, error)
	// NeedsAPIKey reports whether the provider requires a credential.
	NeedsAPIKey() bool
	// Close closes the scanner and releases resources
	Close() error
}

// extractionSystemInstruction frames the model as a university accounting
// clerk. The rules mirror what the office expects on purchase-request forms.
const extractionSystemInstruction = `あなたは大学の経理事務の専門家です。
渡された請求書・納品書・領収書の画像/PDFから、会計システム入力に必要な情報を抽出してください。

以下のルールを厳守してください：
1. 日付は YYYY-MM-DD 形式に統一してください。不明な場合は本日の日付を入れてください。
2. 商品名が長すぎる場合は、重要な型番やキーワードを残して要約してください。
3. 広告、クーポン、注釈などの明細以外のテキストは無視してください。
4. 金額はすべて「税込単価」として抽出してください。
5. 数量が明記されていない場合は 1 としてください。
6. 単位が不明な場合は「個」または「式」としてください。`

// extractionPrompt spells out the JSON shape for providers without
// structured-output support (Ollama). Gemini enforces the same shape through
// a response schema instead.
const extractionPrompt = `Extract the invoice data from this document.

Return ONLY valid JSON in this exact format:
{
  "date": "YYYY-MM-DD",
  "vendorName": "vendor or supplier name",
  "requesterName": "person ordering, if visible",
  "deliveryDestination": "delivery address or department name",
  "items": [
    {"name": "product name", "quantity": 1, "unit": "個", "unitPriceIncTax": 0}
  ]
}

Important:
- unitPriceIncTax is the tax-inclusive price of a single item, as a number
- quantity defaults to 1 when not printed on the document
- Do not include any text before or after the JSON
- Do not use markdown code blocks`
