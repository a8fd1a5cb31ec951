package scanning

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Scanner interface using Google Gemini. The client is
// built per call because the API key belongs to the editing session, not the
// process: the operator can save or clear it at any time.
type Gemini struct {
	modelName string
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(modelName string) *Gemini {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &Gemini{modelName: modelName}
}

// NeedsAPIKey reports that Gemini requires a credential
func (g *Gemini) NeedsAPIKey() bool {
	return true
}

// invoiceSchema constrains the model output to the invoice shape, so the
// response is machine-parseable JSON rather than prose.
func invoiceSchema() *genai.Schema {
	itemSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":            {Type: genai.TypeString, Description: "Product name or description. Keep important model numbers."},
			"quantity":        {Type: genai.TypeNumber, Description: "Quantity of the item."},
			"unit":            {Type: genai.TypeString, Description: "Unit of measure (e.g., 個, 式, 箱). Default to '個' if unknown."},
			"unitPriceIncTax": {Type: genai.TypeNumber, Description: "Unit price including tax."},
		},
		Required: []string{"name", "quantity", "unitPriceIncTax"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":                {Type: genai.TypeString, Description: "Invoice or order date in YYYY-MM-DD format."},
			"vendorName":          {Type: genai.TypeString, Description: "Name of the vendor/supplier."},
			"requesterName":       {Type: genai.TypeString, Description: "Name of the person ordering (if visible)."},
			"deliveryDestination": {Type: genai.TypeString, Description: "Delivery address or department name."},
			"items": {
				Type:        genai.TypeArray,
				Items:       itemSchema,
				Description: "List of purchased items.",
			},
		},
		Required: []string{"date", "vendorName", "items"},
	}
}

// ScanInvoice analyzes an invoice document and extracts structured fields
func (g *Gemini) ScanInvoice(ctx context.Context, data []byte, contentType string, apiKey string) (*InvoiceData, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	// Prepare image data (render PDF page / convert to PNG if needed)
	imageData, err := prepareImageData(data, contentType)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(extractionSystemInstruction)},
	}
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig.ResponseSchema = invoiceSchema()

	resp, err := model.GenerateContent(ctx,
		genai.ImageData("png", imageData),
		genai.Text("Extract the invoice data according to the JSON schema."),
	)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	result, err := ParseInvoiceJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("parsing invoice data: %w", err)
	}

	return result, nil
}

// Close closes the Gemini scanner (clients are per-call)
func (g *Gemini) Close() error {
	return nil
}
