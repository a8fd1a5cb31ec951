package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sgmtd/order-parser/internal/scanning"
)

// IDGenerator generates unique IDs for line items and stored documents
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// scanTimeout bounds one extraction call. Vision models on multi-page PDFs
// are slow but not this slow.
const scanTimeout = 90 * time.Second

// allowedTypes is the fixed media-type allow-list, checked before any
// network call is attempted.
var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

// Service owns one editing session: the process-wide API key, the single
// current invoice and its stored source document. A new upload replaces the
// previous aggregate entirely; nothing outlives the process.
type Service struct {
	storage     Storage
	scanner     scanning.Scanner
	idGenerator IDGenerator
	timeSource  TimeSource

	mu         sync.Mutex
	apiKey     string
	invoice    *Invoice
	fileKey    string
	pending    bool
	generation uint64
}

// NewService creates a new Service with default ID generator and time source.
// apiKey seeds the session credential, typically from the environment.
func NewService(storage Storage, scanner scanning.Scanner, apiKey string) *Service {
	return NewServiceWithDeps(storage, scanner, apiKey, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(storage Storage, scanner scanning.Scanner, apiKey string, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		storage:     storage,
		scanner:     scanner,
		apiKey:      strings.TrimSpace(apiKey),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// InvoiceView is the calculated read model returned to the edit surface.
// Derived fields are recomputed from the aggregate on every call.
type InvoiceView struct {
	Date                string               `json:"date"`
	VendorName          string               `json:"vendorName"`
	RequesterName       string               `json:"requesterName"`
	DeliveryDestination string               `json:"deliveryDestination"`
	Items               []CalculatedLineItem `json:"items"`
	TotalAmount         int64                `json:"totalAmount"`
}

// SaveAPIKey stores the session credential. It is never written to disk.
func (s *Service) SaveAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = strings.TrimSpace(key)
}

// ClearAPIKey forgets the session credential
func (s *Service) ClearAPIKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = ""
}

// HasAPIKey reports whether a credential is configured
func (s *Service) HasAPIKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey != ""
}

// ProcessDocument stores an uploaded document, runs extraction on it and
// replaces the current invoice with the result. Only one extraction may be
// in flight at a time; a result arriving after the session was reset is
// discarded rather than applied to stale state.
func (s *Service) ProcessDocument(filename string, data []byte, contentType string) (*InvoiceView, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !allowedTypes[contentType] {
		return nil, ErrUnsupportedType
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, ErrScanInFlight
	}
	if s.scanner.NeedsAPIKey() && s.apiKey == "" {
		s.mu.Unlock()
		return nil, ErrAPIKeyMissing
	}
	apiKey := s.apiKey
	s.pending = true
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()

	fileKey := s.idGenerator.Generate()
	if err := s.storage.Save(fileKey, StoredDocument{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	parsed, err := s.scanner.ScanInvoice(ctx, data, contentType, apiKey)
	if err != nil {
		slog.Error("Failed to analyze document",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved file since extraction failed
		if derr := s.storage.Delete(fileKey); derr != nil {
			slog.Warn("Failed to delete document", "key", fileKey, "error", derr)
		}
		return nil, fmt.Errorf("analyzing document: %w", err)
	}

	inv := s.buildInvoice(parsed)

	s.mu.Lock()
	if s.generation != generation {
		// The operator reset the session while the scan was running
		s.mu.Unlock()
		s.storage.Delete(fileKey)
		return nil, ErrSessionReset
	}
	previousKey := s.fileKey
	s.invoice = inv
	s.fileKey = fileKey
	view := s.viewLocked()
	s.mu.Unlock()

	if previousKey != "" {
		if err := s.storage.Delete(previousKey); err != nil {
			slog.Warn("Failed to delete previous document", "key", previousKey, "error", err)
		}
	}

	return view, nil
}

// buildInvoice assigns row IDs to the extracted data. Field defaulting
// already happened in the decode step.
func (s *Service) buildInvoice(parsed *scanning.InvoiceData) *Invoice {
	inv := &Invoice{
		Date:                parsed.Date,
		VendorName:          parsed.VendorName,
		RequesterName:       parsed.RequesterName,
		DeliveryDestination: parsed.DeliveryDestination,
		Items:               make([]*LineItem, 0, len(parsed.Items)),
	}
	if inv.Date == "" {
		inv.Date = s.timeSource.Now().Format("2006-01-02")
	}
	for _, item := range parsed.Items {
		inv.Items = append(inv.Items, &LineItem{
			ID:              s.idGenerator.Generate(),
			Name:            item.Name,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			UnitPriceIncTax: item.UnitPriceIncTax,
		})
	}
	return inv
}

// CurrentInvoice returns the calculated view of the loaded invoice
func (s *Service) CurrentInvoice() (*InvoiceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice == nil {
		return nil, ErrNoInvoice
	}
	return s.viewLocked(), nil
}

// Reset discards the current invoice and its stored source document
func (s *Service) Reset() {
	s.mu.Lock()
	s.generation++
	s.invoice = nil
	fileKey := s.fileKey
	s.fileKey = ""
	s.mu.Unlock()

	if fileKey != "" {
		if err := s.storage.Delete(fileKey); err != nil {
			slog.Warn("Failed to delete document", "key", fileKey, "error", err)
		}
	}
}

// SetHeaderField replaces one header attribute on the current invoice
func (s *Service) SetHeaderField(field string, value any) (*InvoiceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice == nil {
		return nil, ErrNoInvoice
	}
	s.invoice.SetHeaderField(field, value)
	return s.viewLocked(), nil
}

// AddItem appends a new empty row to the current invoice
func (s *Service) AddItem() (*InvoiceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice == nil {
		return nil, ErrNoInvoice
	}
	s.invoice.AddItem(s.idGenerator.Generate())
	return s.viewLocked(), nil
}

// UpdateItemField replaces one field on the identified row. Unknown row IDs
// are a no-op, matching the aggregate's behavior.
func (s *Service) UpdateItemField(id, field string, value any) (*InvoiceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice == nil {
		return nil, ErrNoInvoice
	}
	s.invoice.UpdateItemField(id, field, value)
	return s.viewLocked(), nil
}

// DeleteItem removes the identified row. No-op when absent.
func (s *Service) DeleteItem(id string) (*InvoiceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice == nil {
		return nil, ErrNoInvoice
	}
	s.invoice.DeleteItem(id)
	return s.viewLocked(), nil
}

// ExportCSV renders the current invoice as purchase-request CSV and returns
// the date-stamped filename alongside the payload.
func (s *Service) ExportCSV() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice == nil {
		return "", nil, ErrNoInvoice
	}
	return ExportFilename(s.invoice), ExportCSV(s.invoice), nil
}

// DocumentFile returns the stored source document for preview
func (s *Service) DocumentFile() (StoredDocument, error) {
	s.mu.Lock()
	fileKey := s.fileKey
	s.mu.Unlock()

	if fileKey == "" {
		return StoredDocument{}, ErrNoInvoice
	}
	doc, err := s.storage.Get(fileKey)
	if err != nil {
		return StoredDocument{}, fmt.Errorf("getting document file: %w", err)
	}
	return doc, nil
}

// viewLocked builds the calculated read model. Callers hold s.mu.
func (s *Service) viewLocked() *InvoiceView {
	return &InvoiceView{
		Date:                s.invoice.Date,
		VendorName:          s.invoice.VendorName,
		RequesterName:       s.invoice.RequesterName,
		DeliveryDestination: s.invoice.DeliveryDestination,
		Items:               s.invoice.CalculatedItems(),
		TotalAmount:         s.invoice.TotalAmount(),
	}
}
