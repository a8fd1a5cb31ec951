package invoice

import "errors"

// Sentinel errors for the upload and edit workflow. Handlers map these to
// HTTP statuses; everything else surfaces as a generic processing failure.
var (
	// ErrUnsupportedType is returned before any network call when the
	// uploaded media type is outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type: only PDF, JPEG, PNG and WebP are accepted")

	// ErrAPIKeyMissing blocks the upload flow until a credential is saved.
	ErrAPIKeyMissing = errors.New("api key is not configured")

	// ErrScanInFlight enforces a single extraction at a time.
	ErrScanInFlight = errors.New("another document is already being analyzed")

	// ErrNoInvoice is returned by reads and edits when no document is loaded.
	ErrNoInvoice = errors.New("no invoice is loaded")

	// ErrSessionReset is returned when an extraction finishes after the
	// session it belonged to was reset or replaced; its result is discarded.
	ErrSessionReset = errors.New("session was reset while the document was being analyzed")
)
