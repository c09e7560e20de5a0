// Package vision defines the receipt-extraction collaborator: an
// injected strategy that turns an image into candidate transactions.
// The concrete backend is passed explicitly to the import pipeline;
// there is no process-wide mutable provider.
package vision

import (
	"context"

	"saldo/internal/core"
)

// Result is the typed outcome of one extraction call. Configuration or
// availability failures surface as Success=false with a message; they
// never escape the pipeline as a panic.
type Result struct {
	Success      bool
	Transactions []core.ExtractedTransaction
	Message      string
}

// Extractor turns raw image bytes into candidate transactions.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (Result, error)
}
