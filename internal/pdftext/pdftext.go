// Package pdftext extracts linear plain text from PDF documents. Two engines
// are chained: an in-process reader preferred for speed, and the pdftotext
// CLI as fallback. Only when every engine fails does extraction surface an
// error; it is the one failure the parsing core ever reports to callers.
package pdftext

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quizbank/quizbank-cli/internal/config"
)

// ErrExtraction reports that every configured extraction engine failed for a
// document. Check with errors.Is / eris.Is.
var ErrExtraction = eris.New("pdftext: text extraction failed")

// Extractor extracts text content from a PDF file.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Chain tries each engine in order and returns the first successful result.
type Chain struct {
	engines []Extractor
}

// NewChain creates a Chain over the given engines.
func NewChain(engines ...Extractor) *Chain {
	return &Chain{engines: engines}
}

// NewExtractor creates the default extraction chain from config: native
// reader first, pdftotext second.
func NewExtractor(cfg config.PDFConfig) *Chain {
	return NewChain(NewNative(), NewPdfToText(cfg.PdfToTextPath))
}

// ExtractText runs the engines in order. Engine failures are logged and the
// next engine runs; when all fail the returned error wraps ErrExtraction.
func (c *Chain) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	var lastErr error
	for _, engine := range c.engines {
		text, err := engine.ExtractText(ctx, pdfPath)
		if err == nil {
			return text, nil
		}
		lastErr = err
		zap.L().Warn("pdftext: engine failed, trying next",
			zap.String("engine", fmt.Sprintf("%T", engine)),
			zap.String("path", pdfPath),
			zap.Error(err),
		)
	}
	return "", eris.Wrapf(ErrExtraction, "%s (last engine error: %v)", pdfPath, lastErr)
}
