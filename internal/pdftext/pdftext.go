package pdftext

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/belegwerk/belegscan/internal/config"
)

// Extractor extracts plain text from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.PDFTextConfig) (Extractor, error) {
	switch cfg.Provider {
	case "native", "":
		return NewNative(), nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "auto":
		return NewAuto(cfg.PdfToTextPath), nil
	default:
		return nil, eris.Errorf("pdftext: unknown provider %q", cfg.Provider)
	}
}

// Normalize canonicalizes extracted text before pattern matching. Some
// readers emit decomposed umlauts, which would slip past the German
// keyword patterns, so everything is folded to NFC. Line endings become
// plain LF.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}
