package pdftext

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Auto tries the native reader first and falls back to pdftotext when it
// errors or produces no text at all.
type Auto struct {
	native *Native
	shell  *PdfToText
}

// NewAuto creates an Auto extractor using the given pdftotext binary for
// the fallback path.
func NewAuto(binPath string) *Auto {
	return &Auto{
		native: NewNative(),
		shell:  NewPdfToText(binPath),
	}
}

// ExtractText implements Extractor.
func (a *Auto) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	text, err := a.native.ExtractText(ctx, pdfPath)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		zap.L().Debug("native reader failed, trying pdftotext",
			zap.String("file", pdfPath),
			zap.Error(err))
	}
	return a.shell.ExtractText(ctx, pdfPath)
}
