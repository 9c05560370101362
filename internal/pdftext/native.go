package pdftext

import (
	"context"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Native extracts text with a pure Go PDF reader. It needs no external
// tools, but PDFs with unusual font encodings may come back empty.
type Native struct{}

// NewNative creates a Native extractor.
func NewNative() *Native {
	return &Native{}
}

// ExtractText reads every page and concatenates the plain text, pages
// separated by form feeds. Pages that fail to decode are skipped so one
// broken page does not lose the rest of the document.
func (n *Native) ExtractText(ctx context.Context, pdfPath string) (text string, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("pdftext: reader panic on %s: %v", pdfPath, r)
		}
	}()

	f, reader, err := pdflib.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "pdftext: open %s", pdfPath)
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrapf(err, "pdftext: canceled reading %s", pdfPath)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			zap.L().Debug("skipping undecodable page",
				zap.String("file", pdfPath),
				zap.Int("page", i),
				zap.Error(err))
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\f")
		}
		buf.WriteString(pageText)
	}
	return Normalize(buf.String()), nil
}
