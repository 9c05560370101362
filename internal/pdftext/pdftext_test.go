package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belegwerk/belegscan/internal/config"
)

func TestNewExtractor_NativeDefault(t *testing.T) {
	ext, err := NewExtractor(config.PDFTextConfig{Provider: ""})
	require.NoError(t, err)
	assert.IsType(t, &Native{}, ext)
}

func TestNewExtractor_PdfToText(t *testing.T) {
	ext, err := NewExtractor(config.PDFTextConfig{Provider: "pdftotext", PdfToTextPath: "/usr/bin/pdftotext"})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ext)
}

func TestNewExtractor_Auto(t *testing.T) {
	ext, err := NewExtractor(config.PDFTextConfig{Provider: "auto"})
	require.NoError(t, err)
	assert.IsType(t, &Auto{}, ext)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := NewExtractor(config.PDFTextConfig{Provider: "tesseract"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "tesseract"`)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Für den Zeitraum", Normalize("Für den Zeitraum"))
	assert.Equal(t, "Summe 100,00\nEnde\n", Normalize("Summe 100,00\r\nEnde\r\n"))
	assert.Equal(t, "a\nb", Normalize("a\rb"))
}

func TestPdfToText_BinPath(t *testing.T) {
	p := NewPdfToText("")
	assert.Equal(t, "pdftotext", p.binPath)

	p = NewPdfToText("/custom/pdftotext")
	assert.Equal(t, "/custom/pdftotext", p.binPath)
}

func TestPdfToText_ExtractText_Success(t *testing.T) {
	// Fake pdftotext that prints a CRLF-terminated invoice line.
	tmpDir := t.TempDir()
	fakeBin := filepath.Join(tmpDir, "pdftotext")
	script := "#!/bin/sh\nprintf 'Summe 100,00\\r\\n'\n"
	require.NoError(t, os.WriteFile(fakeBin, []byte(script), 0755))

	p := NewPdfToText(fakeBin)
	text, err := p.ExtractText(context.Background(), "/tmp/dummy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Summe 100,00\n", text)
}

func TestPdfToText_ExtractText_BinaryNotFound(t *testing.T) {
	p := NewPdfToText("/nonexistent/pdftotext")
	_, err := p.ExtractText(context.Background(), "/tmp/test.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestPdfToText_ExtractText_ExitError(t *testing.T) {
	tmpDir := t.TempDir()
	fakeBin := filepath.Join(tmpDir, "pdftotext")
	script := "#!/bin/sh\necho 'Syntax Error: bad xref' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(fakeBin, []byte(script), 0755))

	p := NewPdfToText(fakeBin)
	_, err := p.ExtractText(context.Background(), "/tmp/broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error: bad xref")
}

func TestNative_ExtractText_MissingFile(t *testing.T) {
	n := NewNative()
	_, err := n.ExtractText(context.Background(), "/nonexistent/file.pdf")
	require.Error(t, err)
}

func TestNative_ExtractText_NotAPDF(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "junk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	n := NewNative()
	_, err := n.ExtractText(context.Background(), path)
	require.Error(t, err)
}

func TestAuto_FallsBackToPdfToText(t *testing.T) {
	tmpDir := t.TempDir()

	junk := filepath.Join(tmpDir, "scan.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("not a real pdf"), 0644))

	fakeBin := filepath.Join(tmpDir, "pdftotext")
	script := "#!/bin/sh\necho 'Bruttorechnungsbetrag 119,00'\n"
	require.NoError(t, os.WriteFile(fakeBin, []byte(script), 0755))

	a := NewAuto(fakeBin)
	text, err := a.ExtractText(context.Background(), junk)
	require.NoError(t, err)
	assert.Contains(t, text, "Bruttorechnungsbetrag 119,00")
}
