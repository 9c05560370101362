package scan

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/belegwerk/belegscan/internal/extract"
	"github.com/belegwerk/belegscan/internal/model"
	"github.com/belegwerk/belegscan/internal/pdftext"
)

// Options configures a scan.
type Options struct {
	InputDir    string
	Recursive   bool
	Concurrency int
}

// Scanner runs the extraction heuristics over a directory of PDFs.
type Scanner struct {
	pdf       pdftext.Extractor
	extractor *extract.Extractor
}

// New creates a Scanner. A nil rules uses the built-in defaults.
func New(pdf pdftext.Extractor, rules *extract.Rules) *Scanner {
	return &Scanner{
		pdf:       pdf,
		extractor: extract.New(rules),
	}
}

// Run scans opts.InputDir and returns one Result per PDF, in enumeration
// order regardless of concurrency. Individual files that fail to parse
// get an error Result; an unreadable directory or one without any PDFs
// fails the run.
func (s *Scanner) Run(ctx context.Context, opts Options) ([]model.Result, error) {
	files, err := ListPDFs(opts.InputDir, opts.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, eris.Errorf("scan: no PDF files in %s", opts.InputDir)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("scanning",
		zap.String("dir", opts.InputDir),
		zap.Int("files", len(files)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]model.Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = s.scanFile(gctx, opts.InputDir, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "scan: batch")
	}

	return results, nil
}

func (s *Scanner) scanFile(ctx context.Context, baseDir, path string) model.Result {
	name := displayName(baseDir, path)
	log := zap.L().With(zap.String("file", name))

	res := model.Result{FileName: name}

	text, err := s.pdf.ExtractText(ctx, path)
	if err != nil {
		res.Err = err.Error()
		log.Warn("text extraction failed", zap.Error(err))
		return res // don't abort the batch on individual failure
	}

	res.RawAmount, res.NormalizedAmount = s.extractor.Amount(text)
	res.Period = s.extractor.Period(text)

	log.Debug("scanned",
		zap.String("raw_amount", res.RawAmount),
		zap.String("period", res.Period),
	)
	return res
}
