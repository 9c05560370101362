package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/belegwerk/belegscan/internal/export"
	"github.com/belegwerk/belegscan/internal/model"
	"github.com/belegwerk/belegscan/internal/pdftext"
	"github.com/belegwerk/belegscan/internal/scan"
)

var (
	scanInput       string
	scanOutput      string
	scanFormat      string
	scanRecursive   bool
	scanConcurrency int
	scanNoHistory   bool
	scanRulesPath   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory of PDF invoices and write the result table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("scan"); err != nil {
			return err
		}

		rules, err := loadRules(scanRulesPath)
		if err != nil {
			return err
		}
		pdf, err := pdftext.NewExtractor(cfg.PDFText)
		if err != nil {
			return err
		}

		started := time.Now()
		results, err := scan.New(pdf, rules).Run(ctx, scan.Options{
			InputDir:    scanInput,
			Recursive:   scanRecursive,
			Concurrency: scanConcurrency,
		})
		if err != nil {
			return err
		}

		writeErr := export.Write(results, scanOutput, scanFormat)

		if !scanNoHistory {
			saveScanRun(ctx, results, started, writeErr)
		}
		if writeErr != nil {
			return writeErr
		}

		amounts, periods, failures := model.Summarize(results)
		fmt.Printf("Scanned %d files: %d amounts, %d periods, %d unreadable. Wrote %s\n",
			len(results), amounts, periods, failures, scanOutput)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanInput, "input", "i", "./receipts", "input directory of PDF files")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "./receipt_totals_with_duration_textonly.csv", "output table file path")
	scanCmd.Flags().StringVar(&scanFormat, "format", export.FormatCSV, "output format (csv, xlsx)")
	scanCmd.Flags().BoolVar(&scanRecursive, "recursive", false, "include subdirectories")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 1, "max files extracted at once")
	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "skip recording the run in scan history")
	scanCmd.Flags().StringVar(&scanRulesPath, "rules", "", "extraction rules override file (YAML)")
	rootCmd.AddCommand(scanCmd)
}

// saveScanRun records the finished batch in the history store. Store
// problems are logged and swallowed; they never fail a scan whose output
// was already written.
func saveScanRun(ctx context.Context, results []model.Result, started time.Time, writeErr error) {
	st, err := initStore()
	if err != nil {
		zap.L().Warn("scan history unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("scan history migrate failed", zap.Error(err))
		return
	}

	amounts, periods, failures := model.Summarize(results)
	status := model.RunStatusComplete
	if writeErr != nil {
		status = model.RunStatusFailed
	}
	run := &model.ScanRun{
		ID:         uuid.New().String(),
		InputDir:   scanInput,
		OutputPath: scanOutput,
		Format:     scanFormat,
		Status:     status,
		Files:      len(results),
		Amounts:    amounts,
		Periods:    periods,
		Failures:   failures,
		Results:    results,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := st.SaveRun(ctx, run); err != nil {
		zap.L().Warn("scan history save failed", zap.Error(eris.Wrap(err, "save run")))
	}
}
