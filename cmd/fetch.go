package main

import (
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/belegwerk/belegscan/internal/fetcher"
)

var fetchDir string

var fetchCmd = &cobra.Command{
	Use:   "fetch <source>",
	Short: "Download remote invoices into the input directory",
	Long: `Mirrors a remote inbox of PDFs into the local input directory before scanning.

The source is either a URL or the path of a local manifest file listing
one URL per line. A URL naming a .pdf is downloaded directly, an ftp://
directory is mirrored, and any other http(s):// URL is fetched and
parsed as a manifest. Files already present are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		if fetchDir != "" {
			cfg.Fetch.Dir = fetchDir
		}

		svc := fetcher.NewService(cfg.Fetch)

		source := args[0]
		var (
			n   int
			err error
		)
		if u, perr := url.Parse(source); perr == nil && u.Scheme != "" {
			n, err = svc.Fetch(ctx, source)
		} else {
			n, err = svc.FetchManifest(ctx, source)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Downloaded %d files to %s\n", n, cfg.Fetch.Dir)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "target directory (default from config, ./receipts)")
	rootCmd.AddCommand(fetchCmd)
}
