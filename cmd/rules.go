package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/belegwerk/belegscan/internal/extract"
)

var rulesPath string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective extraction rules",
	Long:  "Prints the marker and pattern configuration the extractors will use, with defaults filled in. Pipe it to a file to get a starting point for a --rules override.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rules, err := loadRules(rulesPath)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(rules.Spec()); err != nil {
			return eris.Wrap(err, "encode rules")
		}
		return enc.Close()
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesPath, "rules", "", "extraction rules override file (YAML)")
	rootCmd.AddCommand(rulesCmd)
}

// loadRules compiles the rules from an override file, or the built-in
// defaults when no path is given.
func loadRules(path string) (*extract.Rules, error) {
	if path == "" {
		return extract.Default(), nil
	}
	return extract.LoadFile(path)
}
