// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refextract/internal/hmm"
	"github.com/pdiddy/refextract/internal/symbol"
)

// loadCatalog resolves the active symbol catalog: the --catalog flag,
// then the config file's catalog.path, then the built-in default.
func loadCatalog(cmd *cobra.Command) (*symbol.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = viper.GetString("catalog.path")
	}
	if path == "" {
		return symbol.Default(), nil
	}
	return symbol.Load(path)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and check the symbol catalog",
	Long: `Catalog manages the ordered symbol catalog the tokenizer output is
matched against. Patterns are tried in declaration order and the first
match wins, so more specific patterns must precede more general ones.`,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active catalog's symbols in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		fmt.Print(cat.Describe())
		return nil
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that a tagged corpus is fully covered by the catalog",
	Long: `Check tokenizes every corpus example and symbolizes it strictly,
reporting the first token no catalog pattern matches. Training would
fail on the same token; check surfaces it without fitting a model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpusPath, _ := cmd.Flags().GetString("corpus")
		if corpusPath == "" {
			return fmt.Errorf("--corpus is required")
		}

		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		examples, err := hmm.LoadCorpus(corpusPath)
		if err != nil {
			return err
		}

		for i, ex := range examples {
			if _, err := symbol.SymbolizeAll(ex.Tokens, cat); err != nil {
				var unmatched *symbol.UnmatchedTokenError
				if errors.As(err, &unmatched) {
					return fmt.Errorf("example %d: %w", i, err)
				}
				return err
			}
		}

		fmt.Printf("%d examples covered by catalog %s\n", len(examples), cat.Name())
		return nil
	},
}

func init() {
	catalogCheckCmd.Flags().String("corpus", "", "tagged corpus YAML file to check")

	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
	rootCmd.AddCommand(catalogCmd)
}
