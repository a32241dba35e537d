// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refextract/internal/symbol"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [reference string]",
	Short: "Show the token and symbol sequence for a reference string",
	Long: `Tokenize splits a reference string into word and punctuation tokens
and shows which catalog symbol each token maps to. Useful for checking
catalog coverage before tagging a training corpus.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		raw := strings.Join(args, " ")
		tokens := symbol.Tokenize(raw)
		if len(tokens) == 0 {
			return fmt.Errorf("no tokens in input")
		}

		fmt.Printf("%-6s  %-20s  %s\n", "offset", "token", "symbol")
		for _, tok := range tokens {
			sym := symbol.SymbolizeLoose(tok, cat)
			fmt.Printf("%-6d  %-20s  %s\n", tok.Start, tok.Text, sym)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}
