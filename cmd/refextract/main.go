// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refextract CLI.
// Implements: prd001-extraction, prd002-catalog, prd003-training,
//             prd004-store (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the refextract CLI.
var rootCmd = &cobra.Command{
	Use:   "refextract",
	Short: "Hidden-Markov-model extraction of bibliographic reference metadata",
	Long: `refextract turns raw reference citation strings into structured records
(author, title, journal, date, pages, ...) using a symbol catalog, a
trained hidden Markov model, and exact Viterbi decoding.

Each pipeline stage is a subcommand: tokenize inspects the lexer output,
catalog manages the symbol catalog, train fits model parameters from a
tagged corpus, extract decodes references, and store persists decoded
records for querying.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./refextract.yaml or ~/.config/refextract/config.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "symbol catalog YAML file (default: built-in catalog)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refextract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refextract"))
		}
	}

	viper.SetEnvPrefix("REFEXTRACT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
