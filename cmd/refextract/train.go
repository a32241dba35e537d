// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refextract/internal/hmm"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit model parameters from a tagged training corpus",
	Long: `Train reads a corpus of manually field-tagged reference strings,
derives start, transition, and emission probability tables with additive
smoothing, and writes them as a model YAML file.

Training is strict: a token no catalog pattern matches, a malformed
annotation, or a field state with zero training examples halts the run
with the offending example.`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	if corpusPath == "" {
		corpusPath = viper.GetString("training.corpus_path")
	}
	if corpusPath == "" {
		return fmt.Errorf("--corpus is required")
	}

	modelPath, _ := cmd.Flags().GetString("out")
	if modelPath == "" {
		modelPath = viper.GetString("training.model_path")
	}
	if modelPath == "" {
		modelPath = "model.yaml"
	}

	smoothing, _ := cmd.Flags().GetFloat64("smoothing")
	if smoothing == 0 {
		smoothing = viper.GetFloat64("training.smoothing")
	}

	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	examples, err := hmm.LoadCorpus(corpusPath)
	if err != nil {
		return err
	}

	params, err := hmm.Train(examples, cat, smoothing)
	if err != nil {
		return fmt.Errorf("training on %s: %w", corpusPath, err)
	}

	if err := params.WriteFile(modelPath); err != nil {
		return err
	}

	fmt.Printf("trained on %d examples, model written to %s\n", len(examples), modelPath)
	return nil
}

func init() {
	trainCmd.Flags().String("corpus", "", "tagged corpus YAML file")
	trainCmd.Flags().String("out", "model.yaml", "output path for model parameters")
	trainCmd.Flags().Float64("smoothing", hmm.DefaultSmoothing, "additive smoothing constant for zero-count events")

	rootCmd.AddCommand(trainCmd)
}
