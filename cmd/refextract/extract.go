// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refextract/internal/extract"
	"github.com/pdiddy/refextract/internal/hmm"
)

var extractCmd = &cobra.Command{
	Use:   "extract [reference string]",
	Short: "Decode reference strings into structured records",
	Long: `Extract decodes one reference string given as arguments, or a batch
file (--input, one reference per line) partitioned across workers. Batch
output is an extraction result YAML suitable for 'store ingest'; a failed
line is reported and counted without aborting the batch.`,
	RunE: runExtract,
}

// newExtractor loads the model and catalog named by flags/config and
// builds the shared read-only extractor.
func newExtractor(cmd *cobra.Command) (*extract.Extractor, string, error) {
	modelPath, _ := cmd.Flags().GetString("model")
	if modelPath == "" {
		modelPath = viper.GetString("extraction.model_path")
	}
	if modelPath == "" {
		return nil, "", fmt.Errorf("--model is required")
	}

	cat, err := loadCatalog(cmd)
	if err != nil {
		return nil, "", err
	}

	params, err := hmm.Load(modelPath)
	if err != nil {
		return nil, "", err
	}

	ex, err := extract.New(cat, params)
	if err != nil {
		return nil, "", err
	}
	return ex, modelPath, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")

	if inputPath == "" && len(args) == 0 {
		return fmt.Errorf("provide a reference string or --input file")
	}

	ex, modelPath, err := newExtractor(cmd)
	if err != nil {
		return err
	}

	if inputPath == "" {
		rec, err := ex.Extract(strings.Join(args, " "))
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		for _, fv := range rec.Fields {
			fmt.Printf("%-10s  %s\n", fv.Field, fv.Text)
		}
		return nil
	}

	lines, err := readLines(inputPath)
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = viper.GetInt("extraction.workers")
	}

	result, summary := ex.ExtractBatch(context.Background(), lines, workers, os.Stderr)
	result.Model = modelPath

	outPath, _ := cmd.Flags().GetString("out")
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if outPath == "" {
		fmt.Print(string(data))
	} else if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d line(s) failed extraction", summary.Failed)
	}
	return nil
}

// readLines reads one reference per line, skipping blank lines.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}
	return lines, nil
}

func init() {
	extractCmd.Flags().String("model", "", "trained model parameters YAML file")
	extractCmd.Flags().String("input", "", "batch input file, one reference per line")
	extractCmd.Flags().String("out", "", "batch output YAML path (default: stdout)")
	extractCmd.Flags().Int("workers", 0, "concurrent decode workers for batch input (default 4)")
	extractCmd.Flags().Bool("json", false, "output a single record as JSON")

	rootCmd.AddCommand(extractCmd)
}
