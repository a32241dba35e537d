// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CatalogConfig holds settings for loading the symbol catalog.
// Per prd002-catalog R3.1.
type CatalogConfig struct {
	// Path is the catalog YAML file. Empty selects the built-in
	// default catalog.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TrainingConfig holds settings for the training stage.
// Per prd003-training R4.1-R4.3.
type TrainingConfig struct {
	// CorpusPath is the tagged training corpus YAML file.
	CorpusPath string `json:"corpus_path" yaml:"corpus_path"`

	// ModelPath is where the trained model parameters are written.
	ModelPath string `json:"model_path" yaml:"model_path"`

	// Smoothing is the additive smoothing constant assigned to
	// zero-count events (default 1e-5).
	Smoothing float64 `json:"smoothing" yaml:"smoothing"`
}

// ExtractionConfig holds settings for the extraction stage.
// Per prd001-extraction R5.1-R5.3.
type ExtractionConfig struct {
	// ModelPath is the trained model parameters YAML file.
	ModelPath string `json:"model_path" yaml:"model_path"`

	// Workers is the number of concurrent decode workers for batch
	// input (default 4). Model parameters are immutable after load,
	// so workers share them without locking.
	Workers int `json:"workers" yaml:"workers"`
}

// StoreConfig holds settings for the record store.
// Per prd004-store R1.2, R2.3.
type StoreConfig struct {
	// IndexDir is the directory holding the SQLite database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
	Training   TrainingConfig   `json:"training" yaml:"training"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
