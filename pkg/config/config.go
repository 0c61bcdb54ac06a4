// Package config loads classifier parameters and asset paths, following the
// teacher repository's config.Loader pattern (plain YAML, validated structs).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/csoclassifier/pkg/csoerr"
)

// Modules selects which classification modules run.
type Modules string

const (
	ModulesSyntactic Modules = "syntactic"
	ModulesSemantic  Modules = "semantic"
	ModulesBoth      Modules = "both"
)

// Enhancement selects the ontology-climb depth applied during post-processing.
type Enhancement string

const (
	EnhancementFirst Enhancement = "first"
	EnhancementAll   Enhancement = "all"
	EnhancementNone  Enhancement = "no"
)

// Parameters are the enumerated, per-run tunables from spec.md §6.
type Parameters struct {
	Modules             Modules     `yaml:"modules"`
	Enhancement         Enhancement `yaml:"enhancement"`
	Explanation         bool        `yaml:"explanation"`
	DeleteOutliers      bool        `yaml:"delete_outliers"`
	FastClassification  bool        `yaml:"fast_classification"`
	Silent              bool        `yaml:"silent"`
	Workers             int         `yaml:"workers"`
	MinSimilarity       float64     `yaml:"min_similarity"`        // default 0.94
	WordSimilarityMin   float64     `yaml:"word_similarity_min"`   // σ_w, default 0.7
	TopicSimilarityMin  float64     `yaml:"topic_similarity_min"`  // σ_t, default 0.94
	NetworkThreshold    float64     `yaml:"network_threshold"`     // default 1
	LCSRescueThreshold  float64     `yaml:"lcs_rescue_threshold"`  // default 0.5
}

// Defaults returns Parameters with spec.md's documented defaults.
func Defaults() Parameters {
	return Parameters{
		Modules:            ModulesBoth,
		Enhancement:        EnhancementNone,
		Explanation:        false,
		DeleteOutliers:     false,
		FastClassification: true,
		Silent:             false,
		Workers:            1,
		MinSimilarity:      0.94,
		WordSimilarityMin:  0.7,
		TopicSimilarityMin: 0.94,
		NetworkThreshold:   1.0,
		LCSRescueThreshold: 0.5,
	}
}

// UseFullModel implements spec.md §5's resource rule:
// use_full_model = delete_outliers OR NOT fast_classification.
func (p Parameters) UseFullModel() bool {
	return p.DeleteOutliers || !p.FastClassification
}

// Validate checks the enumerated parameter domain, raising ErrValidation
// before any pipeline work begins (spec.md §7 propagation rule).
func (p Parameters) Validate() error {
	switch p.Modules {
	case ModulesSyntactic, ModulesSemantic, ModulesBoth:
	default:
		return fmt.Errorf("%w: modules %q", csoerr.ErrValidation, p.Modules)
	}
	switch p.Enhancement {
	case EnhancementFirst, EnhancementAll, EnhancementNone:
	default:
		return fmt.Errorf("%w: enhancement %q", csoerr.ErrValidation, p.Enhancement)
	}
	if p.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", csoerr.ErrValidation, p.Workers)
	}
	return nil
}

// Assets locates the persistent files consumed by the pipeline (spec.md §6).
type Assets struct {
	OntologyPath     string `yaml:"ontology_path"`
	OntologyCache    string `yaml:"ontology_cache"`
	NeighborCache    string `yaml:"neighbor_cache"`
	VectorStorePath  string `yaml:"vector_store_path,omitempty"`
}

// File is the top-level YAML document shape.
type File struct {
	Assets     Assets     `yaml:"assets"`
	Parameters Parameters `yaml:"parameters"`
}

// Load reads and validates a classifier configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", csoerr.ErrAssetMissing, err)
	}

	f := &File{Parameters: Defaults()}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := f.Parameters.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
