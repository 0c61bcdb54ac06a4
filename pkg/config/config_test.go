package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/csoclassifier/pkg/csoerr"
)

func TestDefaultsPassValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults() should validate cleanly: %v", err)
	}
}

func TestValidateRejectsUnknownModules(t *testing.T) {
	p := Defaults()
	p.Modules = "both-and-more"
	if err := p.Validate(); !errors.Is(err, csoerr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	p := Defaults()
	p.Workers = 0
	if err := p.Validate(); !errors.Is(err, csoerr.ErrValidation) {
		t.Fatalf("expected ErrValidation for workers < 1, got %v", err)
	}
}

func TestUseFullModelRule(t *testing.T) {
	p := Defaults()
	p.DeleteOutliers = false
	p.FastClassification = true
	if p.UseFullModel() {
		t.Fatalf("expected UseFullModel() false when outliers kept and fast mode is on")
	}
	p.FastClassification = false
	if !p.UseFullModel() {
		t.Fatalf("expected UseFullModel() true when fast mode is off")
	}
}

func TestLoadParsesYAMLAndAppliesDefaultsFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
assets:
  ontology_path: /data/cso.csv
  neighbor_cache: /data/neighbors.json
parameters:
  modules: syntactic
  workers: 4
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Parameters.Modules != ModulesSyntactic {
		t.Fatalf("expected modules=syntactic, got %q", f.Parameters.Modules)
	}
	if f.Parameters.Workers != 4 {
		t.Fatalf("expected workers=4, got %d", f.Parameters.Workers)
	}
	if f.Parameters.MinSimilarity != 0.94 {
		t.Fatalf("expected default min_similarity 0.94 to survive partial YAML, got %v", f.Parameters.MinSimilarity)
	}
	if f.Assets.OntologyPath != "/data/cso.csv" {
		t.Fatalf("expected ontology_path parsed, got %q", f.Assets.OntologyPath)
	}
}

func TestLoadMissingFileReturnsAssetMissing(t *testing.T) {
	_, err := Load("/no/such/path.yaml")
	if !errors.Is(err, csoerr.ErrAssetMissing) {
		t.Fatalf("expected ErrAssetMissing, got %v", err)
	}
}
