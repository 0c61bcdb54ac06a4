// Command classify is a thin driver over the classification pipeline,
// following the teacher repository's cmd/ convention of a flag-parsed main
// that wires config + assets into the library and prints JSON.
//
// CLI argument parsing, config-file loading, and asset download are outside
// the specification's core scope (spec.md §1); this binary exists only to
// exercise the Orchestrator end to end.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/csoclassifier/pkg/classifier"
	"github.com/cognicore/csoclassifier/pkg/config"
	"github.com/cognicore/csoclassifier/pkg/embedding"
	"github.com/cognicore/csoclassifier/pkg/ontology"
	"github.com/cognicore/csoclassifier/pkg/stoplist"
)

func main() {
	var (
		ontologyPath = flag.String("ontology", "", "Path to the semicolon-delimited ontology triple file (required)")
		cachePath    = flag.String("cache", "", "Path to the SQLite ontology cache (optional)")
		neighborPath = flag.String("neighbors", "", "Path to the cached neighbor-topic JSON map (required)")
		vectorsPath  = flag.String("vectors", "", "Path to a full embedding vector JSON map (optional)")
		title        = flag.String("title", "", "Document title")
		abstract     = flag.String("abstract", "", "Document abstract")
		keywords     = flag.String("keywords", "", "Comma-separated keywords")
		explanation  = flag.Bool("explain", false, "Include the explanation map")
	)
	flag.Parse()

	if *ontologyPath == "" || *neighborPath == "" {
		fmt.Fprintln(os.Stderr, "usage: classify -ontology FILE -neighbors FILE [-title ...] [-abstract ...] [-keywords ...]")
		os.Exit(2)
	}

	ctx := context.Background()

	ont, err := ontology.LoadCached(ctx, *ontologyPath, *cachePath)
	if err != nil {
		log.Fatalf("load ontology: %v", err)
	}

	store, err := embedding.Load(*neighborPath)
	if err != nil {
		log.Fatalf("load neighbor cache: %v", err)
	}
	if *vectorsPath != "" {
		if err := store.LoadVectors(*vectorsPath); err != nil {
			log.Fatalf("load vector store: %v", err)
		}
	}

	params := config.Defaults()
	params.Explanation = *explanation

	c := classifier.New(ont, store, stoplist.NewEnglish(), params)

	res, err := c.Run(ctx, classifier.Document{
		Title:    *title,
		Abstract: *abstract,
		Keywords: *keywords,
	}, params)
	if err != nil {
		log.Fatalf("classify: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}
