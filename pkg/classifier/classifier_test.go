package classifier

import (
	"context"
	"strings"
	"testing"

	"github.com/cognicore/csoclassifier/pkg/config"
	"github.com/cognicore/csoclassifier/pkg/embedding"
	"github.com/cognicore/csoclassifier/pkg/ontology"
	"github.com/cognicore/csoclassifier/pkg/stoplist"
)

func fixtureClassifier(t *testing.T) *Classifier {
	t.Helper()
	triples := strings.Join([]string{
		"social network;rdfs:label;social network",
		"social network analysis;rdfs:label;social network analysis",
		"computer science;rdfs:label;computer science",
		"social network;klink:broaderGeneric;computer science",
	}, "\n")
	ont, err := ontology.LoadFrom(strings.NewReader(triples))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	store := embedding.NewFromMap(map[string][]embedding.NeighborEntry{})
	return New(ont, store, stoplist.NewEnglish(), config.Defaults())
}

func TestRunClassifiesSyntacticMatch(t *testing.T) {
	c := fixtureClassifier(t)
	doc := Document{
		Title:    "A study of social network analysis",
		Abstract: "This paper studies social network analysis techniques.",
	}
	res, err := c.Run(context.Background(), doc, config.Defaults())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, topic := range res.Union {
		if topic == "social network analysis" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'social network analysis' in union, got %v", res.Union)
	}
}

func TestRunEmptyDocumentYieldsEmptyResultNoError(t *testing.T) {
	c := fixtureClassifier(t)
	res, err := c.Run(context.Background(), Document{}, config.Defaults())
	if err != nil {
		t.Fatalf("unexpected error for empty document: %v", err)
	}
	if len(res.Union) != 0 {
		t.Fatalf("expected empty union for empty document, got %v", res.Union)
	}
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	c := fixtureClassifier(t)
	bad := config.Defaults()
	bad.Modules = "bogus"
	if _, err := c.Run(context.Background(), Document{Title: "x"}, bad); err == nil {
		t.Fatalf("expected validation error for bogus modules value")
	}
}

func TestBatchIsDeterministicAcrossWorkerCounts(t *testing.T) {
	c := fixtureClassifier(t)
	docs := map[string]Document{
		"doc1": {Title: "Social network analysis of online communities"},
		"doc2": {Abstract: "A survey on social network analysis methods"},
		"doc3": {Title: "Unrelated topic about gardening"},
	}

	single := config.Defaults()
	single.Workers = 1
	resSingle, errsSingle := c.Batch(context.Background(), docs, single)

	multi := config.Defaults()
	multi.Workers = 3
	resMulti, errsMulti := c.Batch(context.Background(), docs, multi)

	if len(errsSingle) != 0 || len(errsMulti) != 0 {
		t.Fatalf("unexpected errors: single=%v multi=%v", errsSingle, errsMulti)
	}
	if len(resSingle) != len(resMulti) {
		t.Fatalf("result count differs by worker count: %d vs %d", len(resSingle), len(resMulti))
	}
	for id, r1 := range resSingle {
		r2, ok := resMulti[id]
		if !ok {
			t.Fatalf("missing result for %q with workers=3", id)
		}
		if strings.Join(r1.Union, ",") != strings.Join(r2.Union, ",") {
			t.Fatalf("union differs by worker count for %q: %v vs %v", id, r1.Union, r2.Union)
		}
	}
}

func TestPartitionDistributesRoundRobin(t *testing.T) {
	shards := partition([]string{"a", "b", "c", "d", "e"}, 2)
	if len(shards) != 2 {
		t.Fatalf("expected 2 shards, got %d", len(shards))
	}
	total := 0
	for _, s := range shards {
		total += len(s)
	}
	if total != 5 {
		t.Fatalf("expected all 5 ids distributed, got %d", total)
	}
}

func TestPartitionClampsWorkersToIDCount(t *testing.T) {
	shards := partition([]string{"a", "b"}, 10)
	if len(shards) != 2 {
		t.Fatalf("expected workers clamped to 2 ids, got %d shards", len(shards))
	}
}

func TestPartitionHandlesEmptyInput(t *testing.T) {
	if shards := partition(nil, 4); shards != nil {
		t.Fatalf("expected nil shards for empty input, got %v", shards)
	}
}
