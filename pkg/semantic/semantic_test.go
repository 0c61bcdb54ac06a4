package semantic

import (
	"strings"
	"testing"

	"github.com/cognicore/csoclassifier/pkg/embedding"
	"github.com/cognicore/csoclassifier/pkg/ontology"
)

func fixtureOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	triples := strings.Join([]string{
		"machine learning;rdfs:label;machine learning",
		"deep learning;rdfs:label;deep learning",
	}, "\n")
	o, err := ontology.LoadFrom(strings.NewReader(triples))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return o
}

func TestClassifyEmptyChunksYieldsEmptyResult(t *testing.T) {
	ont := fixtureOntology(t)
	store := embedding.NewFromMap(nil)
	res := Classify(nil, store, ont, DefaultConfig())
	if len(res.Topics) != 0 {
		t.Fatalf("expected no topics, got %+v", res.Topics)
	}
}

func TestClassifyDirectCacheHit(t *testing.T) {
	ont := fixtureOntology(t)
	store := embedding.NewFromMap(map[string][]embedding.NeighborEntry{
		"machine_learning": {{Topic: "machine_learning", SimT: 1.0, Wet: "machine_learning", SimW: 1.0}},
	})
	res := Classify([]string{"machine learning"}, store, ont, DefaultConfig())
	found := false
	for _, topic := range res.Topics {
		if topic == "machine learning" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'machine learning' in retained topics, got %v", res.Topics)
	}
}

func TestFastModeUnigramIntersectionRequiresFullSupport(t *testing.T) {
	store := embedding.NewFromMap(map[string][]embedding.NeighborEntry{
		"deep":     {{Topic: "deep_learning", SimT: 0.95, Wet: "deep", SimW: 0.8}},
		"learning": {{Topic: "deep_learning", SimT: 0.95, Wet: "learning", SimW: 0.9}},
	})
	quads := fastModeUnigramIntersection([]string{"deep", "learning"}, 2, store)
	if len(quads) != 1 || quads[0].Topic != "deep_learning" {
		t.Fatalf("expected deep_learning retained by full bigram support, got %+v", quads)
	}
}

func TestFastModeUnigramIntersectionDropsPartialSupport(t *testing.T) {
	store := embedding.NewFromMap(map[string][]embedding.NeighborEntry{
		"deep":     {{Topic: "deep_learning", SimT: 0.95, Wet: "deep", SimW: 0.8}},
		"learning": {{Topic: "machine_learning", SimT: 0.95, Wet: "learning", SimW: 0.9}},
	})
	quads := fastModeUnigramIntersection([]string{"deep", "learning"}, 2, store)
	if len(quads) != 0 {
		t.Fatalf("expected no topic with full bigram support, got %+v", quads)
	}
}

func TestScoreNormalizesWeightToMax(t *testing.T) {
	ont := fixtureOntology(t)
	topics := map[string]*accumulator{
		"machine_learning": {times: 4, grams: map[string]int{"g1": 1, "g2": 1}},
		"deep_learning":     {times: 1, grams: map[string]int{"g3": 1}},
	}
	res := score(topics, map[string]map[string]struct{}{}, ont)
	if len(res.Topics) == 0 {
		t.Fatalf("expected at least one retained topic")
	}
	for _, w := range res.Weight {
		if w > 1.0 {
			t.Fatalf("weight must be normalized to <= 1, got %v", w)
		}
	}
	if res.Weight["machine learning"] != 1.0 {
		t.Fatalf("expected the highest-scoring topic to have weight 1.0, got %v", res.Weight)
	}
}

func TestScoreSyntacticHitPromotesScore(t *testing.T) {
	ont := fixtureOntology(t)
	topics := map[string]*accumulator{
		"machine_learning": {times: 10, grams: map[string]int{"g1": 1}, syntacticHit: true},
		"deep_learning":     {times: 1, grams: map[string]int{"g2": 1}, syntacticHit: true},
	}
	res := score(topics, map[string]map[string]struct{}{}, ont)
	if res.Weight["deep learning"] != res.Weight["machine learning"] {
		t.Fatalf("expected syntactic-hit topics promoted to the same max score, got %+v", res.Weight)
	}
}
