package syntactic

import (
	"strings"
	"testing"

	"github.com/cognicore/csoclassifier/pkg/ontology"
)

func fixtureOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	triples := strings.Join([]string{
		"social network;rdfs:label;social network",
		"social network analysis;rdfs:label;social network analysis",
	}, "\n")
	o, err := ontology.LoadFrom(strings.NewReader(triples))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return o
}

// overlapFixtureOntology has a bigram topic and a standalone topic whose
// stem bucket collides with the bigram's trailing token, so a bug that
// blocks the wrong (backward) span would let the trailing token re-match
// as its own topic.
func overlapFixtureOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	triples := strings.Join([]string{
		"graph theory;rdfs:label;graph theory",
		"theory;rdfs:label;theory",
	}, "\n")
	o, err := ontology.LoadFrom(strings.NewReader(triples))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return o
}

func TestClassifyExactTrigramMatch(t *testing.T) {
	ont := fixtureOntology(t)
	res := Classify([]string{"social network analysis"}, ont, DefaultMinSimilarity)
	if _, ok := res.Topics["social network analysis"]; !ok {
		t.Fatalf("expected exact trigram match, got %+v", res.Topics)
	}
	if _, ok := res.Explanation["social network analysis"]["social network analysis"]; !ok {
		t.Fatalf("expected explanation entry for the matched gram, got %+v", res.Explanation)
	}
}

func TestClassifyAntiOverlapPrefersLongerGram(t *testing.T) {
	ont := fixtureOntology(t)
	res := Classify([]string{"social network analysis"}, ont, DefaultMinSimilarity)
	// The trigram match blocks positions 0,1,2 so the "social network" bigram
	// must not also register a separate, overlapping match.
	if len(res.Topics) != 1 {
		t.Fatalf("expected exactly one topic from anti-overlap policy, got %+v", res.Topics)
	}
}

func TestClassifyBigramBlocksItsOwnTrailingToken(t *testing.T) {
	ont := overlapFixtureOntology(t)
	res := Classify([]string{"graph theory"}, ont, DefaultMinSimilarity)
	if _, ok := res.Topics["graph theory"]; !ok {
		t.Fatalf("expected the bigram match 'graph theory', got %+v", res.Topics)
	}
	if _, ok := res.Topics["theory"]; ok {
		t.Fatalf("'theory' must be blocked by the bigram match that already consumed it, got %+v", res.Topics)
	}
}

func TestClassifyEmptyChunkYieldsEmptyResult(t *testing.T) {
	ont := fixtureOntology(t)
	res := Classify([]string{""}, ont, DefaultMinSimilarity)
	if len(res.Topics) != 0 {
		t.Fatalf("expected no topics for empty chunk, got %+v", res.Topics)
	}
}

func TestClassifyBelowThresholdIsDropped(t *testing.T) {
	ont := fixtureOntology(t)
	res := Classify([]string{"xyz totally unrelated"}, ont, DefaultMinSimilarity)
	if len(res.Topics) != 0 {
		t.Fatalf("expected no matches below threshold, got %+v", res.Topics)
	}
}

func TestClassifyDefaultsMinSimilarityWhenZero(t *testing.T) {
	ont := fixtureOntology(t)
	res := Classify([]string{"social network analysis"}, ont, 0)
	if len(res.Topics) == 0 {
		t.Fatalf("expected default threshold to still match an exact gram")
	}
}
