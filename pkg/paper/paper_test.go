package paper

import (
	"reflect"
	"testing"

	"github.com/cognicore/csoclassifier/pkg/stoplist"
)

func TestJoinKeywords(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{in: "sql, databases", want: "sql, databases"},
		{in: []string{"sql", "databases"}, want: "sql, databases"},
		{in: nil, want: ""},
		{in: 42, want: ""},
	}
	for _, c := range cases {
		if got := JoinKeywords(c.in); got != c.want {
			t.Errorf("JoinKeywords(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewJoinsNonEmptyFieldsWithPeriods(t *testing.T) {
	p := New("Title.", "An abstract.", "kw1, kw2")
	want := "Title. An abstract. kw1, kw2"
	if p.Text != want {
		t.Fatalf("Text = %q, want %q", p.Text, want)
	}
}

func TestNewSkipsEmptyFields(t *testing.T) {
	p := New("", "Only abstract", "")
	if p.Text != "Only abstract" {
		t.Fatalf("Text = %q, want %q", p.Text, "Only abstract")
	}
}

func TestPreprocessEmptyTextYieldsNoChunksNoError(t *testing.T) {
	p := New("", "", "")
	if err := p.Preprocess(stoplist.NewEnglish()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.SemanticChunks) != 0 || len(p.SyntacticChunks) != 0 {
		t.Fatalf("expected no chunks for empty text, got sem=%v syn=%v", p.SemanticChunks, p.SyntacticChunks)
	}
}

func TestExtractGrammarChunksRequiresTrailingNoun(t *testing.T) {
	tokens := []taggedToken{
		{Text: "social", Tag: "JJ"},
		{Text: "network", Tag: "NN"},
		{Text: "analysis", Tag: "NN"},
		{Text: "is", Tag: "VBZ"},
		{Text: "useful", Tag: "JJ"},
	}
	got := extractGrammarChunks(tokens)
	want := []string{"social network analysis"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractGrammarChunks = %v, want %v", got, want)
	}
}

func TestExtractGrammarChunksIncludesHyphenatedRuns(t *testing.T) {
	tokens := []taggedToken{
		{Text: "graph", Tag: "NN"},
		{Text: "-", Tag: "HYPH"},
		{Text: "based", Tag: "JJ"},
		{Text: "clustering", Tag: "NN"},
	}
	got := extractGrammarChunks(tokens)
	want := []string{"graph - based clustering"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractGrammarChunks = %v, want %v", got, want)
	}
}

func TestExtractGrammarChunksDropsAdjectiveOnlyRun(t *testing.T) {
	tokens := []taggedToken{
		{Text: "very", Tag: "RB"},
		{Text: "fast", Tag: "JJ"},
		{Text: "and", Tag: "CC"},
	}
	got := extractGrammarChunks(tokens)
	if len(got) != 0 {
		t.Fatalf("expected no chunks without a trailing noun, got %v", got)
	}
}

func TestExtractStopwordChunksSplitsOnStopwordsAndMarkers(t *testing.T) {
	stops := stoplist.NewEnglish()
	tokens := []taggedToken{
		{Text: "database", Tag: "NN"},
		{Text: "systems", Tag: "NNS"},
		{Text: "for", Tag: "IN"},
		{Text: "the", Tag: "DT"},
		{Text: "social", Tag: "JJ"},
		{Text: "web", Tag: "NN"},
		{Text: ".", Tag: "."},
		{Text: "machine", Tag: "NN"},
		{Text: "learning", Tag: "NN"},
	}
	got := extractStopwordChunks(tokens, stops)
	want := []string{"database systems", "social web", "machine learning"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractStopwordChunks = %v, want %v", got, want)
	}
}
