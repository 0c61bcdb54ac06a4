// Package syntactic implements the n-gram → ontology label fuzzy matcher
// (spec.md §4.D): enumerate n-grams per chunk, bucket candidates by stem,
// fuzzy-match with normalized Levenshtein similarity, and apply an
// anti-overlap policy across n-gram sizes.
package syntactic

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/cognicore/csoclassifier/pkg/ontology"
)

// DefaultMinSimilarity is spec.md §4.D's default fuzzy-match threshold.
const DefaultMinSimilarity = 0.94

// Match is one accepted (topic, gram) pairing.
type Match struct {
	Gram       string
	Similarity float64
}

// Result is the output of Classify: the matched topics (primary-labeled,
// space form) plus the explanation map (spec.md §4.D contract).
type Result struct {
	Topics      map[string]struct{}
	Explanation map[string]map[string]struct{} // topic -> set<gram>
}

// Classify runs the per-chunk algorithm of spec.md §4.D over every syntactic
// chunk. Pure computation, no I/O; empty input yields an empty Result.
func Classify(chunks []string, ont *ontology.Ontology, minSimilarity float64) Result {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	res := Result{
		Topics:      make(map[string]struct{}),
		Explanation: make(map[string]map[string]struct{}),
	}
	for _, chunk := range chunks {
		classifyChunk(chunk, ont, minSimilarity, res)
	}
	return res
}

// blockedPositions tracks which token positions are already claimed by a
// longer (bigram/trigram) match, per spec.md §4.D step 3's anti-overlap rule.
type blockedPositions map[int]struct{}

func classifyChunk(chunk string, ont *ontology.Ontology, minSimilarity float64, res Result) {
	tokens := strings.Fields(chunk)
	if len(tokens) == 0 {
		return
	}
	blocked := make(blockedPositions)

	for n := 3; n >= 1; n-- {
		if n > len(tokens) {
			continue
		}
		for p := 0; p+n <= len(tokens); p++ {
			if overlapsBlocked(p, n, blocked) {
				continue
			}
			gramTokens := tokens[p : p+n]
			gram := strings.Join(gramTokens, " ")

			candidates := ont.ClosestMatches(gram)
			if len(candidates) == 0 {
				continue
			}

			matched := false
			for _, candidate := range candidates {
				candidateLabel := ontology.TopicFromWU(candidate)
				sim32, err := edlib.StringsSimilarity(candidateLabel, gram, edlib.Levenshtein)
				if err != nil {
					continue
				}
				sim := float64(sim32)
				if sim < minSimilarity {
					continue
				}
				primary := ontology.TopicFromWU(ont.PrimaryLabelWU(candidate))
				res.Topics[primary] = struct{}{}
				if res.Explanation[primary] == nil {
					res.Explanation[primary] = make(map[string]struct{})
				}
				res.Explanation[primary][gram] = struct{}{}
				matched = true
			}
			if matched {
				blockPositions(p, n, blocked)
			}
		}
	}
}

// overlapsBlocked implements step 3: "skip n-gram at position p if its
// tokens overlap any previously matched bigram or trigram (bigram blocks
// positions p, p+1; trigram blocks p, p+1, p+2)".
func overlapsBlocked(p, n int, blocked blockedPositions) bool {
	for i := 0; i < n; i++ {
		if _, ok := blocked[p+i]; ok {
			return true
		}
	}
	return false
}

func blockPositions(p, n int, blocked blockedPositions) {
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		blocked[p+i] = struct{}{}
	}
}
