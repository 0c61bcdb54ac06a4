// Package postprocess implements spec.md §4.F: build the joined
// ontology/embedding similarity matrix, prune outlier topics, rescue
// ancestor- or string-similar topics, and finalize by climbing the
// ontology.
package postprocess

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/cognicore/csoclassifier/pkg/embedding"
	"github.com/cognicore/csoclassifier/pkg/ontology"
)

// Input is the pre-pruning state handed in by the orchestrator.
type Input struct {
	Syntactic   map[string]struct{}
	Semantic    map[string]struct{}
	Union       []string // ordered, deduplicated syntactic ∪ semantic
	Explanation map[string]map[string]struct{}
}

// Output is the finalized, post-processed result.
type Output struct {
	Syntactic   map[string]struct{}
	Semantic    map[string]struct{}
	Union       []string
	Enhanced    []string
	Explanation map[string]map[string]struct{}
}

// Config holds spec.md §4.F's tunables.
type Config struct {
	DeleteOutliers   bool
	NetworkThreshold float64 // default 1
	LCSRescueMax     float64 // default 0.5
	Enhancement      ontology.ClimbMode
}

// Run implements the full contract of spec.md §4.F and §4.G.
func Run(in Input, ont *ontology.Ontology, store *embedding.Store, cfg Config) Output {
	kept := in.Union
	if cfg.DeleteOutliers && len(in.Union) > 1 {
		kept = pruneOutliers(in.Union, in.Syntactic, ont, store, cfg)
	}

	keptSet := make(map[string]struct{}, len(kept))
	for _, t := range kept {
		keptSet[t] = struct{}{}
	}

	out := Output{
		Syntactic:   intersect(in.Syntactic, keptSet),
		Semantic:    intersect(in.Semantic, keptSet),
		Union:       kept,
		Explanation: make(map[string]map[string]struct{}),
	}

	climbed := ont.Climb(toWUAll(kept), cfg.Enhancement)
	enhancedSet := make(map[string]struct{})
	for primary, info := range climbed {
		if _, already := keptSet[primary]; already {
			continue
		}
		enhancedSet[primary] = struct{}{}
		out.Enhanced = append(out.Enhanced, primary)
		narrowerExplain := make(map[string]struct{})
		for _, narrower := range info.BroaderOf {
			for g := range in.Explanation[narrower] {
				narrowerExplain[g] = struct{}{}
			}
		}
		if len(narrowerExplain) > 0 {
			out.Explanation[primary] = narrowerExplain
		}
	}
	sort.Strings(out.Enhanced)

	for _, t := range kept {
		if exp, ok := in.Explanation[t]; ok {
			out.Explanation[t] = exp
		}
	}

	return out
}

func toWUAll(topics []string) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = ontology.ToWU(t)
	}
	return out
}

func intersect(set map[string]struct{}, keep map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for t := range set {
		if _, ok := keep[t]; ok {
			out[t] = struct{}{}
		}
	}
	return out
}

// pruneOutliers implements the matrix/threshold/selection/rescue sequence
// of spec.md §4.F.
func pruneOutliers(union []string, syntactic map[string]struct{}, ont *ontology.Ontology, store *embedding.Store, cfg Config) []string {
	n := len(union)
	j := buildJoinedMatrix(union, ont, store)

	threshold := cfg.NetworkThreshold
	if threshold == 0 {
		threshold = 1
	}
	tau := computeThreshold(j, n, threshold)

	keepMask := make([]bool, n)
	for i := 0; i < n; i++ {
		count := 0
		for k := 0; k < n; k++ {
			if j[i][k] >= tau {
				count++
			}
		}
		keepMask[i] = count > 1
		if _, isSyn := syntactic[union[i]]; isSyn && strings.Contains(union[i], " ") {
			keepMask[i] = true // force-keep multi-word syntactic matches
		}
	}

	var kept, excluded []int
	for i, k := range keepMask {
		if k {
			kept = append(kept, i)
		} else {
			excluded = append(excluded, i)
		}
	}

	keptTopics := make(map[string]struct{}, len(kept))
	for _, i := range kept {
		keptTopics[union[i]] = struct{}{}
	}

	lcsMax := cfg.LCSRescueMax
	if lcsMax == 0 {
		lcsMax = 0.5
	}
	for _, i := range excluded {
		if rescue(union[i], keptTopics, ont, lcsMax) {
			keptTopics[union[i]] = struct{}{}
		}
	}

	out := make([]string, 0, len(keptTopics))
	for _, t := range union {
		if _, ok := keptTopics[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// buildJoinedMatrix computes J = elementwise_max(Ont, Emb). d_max for the
// ontology-distance normalization is the maximum pairwise distance within
// this document's own union (mirrors the reference implementation's
// `norm_matrix = matrix/matrix.max()` over the current document's distance
// matrix, not a global ontology-wide constant): it is recomputed per call so
// the result depends only on fixed ontology/embedding/parameters inputs, not
// on an unordered sample taken once at load time.
func buildJoinedMatrix(union []string, ont *ontology.Ontology, store *embedding.Store) [][]float64 {
	n := len(union)
	wu := make([]string, n)
	for i, t := range union {
		wu[i] = ontology.ToWU(t)
	}
	vectors := make([][]float32, n)
	for i, t := range wu {
		vectors[i] = topicVector(t, store)
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	dMax := 0.0
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			d := ont.GraphDistance(wu[i], wu[k])
			dist[i][k] = d
			dist[k][i] = d
			if d > dMax {
				dMax = d
			}
		}
	}
	if dMax == 0 {
		dMax = 1 // fewer than 2 topics, or all coincide: avoid division by zero
	}

	j := make([][]float64, n)
	for i := range j {
		j[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		j[i][i] = 1
		for k := i + 1; k < n; k++ {
			ontSim := 1 - dist[i][k]/dMax
			embSim := cosine(vectors[i], vectors[k])
			v := math.Max(ontSim, embSim)
			j[i][k] = v
			j[k][i] = v
		}
	}
	return j
}

// topicVector sums the embeddings of a topic label's underscore-split parts,
// with missing tokens contributing zero (spec.md §4.F, §7 EmbeddingMiss).
func topicVector(wu string, store *embedding.Store) []float32 {
	if !store.HasVectors() {
		return nil
	}
	parts := strings.Split(wu, "_")
	var sum []float32
	for _, p := range parts {
		v := store.Vector(p)
		if len(v) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float32, len(v))
		}
		for i := range v {
			sum[i] += v[i]
		}
	}
	return sum
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// computeThreshold implements spec.md §4.F's threshold rule: flatten the
// strict upper triangle, sort descending, k = ceil(networkThreshold * n),
// tau = values[k] (last element if out of bounds).
func computeThreshold(j [][]float64, n int, networkThreshold float64) float64 {
	var values []float64
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			values = append(values, j[i][k])
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	k := int(math.Ceil(networkThreshold * float64(n)))
	if k < 0 {
		k = 0
	}
	if k >= len(values) {
		k = len(values) - 1
	}
	return values[k]
}

// rescue implements spec.md §4.F's rescue rule: re-admit T if it is an
// ancestor of any kept topic, or if some kept topic K has metric-LCS
// distance to T under lcsMax.
func rescue(t string, kept map[string]struct{}, ont *ontology.Ontology, lcsMax float64) bool {
	wu := ontology.ToWU(t)
	for k := range kept {
		kwu := ontology.ToWU(k)
		for _, ancestor := range ont.AllBroadersOf(kwu) {
			if ancestor == wu {
				return true
			}
		}
		if metricLCSDistance(t, k) < lcsMax {
			return true
		}
	}
	return false
}

// metricLCSDistance = 1 - |LCS(a,b)| / max(|a|,|b|) (spec.md §9).
func metricLCSDistance(a, b string) float64 {
	if a == "" || b == "" {
		return 1
	}
	lcs := edlib.LCS(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(lcs)/float64(maxLen)
}
