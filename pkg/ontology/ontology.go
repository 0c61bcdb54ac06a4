// Package ontology models the CSO taxonomy: the topic universe, primary-label
// equivalence clusters, broader/narrower relations, a stem index for fuzzy
// match candidate lookup, and an undirected graph for shortest-path distance.
//
// Grounded on the teacher repository's autotune/taxonomy package for the
// shape of a keyword taxonomy, generalized here to a full DAG with an
// arena-of-records layout per spec.md §9's design note.
package ontology

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// ClimbMode selects how far climb() walks the broader relation.
type ClimbMode string

const (
	ClimbNone  ClimbMode = "none"
	ClimbFirst ClimbMode = "first"
	ClimbAll   ClimbMode = "all"
)

const disconnectedDistance = 99

// Ontology is the immutable, read-only-after-load taxonomy shared across
// workers (spec.md §3, §5).
type Ontology struct {
	topics       map[string]struct{}   // underscore-form canonical topics
	primaryLabel map[string]string     // underscore-form t -> underscore-form primary label
	broaders     map[string][]string   // underscore-form t -> direct parents
	narrowers    map[string][]string   // inverse of broaders
	sameAs       map[string][]string   // cluster siblings
	stems        map[string][]string   // first-4-chars (space-form) -> topics (underscore-form)
	allBroaders  map[string][]string   // precomputed transitive ancestors

	g       *simple.WeightedUndirectedGraph
	nodeOf  map[string]int64 // underscore-form topic -> graph node id
	topicOf map[int64]string
}

// New builds an empty Ontology. Use Load or LoadFrom (see load.go) to populate
// one from triples, or LoadCached (see cache.go) to reuse an on-disk cache.
func New() *Ontology {
	return &Ontology{
		topics:       make(map[string]struct{}),
		primaryLabel: make(map[string]string),
		broaders:     make(map[string][]string),
		narrowers:    make(map[string][]string),
		sameAs:       make(map[string][]string),
		stems:        make(map[string][]string),
		allBroaders:  make(map[string][]string),
	}
}

// ToWU converts a space-form topic label to its underscore form.
func ToWU(topic string) string {
	return strings.ReplaceAll(topic, " ", "_")
}

// TopicFromWU converts an underscore-form label back to space form.
func TopicFromWU(t string) string {
	return strings.ReplaceAll(t, "_", " ")
}

// HasTopic reports whether t (underscore form) is a known topic.
func (o *Ontology) HasTopic(t string) bool {
	_, ok := o.topics[t]
	return ok
}

// PrimaryLabelWU resolves t (underscore form) to its cluster's primary label
// (underscore form), or t itself if it belongs to no cluster.
func (o *Ontology) PrimaryLabelWU(t string) string {
	if p, ok := o.primaryLabel[t]; ok {
		return p
	}
	return t
}

// PrimaryLabel resolves a space-form topic to its space-form primary label.
func (o *Ontology) PrimaryLabel(topic string) string {
	return TopicFromWU(o.PrimaryLabelWU(ToWU(topic)))
}

// ClosestMatches returns the stem bucket for a (space-form) word/gram:
// stems.get(word[:4], []).
func (o *Ontology) ClosestMatches(word string) []string {
	key := stemKey(word)
	if key == "" {
		return nil
	}
	return o.stems[key]
}

func stemKey(word string) string {
	w := strings.ToLower(word)
	if len(w) < 4 {
		return w
	}
	return w[:4]
}

// AllBroadersOf returns the precomputed transitive ancestor set of t
// (underscore form).
func (o *Ontology) AllBroadersOf(t string) []string {
	return o.allBroaders[t]
}

// BroadersOf returns the direct parents of t (underscore form).
func (o *Ontology) BroadersOf(t string) []string {
	return o.broaders[t]
}

// GraphDistance returns the shortest hop count between a and b (underscore
// form) on the undirected taxonomy graph, or 99 if disconnected or either
// node is absent (spec.md §4.A).
func (o *Ontology) GraphDistance(a, b string) float64 {
	if a == b {
		return 0
	}
	na, ok1 := o.nodeOf[a]
	nb, ok2 := o.nodeOf[b]
	if !ok1 || !ok2 {
		return disconnectedDistance
	}
	d := shortestFrom(o.g, na)(nb)
	if d < 0 || isInf(d) {
		return disconnectedDistance
	}
	return d
}

func isInf(f float64) bool {
	return f > 1e300
}

// climbResult is the per-broader accumulator used by Climb.
type climbResult struct {
	narrowers map[string]struct{}
}

// ClimbOutput is the entry Climb stores under a broader's space-form primary
// label: the narrowers (from `found`) that selected it.
type ClimbOutput struct {
	Matched   int
	BroaderOf []string
}

// Climb implements spec.md §4.A's climb algorithm.
//
//   - none: empty mapping.
//   - first: for each t in found, collect its direct broaders; each broader B
//     accumulates the union of narrowers (from found) that selected it.
//   - all: repeat the first step using found ∪ discovered_broaders as the
//     source until the broader map reaches a fixed point.
func (o *Ontology) Climb(found []string, mode ClimbMode) map[string]ClimbOutput {
	out := make(map[string]ClimbOutput)
	if mode == ClimbNone || len(found) == 0 {
		return out
	}

	acc := make(map[string]*climbResult)
	frontier := uniqueStrings(found)
	seenSource := make(map[string]struct{}, len(found))
	for _, t := range frontier {
		seenSource[t] = struct{}{}
	}

	for {
		progressed := o.climbOnce(frontier, acc)
		if mode == ClimbFirst || !progressed {
			break
		}
		// mode == all: expand frontier with newly discovered broaders not
		// already used as a source, then retry until fixed point.
		var next []string
		for b := range acc {
			if _, ok := seenSource[b]; ok {
				continue
			}
			seenSource[b] = struct{}{}
			next = append(next, b)
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	for b, r := range acc {
		if len(r.narrowers) == 0 {
			continue
		}
		primary := TopicFromWU(o.PrimaryLabelWU(b))
		cur := out[primary]
		narrowers := make([]string, 0, len(r.narrowers))
		for n := range r.narrowers {
			narrowers = append(narrowers, TopicFromWU(n))
		}
		sort.Strings(narrowers)
		merged := mergeOutput(cur, narrowers)
		out[primary] = merged
	}
	return out
}

func mergeOutput(cur ClimbOutput, narrowers []string) ClimbOutput {
	set := make(map[string]struct{}, len(cur.BroaderOf)+len(narrowers))
	for _, n := range cur.BroaderOf {
		set[n] = struct{}{}
	}
	for _, n := range narrowers {
		set[n] = struct{}{}
	}
	all := make([]string, 0, len(set))
	for n := range set {
		all = append(all, n)
	}
	sort.Strings(all)
	return ClimbOutput{Matched: len(all), BroaderOf: all}
}

// climbOnce collects direct broaders for each topic in frontier and
// accumulates the narrowers each broader is responsible for (including
// transitive narrower contributions already tracked in acc for broaders
// that are themselves in frontier). Returns true if any broader gained a
// new narrower this round.
func (o *Ontology) climbOnce(frontier []string, acc map[string]*climbResult) bool {
	progressed := false
	for _, t := range frontier {
		// Narrowers this topic contributes to its broaders: itself, plus
		// (if t is already an accumulated broader) everything it accumulated.
		contributed := map[string]struct{}{t: {}}
		if r, ok := acc[t]; ok {
			for n := range r.narrowers {
				contributed[n] = struct{}{}
			}
		}
		for _, b := range o.broaders[t] {
			r, ok := acc[b]
			if !ok {
				r = &climbResult{narrowers: make(map[string]struct{})}
				acc[b] = r
			}
			for n := range contributed {
				if _, already := r.narrowers[n]; !already {
					r.narrowers[n] = struct{}{}
					progressed = true
				}
			}
		}
	}
	return progressed
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var _ graph.Graph = (*simple.WeightedUndirectedGraph)(nil)
