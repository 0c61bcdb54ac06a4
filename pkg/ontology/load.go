package ontology

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/cognicore/csoclassifier/pkg/csoerr"
)

const (
	predBroaderGeneric   = "klink:broaderGeneric"
	predRelatedEquivalent = "klink:relatedEquivalent"
	predLabel            = "rdfs:label"
	predPrimaryLabel     = "klink:primaryLabel"
)

// Load parses a semicolon-delimited triple file (subject;predicate;object)
// into an Ontology, building the stems index, the transitive-broaders index,
// and the undirected taxonomy graph (spec.md §4.A).
//
// Malformed lines are a CorpusParseError: logged and skipped, never fatal.
func Load(path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", csoerr.ErrAssetMissing, err)
	}
	defer f.Close()
	return LoadFrom(f)
}

// LoadFrom parses triples from an already-open reader, letting callers
// supply an embedded asset or test fixture without touching the filesystem.
func LoadFrom(r io.Reader) (*Ontology, error) {
	o := New()

	sameAsPairs := make([][2]string, 0)
	primaryPairs := make([][2]string, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ";", 3)
		if len(parts) != 3 {
			log.Printf("%v: line %d: expected 3 fields, got %d: %q", csoerr.ErrCorpusParse, lineNo, len(parts), line)
			continue
		}
		subj := strings.TrimSpace(parts[0])
		pred := strings.TrimSpace(parts[1])
		obj := strings.TrimSpace(parts[2])
		if subj == "" || pred == "" || obj == "" {
			log.Printf("%v: line %d: empty field: %q", csoerr.ErrCorpusParse, lineNo, line)
			continue
		}

		switch pred {
		case predLabel:
			t := normalizeWU(subj)
			o.topics[t] = struct{}{}
		case predBroaderGeneric:
			// subject is narrower of object: subject's broader is object.
			child := normalizeWU(subj)
			parent := normalizeWU(obj)
			o.topics[child] = struct{}{}
			o.topics[parent] = struct{}{}
			o.broaders[child] = appendUnique(o.broaders[child], parent)
			o.narrowers[parent] = appendUnique(o.narrowers[parent], child)
		case predRelatedEquivalent:
			a := normalizeWU(subj)
			b := normalizeWU(obj)
			o.topics[a] = struct{}{}
			o.topics[b] = struct{}{}
			sameAsPairs = append(sameAsPairs, [2]string{a, b})
		case predPrimaryLabel:
			t := normalizeWU(subj)
			primary := normalizeWU(obj)
			o.topics[t] = struct{}{}
			o.topics[primary] = struct{}{}
			primaryPairs = append(primaryPairs, [2]string{t, primary})
		default:
			log.Printf("%v: line %d: unknown predicate %q", csoerr.ErrCorpusParse, lineNo, pred)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	o.buildSameAs(sameAsPairs)
	o.buildPrimaryLabels(primaryPairs)
	o.buildStems()
	o.buildGraphAndAncestors()

	return o, nil
}

func normalizeWU(s string) string {
	return ToWU(strings.ToLower(strings.TrimSpace(s)))
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// buildSameAs turns relatedEquivalent pairs into symmetric cluster
// membership: a ∈ same_as[b] and b ∈ same_as[a].
func (o *Ontology) buildSameAs(pairs [][2]string) {
	for _, p := range pairs {
		o.sameAs[p[0]] = appendUnique(o.sameAs[p[0]], p[1])
		o.sameAs[p[1]] = appendUnique(o.sameAs[p[1]], p[0])
	}
}

// buildPrimaryLabels resolves klink:primaryLabel triples, then propagates
// idempotence: primary_label[primary_label[t]] == primary_label[t].
func (o *Ontology) buildPrimaryLabels(pairs [][2]string) {
	for _, p := range pairs {
		o.primaryLabel[p[0]] = p[1]
	}
	// Resolve chains (t -> p -> p2) to a fixed point, and make every same_as
	// sibling resolve to the same primary label when one is declared.
	for t := range o.primaryLabel {
		seen := map[string]struct{}{}
		cur := t
		for {
			if _, ok := seen[cur]; ok {
				break
			}
			seen[cur] = struct{}{}
			next, ok := o.primaryLabel[cur]
			if !ok || next == cur {
				break
			}
			cur = next
		}
		o.primaryLabel[t] = cur
	}
	for t, siblings := range o.sameAs {
		if _, ok := o.primaryLabel[t]; ok {
			continue
		}
		for _, s := range siblings {
			if p, ok := o.primaryLabel[s]; ok {
				o.primaryLabel[t] = p
				break
			}
		}
	}
}

// buildStems partitions topics by first-4-character prefix of the space-form
// label (spec.md invariant: stems partitions topics by first-4-char prefix).
func (o *Ontology) buildStems() {
	for t := range o.topics {
		key := stemKey(TopicFromWU(t))
		o.stems[key] = append(o.stems[key], t)
	}
}

// buildGraphAndAncestors builds the undirected taxonomy graph (one edge per
// broader link) and precomputes all_broaders via BFS from each topic.
func (o *Ontology) buildGraphAndAncestors() {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	o.nodeOf = make(map[string]int64, len(o.topics))
	o.topicOf = make(map[int64]string, len(o.topics))

	for t := range o.topics {
		n := g.NewNode()
		g.AddNode(n)
		o.nodeOf[t] = n.ID()
		o.topicOf[n.ID()] = t
	}
	edgeSeen := make(map[[2]int64]struct{})
	for child, parents := range o.broaders {
		for _, parent := range parents {
			a, b := o.nodeOf[child], o.nodeOf[parent]
			key := edgeKey(a, b)
			if _, ok := edgeSeen[key]; ok {
				continue
			}
			edgeSeen[key] = struct{}{}
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(a), T: simple.Node(b), W: 1})
		}
	}
	o.g = g

	for t := range o.topics {
		o.allBroaders[t] = o.bfsAncestors(t)
	}
}

func edgeKey(a, b int64) [2]int64 {
	if a < b {
		return [2]int64{a, b}
	}
	return [2]int64{b, a}
}

// bfsAncestors computes the transitive broader set of t via plain BFS over
// the directed broader relation (not the undirected graph, which would also
// pull in narrowers).
func (o *Ontology) bfsAncestors(t string) []string {
	visited := map[string]struct{}{t: {}}
	queue := append([]string{}, o.broaders[t]...)
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
		queue = append(queue, o.broaders[cur]...)
	}
	return out
}
