// Package semantic implements n-gram → neighbor-topic lookup, score
// aggregation, and knee-based cutoff selection (spec.md §4.E).
package semantic

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/cognicore/csoclassifier/pkg/embedding"
	"github.com/cognicore/csoclassifier/pkg/ontology"
)

// Config holds the tunable thresholds of spec.md §4.E.
type Config struct {
	FastMode       bool    // use cached neighbor map instead of live vector NN
	WordSimMin     float64 // σ_w, default 0.7
	TopicSimMin    float64 // σ_t, default 0.94
	LiveTopK       int     // top-k neighbors requested in live mode, default 10
}

// DefaultConfig returns spec.md's documented defaults.
func DefaultConfig() Config {
	return Config{FastMode: true, WordSimMin: 0.7, TopicSimMin: 0.94, LiveTopK: 10}
}

// Result is the output of Classify: the retained topics (space form),
// per-topic normalized weight, and the explanation map.
type Result struct {
	Topics      []string
	Weight      map[string]float64
	Explanation map[string]map[string]struct{}
}

// accumulator tracks spec.md §4.E step 2's per-candidate running stats,
// keyed by underscore-form topic.
type accumulator struct {
	times               int
	gramSimilarity      []float64
	grams               map[string]int
	embeddingSimilarity float64
	embeddingMatched    string
	syntacticHit        bool
}

// Classify runs steps 1-4 of spec.md §4.E over every semantic chunk.
func Classify(chunks []string, store *embedding.Store, ont *ontology.Ontology, cfg Config) Result {
	if cfg.WordSimMin == 0 {
		cfg.WordSimMin = 0.7
	}
	if cfg.TopicSimMin == 0 {
		cfg.TopicSimMin = 0.94
	}
	if cfg.LiveTopK == 0 {
		cfg.LiveTopK = 10
	}

	topics := make(map[string]*accumulator)
	explanation := make(map[string]map[string]struct{})

	for _, chunk := range chunks {
		collectChunk(chunk, store, ont, cfg, topics, explanation)
	}

	if len(topics) == 0 {
		return Result{Explanation: explanation}
	}

	return score(topics, explanation, ont)
}

// collectChunk implements step 1 (candidate collection) and step 2
// (accumulation) for every 1-, 2-, 3-gram of one chunk.
func collectChunk(chunk string, store *embedding.Store, ont *ontology.Ontology, cfg Config,
	topics map[string]*accumulator, explanation map[string]map[string]struct{}) {

	tokens := strings.Fields(chunk)
	if len(tokens) == 0 {
		return
	}

	for n := 1; n <= 3 && n <= len(tokens); n++ {
		for p := 0; p+n <= len(tokens); p++ {
			gramTokens := tokens[p : p+n]
			gramU := strings.Join(gramTokens, "_")
			gram := strings.Join(gramTokens, " ")

			quads := candidatesFor(gramU, gramTokens, n, store, ont, cfg)
			for _, q := range quads {
				if !ont.HasTopic(q.Topic) || q.SimT < cfg.TopicSimMin {
					continue
				}
				acc, ok := topics[q.Topic]
				if !ok {
					acc = &accumulator{grams: make(map[string]int)}
					topics[q.Topic] = acc
				}
				acc.times++
				acc.gramSimilarity = append(acc.gramSimilarity, q.SimW)
				acc.grams[gramU]++
				if q.SimT > acc.embeddingSimilarity {
					acc.embeddingSimilarity = q.SimT
					acc.embeddingMatched = q.Wet
				}
				if q.SimW == 1.0 {
					acc.syntacticHit = true
				}

				primary := ont.PrimaryLabelWU(q.Topic)
				if explanation[primary] == nil {
					explanation[primary] = make(map[string]struct{})
				}
				explanation[primary][gram] = struct{}{}
			}
		}
	}
}

// quad is the (topic, sim_t, wet, sim_w) tuple of spec.md §4.E step 1.
type quad struct {
	Topic string
	SimT  float64
	Wet   string
	SimW  float64
}

func candidatesFor(gramU string, gramTokens []string, n int, store *embedding.Store, ont *ontology.Ontology, cfg Config) []quad {
	if entries, ok := store.Get(gramU); ok {
		out := make([]quad, 0, len(entries))
		for _, e := range entries {
			out = append(out, quad{Topic: e.Topic, SimT: e.SimT, Wet: e.Wet, SimW: e.SimW})
		}
		return out
	}

	if cfg.FastMode && n > 1 {
		return fastModeUnigramIntersection(gramTokens, n, store)
	}

	if !cfg.FastMode && store.HasVectors() {
		return liveModeCandidates(gramU, gramTokens, store, ont, cfg)
	}

	return nil
}

// fastModeUnigramIntersection implements the fast-mode fallback of spec.md
// §4.E step 1: when no cache entry exists for the full n-gram and n > 1,
// look up each unigram's cache entries and retain topics whose support
// count equals n (appeared in every token's cache). This is the one rule
// spec.md explicitly calls out as load-bearing (§9 open question).
func fastModeUnigramIntersection(gramTokens []string, n int, store *embedding.Store) []quad {
	support := make(map[string]int)
	best := make(map[string]quad)
	for _, tok := range gramTokens {
		entries, ok := store.Get(tok)
		if !ok {
			continue
		}
		seen := make(map[string]struct{})
		for _, e := range entries {
			if _, dup := seen[e.Topic]; dup {
				continue
			}
			seen[e.Topic] = struct{}{}
			support[e.Topic]++
			if cur, ok := best[e.Topic]; !ok || e.SimT > cur.SimT {
				best[e.Topic] = quad{Topic: e.Topic, SimT: e.SimT, Wet: e.Wet, SimW: e.SimW}
			}
		}
	}
	var out []quad
	for topic, count := range support {
		if count == n {
			out = append(out, best[topic])
		}
	}
	return out
}

// liveModeCandidates implements the live-mode path of spec.md §4.E step 1:
// query top-k similar words, filter by σ_w, fuzzy-match each against the
// ontology's stem buckets, and keep quadruples clearing σ_t.
func liveModeCandidates(gramU string, gramTokens []string, store *embedding.Store, ont *ontology.Ontology, cfg Config) []quad {
	var neighbors []embedding.SimilarWord
	if store.Has(gramU) {
		neighbors = store.Similar(gramU, cfg.LiveTopK)
	} else {
		for _, tok := range gramTokens {
			neighbors = append(neighbors, store.Similar(tok, cfg.LiveTopK)...)
		}
	}
	neighbors = append(neighbors, embedding.SimilarWord{Word: gramU, Sim: 1.0})

	var out []quad
	for _, nb := range neighbors {
		if nb.Sim < cfg.WordSimMin && nb.Word != gramU {
			continue
		}
		candidates := ont.ClosestMatches(strings.ReplaceAll(nb.Word, "_", " "))
		for _, candidate := range candidates {
			candidateLabel := ontology.TopicFromWU(candidate)
			simT32, err := edlib.StringsSimilarity(candidateLabel, strings.ReplaceAll(nb.Word, "_", " "), edlib.Levenshtein)
			simT := float64(simT32)
			if err != nil || simT < cfg.TopicSimMin {
				continue
			}
			out = append(out, quad{Topic: candidate, SimT: simT, Wet: nb.Word, SimW: nb.Sim})
		}
	}
	return out
}

// cluster is a unique primary label's collapsed score, for step 3/4.
type cluster struct {
	Primary string
	Score   float64
}

// score implements step 3 (scoring + primary-label collapse) and step 4
// (knee-cut selection).
func score(topics map[string]*accumulator, explanation map[string]map[string]struct{}, ont *ontology.Ontology) Result {
	rawScore := make(map[string]float64, len(topics))
	maxSyntacticHitScore := 0.0
	for t, acc := range topics {
		s := float64(acc.times * len(acc.grams))
		rawScore[t] = s
		if acc.syntacticHit && s > maxSyntacticHitScore {
			maxSyntacticHitScore = s
		}
	}
	if maxSyntacticHitScore > 0 {
		for t, acc := range topics {
			if acc.syntacticHit && rawScore[t] < maxSyntacticHitScore {
				rawScore[t] = maxSyntacticHitScore
			}
		}
	}

	// Collapse to unique primary labels, keeping the max score per cluster.
	byPrimary := make(map[string]float64)
	for t, s := range rawScore {
		p := ont.PrimaryLabelWU(t)
		if cur, ok := byPrimary[p]; !ok || s > cur {
			byPrimary[p] = s
		}
	}

	clusters := make([]cluster, 0, len(byPrimary))
	for p, s := range byPrimary {
		clusters = append(clusters, cluster{Primary: p, Score: s})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Score != clusters[j].Score {
			return clusters[i].Score > clusters[j].Score
		}
		return clusters[i].Primary < clusters[j].Primary
	})

	retained := kneeCut(clusters)

	maxScore := 0.0
	for _, c := range retained {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	res := Result{Weight: make(map[string]float64), Explanation: make(map[string]map[string]struct{})}
	retainedSet := make(map[string]struct{}, len(retained))
	for _, c := range retained {
		topic := ontology.TopicFromWU(c.Primary)
		res.Topics = append(res.Topics, topic)
		res.Weight[topic] = c.Score / maxScore
		retainedSet[c.Primary] = struct{}{}
	}
	for p, chunks := range explanation {
		primary := ont.PrimaryLabelWU(p)
		if _, ok := retainedSet[primary]; !ok {
			continue
		}
		topic := ontology.TopicFromWU(primary)
		if res.Explanation[topic] == nil {
			res.Explanation[topic] = make(map[string]struct{})
		}
		for g := range chunks {
			res.Explanation[topic][g] = struct{}{}
		}
	}
	return res
}
