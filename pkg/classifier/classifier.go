// Package classifier is the Orchestrator of spec.md §4.H: it holds an
// Ontology and EmbeddingStore that the caller loaded once, builds a Paper per
// document, runs the
// enabled modules, merges and post-processes the result, and offers a
// worker-partitioned batch driver.
//
// Grounded on the teacher repository's korel.go facade (a struct holding
// long-lived dependencies with a thin Search/Ingest API) and its AutoTune
// iteration style for coordinating several sub-packages behind one entry
// point.
package classifier

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/csoclassifier/pkg/config"
	"github.com/cognicore/csoclassifier/pkg/csoerr"
	"github.com/cognicore/csoclassifier/pkg/embedding"
	"github.com/cognicore/csoclassifier/pkg/ontology"
	"github.com/cognicore/csoclassifier/pkg/paper"
	"github.com/cognicore/csoclassifier/pkg/postprocess"
	"github.com/cognicore/csoclassifier/pkg/result"
	"github.com/cognicore/csoclassifier/pkg/semantic"
	"github.com/cognicore/csoclassifier/pkg/stoplist"
	"github.com/cognicore/csoclassifier/pkg/syntactic"
)

// Document is the tagged input record of spec.md §6.
type Document struct {
	Title    string
	Abstract string
	Keywords any // string or []string
}

// Classifier is the Orchestrator. Ontology and EmbeddingStore are read-only
// after construction and safe to share across concurrent batch workers
// (spec.md §5).
type Classifier struct {
	ont      *ontology.Ontology
	store    *embedding.Store
	stops    *stoplist.Manager
	defaults config.Parameters
}

// New constructs an Orchestrator around an already-loaded Ontology and
// (optionally nil) EmbeddingStore.
func New(ont *ontology.Ontology, store *embedding.Store, stops *stoplist.Manager, defaults config.Parameters) *Classifier {
	return &Classifier{ont: ont, store: store, stops: stops, defaults: defaults}
}

// Run classifies a single document (spec.md §4.H: "single-paper... driver").
func (c *Classifier) Run(ctx context.Context, doc Document, params config.Parameters) (result.Result, error) {
	if params == (config.Parameters{}) {
		params = c.defaults
	}
	if err := params.Validate(); err != nil {
		return result.Result{}, err
	}

	p := paper.New(doc.Title, doc.Abstract, paper.JoinKeywords(doc.Keywords))
	if err := p.Preprocess(c.stops); err != nil {
		return result.Result{}, fmt.Errorf("preprocess: %w", err)
	}

	b := result.NewBuilder()

	if params.Modules == config.ModulesSyntactic || params.Modules == config.ModulesBoth {
		syn := syntactic.Classify(p.SyntacticChunks, c.ont, params.MinSimilarity)
		b.AddSyntactic(syn.Topics, syn.Explanation)
	}

	if params.Modules == config.ModulesSemantic || params.Modules == config.ModulesBoth {
		semCfg := semantic.Config{
			FastMode:    params.FastClassification,
			WordSimMin:  params.WordSimilarityMin,
			TopicSimMin: params.TopicSimilarityMin,
		}
		sem := semantic.Classify(p.SemanticChunks, c.store, c.ont, semCfg)
		b.AddSemantic(sem.Topics, sem.Explanation)
	}

	pp := postprocess.Run(postprocess.Input{
		Syntactic:   b.Syntactic(),
		Semantic:    b.Semantic(),
		Union:       b.Union(),
		Explanation: b.Explanation(),
	}, c.ont, c.store, postprocess.Config{
		DeleteOutliers:   params.DeleteOutliers,
		NetworkThreshold: params.NetworkThreshold,
		LCSRescueMax:     params.LCSRescueThreshold,
		Enhancement:      enhancementMode(params.Enhancement),
	})

	return result.Finalize(pp.Syntactic, pp.Semantic, pp.Union, pp.Enhanced, pp.Explanation, params.Explanation), nil
}

func enhancementMode(e config.Enhancement) ontology.ClimbMode {
	switch e {
	case config.EnhancementFirst:
		return ontology.ClimbFirst
	case config.EnhancementAll:
		return ontology.ClimbAll
	default:
		return ontology.ClimbNone
	}
}

// BatchResult pairs a document id with either its Result or the error that
// prevented classification (spec.md §7: one failure must not abort others).
type BatchResult struct {
	ID     string
	Result result.Result
	Err    error
}

// Batch classifies a map of documents, partitioning it across params.Workers
// goroutines (spec.md §4.H: "batch(papers, workers) partitions the document
// map into ceil(N/workers) chunks"). The merged map is deterministic and
// independent of worker count (spec.md §8).
func (c *Classifier) Batch(ctx context.Context, docs map[string]Document, params config.Parameters) (map[string]result.Result, map[string]error) {
	if params == (config.Parameters{}) {
		params = c.defaults
	}

	runID := newRunID()
	if !params.Silent {
		log.Printf("classifier: batch %s starting, %d documents, %d workers", runID, len(docs), params.Workers)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}

	shards := partition(ids, params.Workers)

	results := make(map[string]result.Result, len(docs))
	errs := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		shard := shard
		g.Go(func() error {
			for _, id := range shard {
				res, err := c.runRecovered(gctx, docs[id], params)
				mu.Lock()
				if err != nil {
					errs[id] = &csoerr.DocError{ID: id, Err: err}
				} else {
					results[id] = res
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // per-document errors are recorded above; workers never abort siblings

	if !params.Silent {
		log.Printf("classifier: batch %s done, %d ok, %d failed", runID, len(results), len(errs))
	}

	return results, errs
}

// runRecovered isolates a panicking document from the rest of its shard.
func (c *Classifier) runRecovered(ctx context.Context, doc Document, params config.Parameters) (res result.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Run(ctx, doc, params)
}

// partition splits ids into min(workers, len(ids)) shards of at most
// ceil(len(ids)/workers) ids each, distributing round-robin so shard sizes
// differ by at most one.
func partition(ids []string, workers int) [][]string {
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers == 0 {
		return nil
	}
	shards := make([][]string, workers)
	for i, id := range ids {
		shards[i%workers] = append(shards[i%workers], id)
	}
	return shards
}

// newRunID mints a correlation id for log lines, following the teacher's
// cards package pattern of a monotonic ULID entropy source over crypto/rand.
func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Now(), entropy).String()
}
