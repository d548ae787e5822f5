package gibbs

import (
	"encoding/gob"
	"fmt"
	"log"
	"math/rand"
	"path"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	cmprs "github.com/wangkuiyi/compress_io"
	file "github.com/wangkuiyi/file"
	"github.com/wangkuiyi/parallel"

	"github.com/godist/starling/core/corpus"
	"github.com/godist/starling/core/hist"
)

// Trainer drives collapsed Gibbs sampling over a partitioned corpus
// graph.  Partitions are sampled concurrently; the term and document
// counters touched by one edge are locked together for the duration
// of that edge's resampling, and cross-partition replicas are
// reconciled only by the end-of-pass counter aggregation.
type Trainer struct {
	cfg      *Config
	graph    *corpus.Graph
	numTerms int // vocabulary size V, not the corpus' distinct terms

	// Derived constants of the run.
	beta     float64
	betaSum  float64 // V * beta
	alphaSum float64 // alpha * numTopics
	alphaAS  float64
	termSum  float64 // numTokens - 1 + alphaAS*numTopics

	// Live global topic counter, mutated with atomics during a pass
	// and rebuilt from the graph after it.
	global []int64

	wCache  *lru.Cache[int32, *hist.Cumulative]
	tBucket atomic.Pointer[hist.DenseCumulative]

	iter int
}

// NewTrainer builds a cold-start trainer: every token's topic is
// initialized uniformly at random.  numTerms is the vocabulary size,
// which bounds the term id space; the corpus may use any subset of it.
func NewTrainer(cfg *Config, numTerms int,
	docs []corpus.Document) (*Trainer, error) {

	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	return newTrainer(cfg, numTerms, docs, corpus.UniformTopics(cfg.NumTopics))
}

// NewIncrementalTrainer builds a warm-start trainer whose tokens are
// initialized from a prior model's term-topic distribution.  The prior
// must have been trained over the same vocabulary and topic count.
// Apart from the initializer it shares the sampling engine with
// NewTrainer.
func NewIncrementalTrainer(cfg *Config, prior *Model, numTerms int,
	docs []corpus.Document) (*Trainer, error) {

	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	if prior.NumTopics != cfg.NumTopics {
		return nil, fmt.Errorf(
			"prior model has %d topics, config asks for %d",
			prior.NumTopics, cfg.NumTopics)
	}
	if prior.NumTerms != numTerms {
		return nil, fmt.Errorf(
			"prior model vocabulary has %d terms, corpus vocabulary has %d",
			prior.NumTerms, numTerms)
	}
	return newTrainer(cfg, numTerms, docs,
		WarmStartTopics(prior, DefaultWarmStartSweeps))
}

func newTrainer(cfg *Config, numTerms int, docs []corpus.Document,
	init corpus.TopicInitializer) (*Trainer, error) {

	rng := rand.New(rand.NewSource(cfg.Seed))
	g, e := corpus.Build(docs, cfg.NumTopics, cfg.Partitions, init, rng)
	if e != nil {
		return nil, e
	}
	return newTrainerFromGraph(cfg, numTerms, g, 0)
}

// newTrainerFromGraph wraps an already materialized graph generation,
// either freshly built or decoded from a checkpoint.
func newTrainerFromGraph(cfg *Config, numTerms int, g *corpus.Graph,
	iter int) (*Trainer, error) {

	if numTerms <= 0 {
		return nil, fmt.Errorf("numTerms (%d) must be positive", numTerms)
	}
	if numTerms < len(g.Terms) {
		return nil, fmt.Errorf(
			"numTerms (%d) smaller than the corpus' %d distinct terms",
			numTerms, len(g.Terms))
	}
	gc, e := g.GlobalCounter()
	if e != nil {
		return nil, e
	}

	size := cfg.WCacheSize
	if size <= 0 {
		size = DefaultWCacheSize
	}
	wc, e := lru.New[int32, *hist.Cumulative](size)
	if e != nil {
		return nil, e
	}

	k := float64(cfg.NumTopics)
	t := &Trainer{
		cfg:      cfg,
		graph:    g,
		numTerms: numTerms,
		beta:     cfg.Beta,
		betaSum:  cfg.Beta * float64(numTerms),
		alphaSum: cfg.Alpha * k,
		alphaAS:  cfg.AlphaAS,
		termSum:  float64(g.TotalTokens-1) + cfg.AlphaAS*k,
		global:   make([]int64, cfg.NumTopics),
		wCache:   wc,
		iter:     iter,
	}
	t.setGlobal(gc)
	return t, nil
}

// Graph returns the current corpus generation.
func (t *Trainer) Graph() *corpus.Graph {
	return t.graph
}

// Iteration returns the number of completed sampling passes.
func (t *Trainer) Iteration() int {
	return t.iter
}

func (t *Trainer) setGlobal(gc hist.Dense) {
	for k := range t.global {
		atomic.StoreInt64(&t.global[k], gc[k])
	}
}

// Run performs sampling passes.  Every CheckpointInterval-th pass the
// graph is checkpointed to JobDir.  A pass either completes and its
// counters are committed, or the run aborts with an error and must be
// restarted from the last checkpoint; there is no mid-pass
// cancellation.
func (t *Trainer) Run(iterations int) error {
	if iterations <= 0 {
		return fmt.Errorf("iterations (%d) must be positive", iterations)
	}
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if e := t.pass(); e != nil {
			return e
		}
		if t.iter%t.cfg.CheckpointInterval == 0 {
			if e := t.checkpoint(); e != nil {
				return e
			}
		}
		log.Printf("Iteration %04d done in %s", t.iter, time.Since(start))
	}
	return nil
}

// pass resamples every token exactly once, then materializes the next
// graph generation, re-verifies the global counter, and releases the
// superseded snapshot.
func (t *Trainer) pass() error {
	g := t.graph
	base := t.cfg.Seed + int64(g.Generation+1)*7919
	if e := parallel.For(0, len(g.Parts), 1, func(p int) error {
		rng := rand.New(rand.NewSource(base + int64(p)))
		var dBuf hist.Cumulative
		part := g.Parts[p]
		for i := range part {
			t.sampleEdge(&part[i], &dBuf, rng)
		}
		return nil
	}); e != nil {
		return e
	}

	ng := g.UpdateCounters()
	gc, e := ng.GlobalCounter()
	if e != nil {
		return e // integrity error: the run must abort
	}
	t.graph = ng
	g.Release()
	t.setGlobal(gc)
	t.wCache.Purge()
	t.tBucket.Store(nil)
	t.iter++
	return nil
}

func (t *Trainer) sampleEdge(e *corpus.Edge, dBuf *hist.Cumulative,
	rng *rand.Rand) {

	doc := t.graph.Docs[e.Doc]
	term := t.graph.Terms[e.Term]

	// Document endpoints are locked before term endpoints, a global
	// order over the two vertex sets.
	doc.Lock()
	term.Lock()
	for i := range e.Topics {
		old := e.Topics[i]
		d := t.docBucket(dBuf, doc, term, old)
		w := t.wordBucket(e.Term, term, rng)
		s := t.smoothingBucket(rng)
		u := rng.Float64() * (d.Total() + w.Total() + s.Total())
		next := sampleTopic(d, w, s, u, t.cfg.NumTopics)
		if next != old {
			t.moveToken(doc, term, old, next)
			e.Topics[i] = next
		}
	}
	term.Unlock()
	doc.Unlock()
}

// moveToken moves one token between topics on both endpoint counters
// and the global counter.  Moving a token from a to b and then from b
// back to a restores all three counters exactly.  Callers hold both
// vertex locks.
func (t *Trainer) moveToken(doc, term *corpus.Vertex, old, next int32) {
	doc.TopicHist.Dec(int(old), 1)
	doc.TopicHist.Inc(int(next), 1)
	term.TopicHist.Dec(int(old), 1)
	term.TopicHist.Inc(int(next), 1)
	atomic.AddInt64(&t.global[old], -1)
	atomic.AddInt64(&t.global[next], 1)
}

// SaveModel runs burnInIter further passes, accumulating the
// term-topic counters after each, and returns their average: the
// standard average-over-post-burn-in-samples estimator, which reduces
// the variance of the reported model.
func (t *Trainer) SaveModel(burnInIter int) (*Model, error) {
	if burnInIter <= 0 {
		return nil, fmt.Errorf("burnInIter (%d) must be positive", burnInIter)
	}

	m := NewModel(t.cfg.NumTopics, t.numTerms,
		t.cfg.Alpha, t.cfg.Beta, t.cfg.AlphaAS)
	for i := 0; i < burnInIter; i++ {
		if e := t.pass(); e != nil {
			return nil, e
		}
		m.AccumulateGraph(t.graph)
	}
	m.Scale(1 / float64(burnInIter))
	return m, nil
}

// checkpointState is the gob payload of a checkpoint file.
type checkpointState struct {
	Iteration int
	NumTerms  int
	Graph     *corpus.Graph
}

// checkpoint writes the current graph generation to JobDir, breaking
// snapshot lineage so that an aborted run restarts from here instead
// of from the initial corpus.
func (t *Trainer) checkpoint() error {
	if len(t.cfg.JobDir) == 0 {
		return nil
	}
	if b, e := file.Exists(t.cfg.JobDir); e != nil {
		return e
	} else if !b {
		if e := file.MkDir(t.cfg.JobDir); e != nil {
			return e
		}
	}

	p := path.Join(t.cfg.JobDir,
		fmt.Sprintf("%s-checkpoint-%05d.gz", t.cfg.JobName, t.iter))
	f, e := file.Create(p)
	w := cmprs.NewWriter(f, e, path.Ext(p))
	if w == nil {
		return fmt.Errorf("Cannot create checkpoint %s: %v", p, e)
	}
	defer w.Close()

	state := checkpointState{
		Iteration: t.iter, NumTerms: t.numTerms, Graph: t.graph}
	if e := gob.NewEncoder(w).Encode(&state); e != nil {
		return fmt.Errorf("Failed encoding checkpoint %s: %v", p, e)
	}
	log.Printf("Checkpointed generation %d to %s", t.graph.Generation, p)
	return nil
}

// LoadCheckpoint rebuilds a trainer from a checkpoint file written by
// Run, positioned at the checkpointed iteration, so a run aborted
// mid-way resumes sampling where it left off.
func LoadCheckpoint(cfg *Config, filename string) (*Trainer, error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	f, e := file.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		return nil, fmt.Errorf("Cannot open checkpoint %s: %v", filename, e)
	}
	defer r.Close()

	var state checkpointState
	if e := gob.NewDecoder(r).Decode(&state); e != nil {
		return nil, fmt.Errorf("Failed decoding checkpoint %s: %v",
			filename, e)
	}
	if state.Graph == nil || state.Graph.NumTopics != cfg.NumTopics {
		return nil, fmt.Errorf(
			"checkpoint %s does not match the configured %d topics",
			filename, cfg.NumTopics)
	}

	log.Printf("Resuming from checkpoint %s at iteration %d",
		filename, state.Iteration)
	return newTrainerFromGraph(cfg, state.NumTerms, state.Graph,
		state.Iteration)
}
