package corpus

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/godist/starling/core/hist"
	"github.com/wangkuiyi/parallel"
)

// Edge connects a term vertex to a document vertex.  Topics holds one
// entry per occurrence of the term in that document, so a term
// appearing n times contributes one edge with n entries, not n edges.
// The array shape is fixed at construction; the sampler rewrites the
// entries in place.
type Edge struct {
	Term   int32
	Doc    int32
	Topics []int32
}

// Graph is one generation of the bipartite corpus: term and document
// vertices with their topic counters, and edges grouped into worker
// partitions.  A sampling pass mutates edge topic arrays in place and
// then calls UpdateCounters to materialize the next generation; the
// superseded generation is explicitly Released, which bounds memory
// to roughly two live generations.
type Graph struct {
	NumTopics   int
	Generation  int
	TotalTokens int64
	Parts       [][]Edge
	Terms       map[int32]*Vertex
	Docs        map[int32]*Vertex
}

// Build converts documents into the edge list of a bipartite graph,
// initializes every token's topic with init, partitions the edges
// with degree-based hashing, and materializes the vertex counters.
func Build(docs []Document, numTopics, numParts int,
	init TopicInitializer, rng *rand.Rand) (*Graph, error) {

	if numTopics <= 0 {
		return nil, fmt.Errorf("numTopics (%d) must be positive", numTopics)
	}
	if numParts <= 0 {
		return nil, fmt.Errorf("numParts (%d) must be positive", numParts)
	}

	g := &Graph{
		NumTopics: numTopics,
		Terms:     make(map[int32]*Vertex),
		Docs:      make(map[int32]*Vertex),
	}

	var edges []Edge
	for _, d := range docs {
		if d.ID < 0 {
			return nil, fmt.Errorf(
				"document id %d is negative; negative ids are reserved",
				d.ID)
		}
		if _, ok := g.Docs[d.ID]; ok {
			return nil, fmt.Errorf("duplicated document id %d", d.ID)
		}
		if d.Len() == 0 {
			continue
		}

		topics, e := init(d, rng)
		if e != nil {
			return nil, e
		}

		dv := &Vertex{Kind: KindDoc, ID: d.ID, TopicHist: hist.NewOrdered()}
		g.Docs[d.ID] = dv

		for _, term := range sortedTerms(topics) {
			ts := topics[term]
			tv := g.Terms[term]
			if tv == nil {
				tv = &Vertex{
					Kind: KindTerm, ID: term, TopicHist: hist.NewOrdered()}
				g.Terms[term] = tv
			}
			tv.Degree++
			dv.Degree++
			g.TotalTokens += int64(len(ts))
			edges = append(edges, Edge{Term: term, Doc: d.ID, Topics: ts})
		}
	}

	termDeg, docDeg := g.DegreeTables()
	p, e := NewDegreeHash(numParts, termDeg, docDeg)
	if e != nil {
		return nil, e
	}
	g.Parts = groupEdges(edges, p)
	g.materializeCounters()
	return g, nil
}

func sortedTerms(topics map[int32][]int32) []int32 {
	terms := make([]int32, 0, len(topics))
	for t := range topics {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })
	return terms
}

func groupEdges(edges []Edge, p Partitioner) [][]Edge {
	parts := make([][]Edge, p.NumPartitions())
	for _, e := range edges {
		i := p.GetPartition(&e)
		parts[i] = append(parts[i], e)
	}
	return parts
}

// Partition redistributes the edges of g per p and returns the result
// as a new generation sharing vertex and edge storage.  It is applied
// once at construction time; reshuffling mid-run would invalidate the
// per-partition sampling state.
func (g *Graph) Partition(p Partitioner) *Graph {
	var edges []Edge
	for _, part := range g.Parts {
		edges = append(edges, part...)
	}
	return &Graph{
		NumTopics:   g.NumTopics,
		Generation:  g.Generation + 1,
		TotalTokens: g.TotalTokens,
		Parts:       groupEdges(edges, p),
		Terms:       g.Terms,
		Docs:        g.Docs,
	}
}

// DegreeTables returns the number of incident edges per term and per
// document vertex.
func (g *Graph) DegreeTables() (termDeg, docDeg map[int32]int32) {
	termDeg = make(map[int32]int32, len(g.Terms))
	docDeg = make(map[int32]int32, len(g.Docs))
	for id, v := range g.Terms {
		termDeg[id] = v.Degree
	}
	for id, v := range g.Docs {
		docDeg[id] = v.Degree
	}
	return termDeg, docDeg
}

// UpdateCounters scatters every edge's local topic counts to both
// endpoints and aggregates them into fresh vertex counters, returning
// the next graph generation.  Edge storage is shared with g; vertex
// counters are newly materialized, so readers of g never observe a
// half-updated state.  The aggregation is a commutative and
// associative sum, so partitions are scattered in parallel.
func (g *Graph) UpdateCounters() *Graph {
	ng := &Graph{
		NumTopics:   g.NumTopics,
		Generation:  g.Generation + 1,
		TotalTokens: g.TotalTokens,
		Parts:       g.Parts,
		Terms:       make(map[int32]*Vertex, len(g.Terms)),
		Docs:        make(map[int32]*Vertex, len(g.Docs)),
	}
	for id, v := range g.Terms {
		ng.Terms[id] = &Vertex{
			Kind: KindTerm, ID: id, Degree: v.Degree,
			TopicHist: hist.NewOrderedAndReserve(v.TopicHist.Len())}
	}
	for id, v := range g.Docs {
		ng.Docs[id] = &Vertex{
			Kind: KindDoc, ID: id, Degree: v.Degree,
			TopicHist: hist.NewOrderedAndReserve(v.TopicHist.Len())}
	}
	ng.materializeCounters()
	return ng
}

func (g *Graph) materializeCounters() {
	parallel.For(0, len(g.Parts), 1, func(i int) error {
		local := hist.NewSparse()
		for j := range g.Parts[i] {
			e := &g.Parts[i][j]
			local.Clear()
			for _, t := range e.Topics {
				local[t]++
			}

			tv, dv := g.Terms[e.Term], g.Docs[e.Doc]
			tv.Lock()
			local.ForEach(func(topic int, count int64) error {
				tv.TopicHist.Inc(topic, int(count))
				return nil
			})
			tv.Unlock()

			dv.Lock()
			local.ForEach(func(topic int, count int64) error {
				dv.TopicHist.Inc(topic, int(count))
				return nil
			})
			dv.Unlock()
		}
		return nil
	})
}

// GlobalCounter sums the term-vertex counters into the dense global
// topic counter.  The same sum over document vertices and the total
// token count must agree elementwise; a divergence means the counter
// bookkeeping is broken and the run must abort.
func (g *Graph) GlobalCounter() (hist.Dense, error) {
	termSum := hist.NewDense(g.NumTopics)
	for _, v := range g.Terms {
		v.TopicHist.ForEach(func(topic int, count int64) error {
			termSum.Inc(topic, int(count))
			return nil
		})
	}

	docSum := hist.NewDense(g.NumTopics)
	for _, v := range g.Docs {
		v.TopicHist.ForEach(func(topic int, count int64) error {
			docSum.Inc(topic, int(count))
			return nil
		})
	}

	if !termSum.Equal(docSum) {
		return nil, fmt.Errorf(
			"generation %d: term counter sum %v diverged from document counter sum %v",
			g.Generation, termSum, docSum)
	}
	if total := hist.Sum(termSum); total != g.TotalTokens {
		return nil, fmt.Errorf(
			"generation %d: global counter total %d, want %d tokens",
			g.Generation, total, g.TotalTokens)
	}
	return termSum, nil
}

// NumEdges returns the number of edges over all partitions.
func (g *Graph) NumEdges() int {
	n := 0
	for _, part := range g.Parts {
		n += len(part)
	}
	return n
}

// Release drops the storage of a superseded generation.  Callers must
// release the prior snapshot once the next one is materialized to
// keep at most two generations live.
func (g *Graph) Release() {
	g.Parts = nil
	g.Terms = nil
	g.Docs = nil
}
