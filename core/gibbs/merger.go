package gibbs

import (
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MergeDuplicateTopics collapses topics whose term-topic columns are
// near-duplicates.  It computes pairwise cosine similarity over the
// term-topic matrix; for every pair above threshold the larger topic
// id is mapped onto the smaller, edges are relabeled, and counters
// are recomputed.  It returns the applied remapping, indexed by old
// topic id.
func (t *Trainer) MergeDuplicateTopics(threshold float64) ([]int32, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold (%f) must be in (0, 1)", threshold)
	}

	g := t.graph
	numTopics := t.cfg.NumTopics

	terms := make([]int32, 0, len(g.Terms))
	for id := range g.Terms {
		terms = append(terms, id)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })

	a := mat.NewDense(len(terms), numTopics, nil)
	for row, id := range terms {
		g.Terms[id].TopicHist.ForEach(func(k int, count int64) error {
			a.Set(row, k, float64(count))
			return nil
		})
	}

	// gram(i,j) = column_i . column_j; the diagonal carries the
	// squared column norms.
	var gram mat.Dense
	gram.Mul(a.T(), a)
	norm := make([]float64, numTopics)
	for k := 0; k < numTopics; k++ {
		norm[k] = math.Sqrt(gram.At(k, k))
	}

	mapping := make([]int32, numTopics)
	for k := range mapping {
		mapping[k] = int32(k)
	}
	changed := false
	for j := 1; j < numTopics; j++ {
		for i := 0; i < j; i++ {
			if norm[i] == 0 || norm[j] == 0 {
				continue
			}
			if gram.At(i, j)/(norm[i]*norm[j]) > threshold {
				mapping[j] = mapping[i]
				changed = true
				break
			}
		}
	}
	if !changed {
		return mapping, nil
	}

	for pi := range g.Parts {
		for ei := range g.Parts[pi] {
			topics := g.Parts[pi][ei].Topics
			for i := range topics {
				topics[i] = mapping[topics[i]]
			}
		}
	}

	ng := g.UpdateCounters()
	gc, e := ng.GlobalCounter()
	if e != nil {
		return nil, e
	}
	t.graph = ng
	g.Release()
	t.setGlobal(gc)
	t.wCache.Purge()
	t.tBucket.Store(nil)

	log.Printf("Merged duplicate topics above similarity %g: %v",
		threshold, mapping)
	return mapping, nil
}
