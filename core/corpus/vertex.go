package corpus

import (
	"sync"

	"github.com/godist/starling/core/hist"
)

// Kind tags a vertex as a term or a document.  The tag is resolved
// once at construction; the rest of the engine never branches on id
// signs.
type Kind int8

const (
	KindTerm Kind = iota
	KindDoc
)

// Vertex is one endpoint of the bipartite corpus graph.  ID is the
// raw term or document id; TopicHist counts the topic assignments of
// all token occurrences incident on the vertex, so its sum equals the
// term's corpus frequency or the document's length.
type Vertex struct {
	Kind      Kind
	ID        int32
	Degree    int32 // number of incident edges
	TopicHist *hist.Ordered

	mu sync.Mutex
}

// Lock and Unlock guard TopicHist while several edges of the same
// partition touch the vertex concurrently.  An edge always locks its
// document endpoint before its term endpoint, which gives a global
// lock order across the two-vertex sets.
func (v *Vertex) Lock()   { v.mu.Lock() }
func (v *Vertex) Unlock() { v.mu.Unlock() }

// GlobalID maps the vertex into the single signed id space used by
// the partitioner: term ids map to themselves and document id d maps
// to -(d+1), so the two ranges cannot collide and document 0 stays
// addressable.
func (v *Vertex) GlobalID() int64 {
	if v.Kind == KindDoc {
		return docGlobalID(v.ID)
	}
	return int64(v.ID)
}

func docGlobalID(d int32) int64 {
	return -(int64(d) + 1)
}
