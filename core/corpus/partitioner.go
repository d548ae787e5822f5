package corpus

import (
	"fmt"
	"math"
)

// Partitioner assigns each edge to a worker partition.
type Partitioner interface {
	NumPartitions() int
	GetPartition(e *Edge) int
}

// mixingPrime spreads consecutive vertex ids over partitions.
const mixingPrime int64 = 1125899906842597

// DegreeHash routes an edge by the id of its lower-degree endpoint.
// High-degree vertices (frequent terms) are the contention
// bottleneck: hashing their edges by the other endpoint spreads their
// replicas over partitions instead of piling them into one.  The
// assignment is a pure function of the endpoint ids, their degrees,
// and the partition count, so it is stable across reshuffles.
type DegreeHash struct {
	parts   int
	termDeg map[int32]int32
	docDeg  map[int32]int32
}

func NewDegreeHash(parts int, termDeg, docDeg map[int32]int32) (*DegreeHash, error) {
	if parts <= 0 {
		return nil, fmt.Errorf("parts (%d) must be positive", parts)
	}
	return &DegreeHash{parts: parts, termDeg: termDeg, docDeg: docDeg}, nil
}

func (p *DegreeHash) NumPartitions() int {
	return p.parts
}

func (p *DegreeHash) GetPartition(e *Edge) int {
	// Ties prefer the term, which is the source endpoint.
	id := int64(e.Term)
	if p.docDeg[e.Doc] < p.termDeg[e.Term] {
		id = docGlobalID(e.Doc)
	}
	h := id * mixingPrime
	if h == math.MinInt64 {
		h = 0
	} else if h < 0 {
		h = -h
	}
	return int(h % int64(p.parts))
}
