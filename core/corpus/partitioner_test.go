package corpus

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// partitionOf replays the degree-based hashing arithmetic so tests
// can state which endpoint the partitioner must have chosen.
func partitionOf(id int64, parts int) int {
	h := id * mixingPrime
	if h < 0 {
		h = -h
	}
	return int(h % int64(parts))
}

func TestDegreeHashValidatesPartitionCount(t *testing.T) {
	_, e := NewDegreeHash(0, nil, nil)
	assert.Error(t, e)
}

func TestDegreeHashRoutesByLowerDegreeEndpoint(t *testing.T) {
	const parts = 97
	edge := &Edge{Term: 11, Doc: 7}

	// Document has the lower degree: route by the document id.
	p, e := NewDegreeHash(parts,
		map[int32]int32{11: 5}, map[int32]int32{7: 2})
	require.NoError(t, e)
	assert.Equal(t, partitionOf(docGlobalID(7), parts), p.GetPartition(edge))

	// Term has the lower degree: route by the term id.
	p, e = NewDegreeHash(parts,
		map[int32]int32{11: 1}, map[int32]int32{7: 4})
	require.NoError(t, e)
	assert.Equal(t, partitionOf(11, parts), p.GetPartition(edge))

	// Ties prefer the term (source) endpoint.
	p, e = NewDegreeHash(parts,
		map[int32]int32{11: 3}, map[int32]int32{7: 3})
	require.NoError(t, e)
	assert.Equal(t, partitionOf(11, parts), p.GetPartition(edge))
}

func TestDegreeHashIsDeterministic(t *testing.T) {
	termDeg := map[int32]int32{3: 2}
	docDeg := map[int32]int32{5: 9}
	p, e := NewDegreeHash(16, termDeg, docDeg)
	require.NoError(t, e)

	edge := &Edge{Term: 3, Doc: 5}
	first := p.GetPartition(edge)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, p.GetPartition(edge))
	}

	// A second partitioner over the same degrees agrees.
	q, e := NewDegreeHash(16, termDeg, docDeg)
	require.NoError(t, e)
	assert.Equal(t, first, q.GetPartition(edge))
}

func TestDegreeHashBalance(t *testing.T) {
	const (
		parts = 8
		edges = 200000
	)
	rng := rand.New(rand.NewSource(7))

	termDeg := make(map[int32]int32)
	docDeg := make(map[int32]int32)
	sample := make([]Edge, edges)
	for i := range sample {
		sample[i] = Edge{
			Term: int32(rng.Intn(50000)),
			Doc:  int32(rng.Intn(100000)),
		}
		termDeg[sample[i].Term]++
		docDeg[sample[i].Doc]++
	}

	p, e := NewDegreeHash(parts, termDeg, docDeg)
	require.NoError(t, e)

	counts := make([]int, parts)
	for i := range sample {
		counts[p.GetPartition(&sample[i])]++
	}

	mean := float64(edges) / float64(parts)
	for i, c := range counts {
		assert.InDelta(t, mean, float64(c), 0.15*mean,
			"partition %d holds %d of %d edges", i, c, edges)
	}
}
