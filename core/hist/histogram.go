package hist

// Hist is a counter over topics.  Starling keeps one Hist per graph
// vertex: for a term vertex it counts the occurrences of that term
// currently assigned to each topic, for a document vertex the topic
// assignments of the document's tokens.
type Hist interface {
	At(topic int) int64
	Inc(topic, count int)
	Dec(topic, count int)
	Len() int

	// ForEach access elements in the histogram one-by-one. For each
	// element <topic, count>, it calls p(topic, count).  If p returns
	// nil, it goes on to rest elements; otherwise, it stops the
	// traversal and returns the error from p.
	ForEach(p func(topic int, count int64) error) error

	Clone() Hist
}

// Sum returns the total count in a histogram.  For a vertex counter
// this must equal the number of token occurrences incident on the
// vertex.
func Sum(h Hist) int64 {
	var total int64
	h.ForEach(func(_ int, count int64) error {
		total += count
		return nil
	})
	return total
}
