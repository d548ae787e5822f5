package hist

import "sort"

// Cumulative is a sparse cumulative-sum vector over topics.  Topics
// is sorted ascending and Sums[i] holds the total mass of all entries
// at or before Topics[i]; the last entry is the total mass.  It
// represents a right-continuous step function: the value at a topic
// that is absent equals the value at the last present topic before
// it, and zero before the first entry.
//
// The document and word buckets of the Gibbs conditional are
// Cumulative vectors; together with the dense smoothing bucket they
// let the sampler locate a uniform draw in O(log K).
type Cumulative struct {
	Topics []int32
	Sums   []float64
}

// Reset empties c, keeping its backing arrays when their capacity
// suffices.
func (c *Cumulative) Reset(capacity int) {
	if cap(c.Topics) < capacity {
		c.Topics = make([]int32, 0, capacity)
		c.Sums = make([]float64, 0, capacity)
		return
	}
	c.Topics = c.Topics[:0]
	c.Sums = c.Sums[:0]
}

// Append adds mass at a topic.  Topics must be appended in strictly
// increasing order.
func (c *Cumulative) Append(topic int32, mass float64) {
	c.Topics = append(c.Topics, topic)
	if n := len(c.Sums); n > 0 {
		mass += c.Sums[n-1]
	}
	c.Sums = append(c.Sums, mass)
}

func (c *Cumulative) Len() int {
	return len(c.Topics)
}

// Total returns the total mass, i.e., the cumulative value at and
// after the last present topic.
func (c *Cumulative) Total() float64 {
	if len(c.Sums) == 0 {
		return 0
	}
	return c.Sums[len(c.Sums)-1]
}

// Lookup returns the cumulative mass at topic.
func (c *Cumulative) Lookup(topic int32) float64 {
	// The last present entry at or before topic.
	i := sort.Search(len(c.Topics), func(i int) bool {
		return c.Topics[i] > topic
	})
	if i == 0 {
		return 0
	}
	return c.Sums[i-1]
}

// DenseCumulative is a cumulative-sum vector with an entry for every
// topic in [0, K).  The smoothing-only bucket has mass at every
// topic, so it is kept dense.
type DenseCumulative []float64

func NewDenseCumulative(numTopics int) DenseCumulative {
	return make(DenseCumulative, numTopics)
}

// Append sets the cumulative value at topic.  Topics must be filled
// in increasing order starting at zero.
func (d DenseCumulative) Append(topic int32, mass float64) {
	if topic > 0 {
		mass += d[topic-1]
	}
	d[topic] = mass
}

func (d DenseCumulative) Total() float64 {
	if len(d) == 0 {
		return 0
	}
	return d[len(d)-1]
}

func (d DenseCumulative) Lookup(topic int32) float64 {
	return d[topic]
}
