package hist

import (
	"encoding/gob"
	"fmt"
	"math"
)

// Dense is a plain histogram represented by a count array.  It
// represents the global topic counter, which has a count for every
// one of the K topics.
type Dense []int64

func init() {
	gob.Register(Dense{})
}

func NewDense(dim int) Dense {
	return make(Dense, dim)
}

func (d Dense) At(topic int) int64 {
	return d[topic]
}

func (d Dense) Inc(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	if d[topic] >= math.MaxInt64-int64(count) {
		panic(fmt.Sprintf("d[%d] = %d overflow", topic, d[topic]))
	}
	d[topic] += int64(count)
}

func (d Dense) Dec(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	d[topic] -= int64(count)
}

func (d Dense) Len() int {
	return len(d)
}

func (d Dense) ForEach(p func(topic int, count int64) error) error {
	for i, v := range d {
		if e := p(i, v); e != nil {
			return e
		}
	}
	return nil
}

func (d Dense) Clone() Hist {
	n := NewDense(d.Len())
	copy(n, d)
	return n
}

// Equal reports whether two dense histograms have the same length and
// the same count at every topic.
func (d Dense) Equal(o Dense) bool {
	if len(d) != len(o) {
		return false
	}
	for i := range d {
		if d[i] != o[i] {
			return false
		}
	}
	return true
}
