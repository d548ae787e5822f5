package hist

import (
	"encoding/gob"
	"fmt"
	"math"
	"sort"
)

// Ordered represents a histogram using two parallel arrays, Topics
// and Counts, where Topics is sorted in ascending order.  Vertex
// topic counters are Ordered histograms: the Gibbs conditional
// distribution is accumulated over the non-zero topics of a vertex in
// increasing topic-id order, so that the accumulated masses form a
// cumulative sum that supports binary search.
type Ordered struct {
	Topics []int32
	Counts []int32
}

func init() {
	gob.Register(&Ordered{})
}

func NewOrdered() *Ordered {
	return &Ordered{}
}

// NewOrderedAndReserve reserves capacity for histograms whose maximum
// number of non-zeros is known up front.  A document counter has at
// most min(numTopics, docLength) non-zeros; reserving avoids
// re-allocations while the sampler mutates the counter.
func NewOrderedAndReserve(cap int) *Ordered {
	return &Ordered{
		Topics: make([]int32, 0, cap),
		Counts: make([]int32, 0, cap)}
}

func (o *Ordered) Len() int {
	return len(o.Topics)
}

// search returns the position of topic in o.Topics, or the position
// at which it would be inserted.
func (o *Ordered) search(topic int32) int {
	return sort.Search(len(o.Topics), func(i int) bool {
		return o.Topics[i] >= topic
	})
}

func (o *Ordered) At(topic int) int64 {
	i := o.search(int32(topic))
	if i < len(o.Topics) && o.Topics[i] == int32(topic) {
		return int64(o.Counts[i])
	}
	return 0
}

// Inc increases the count of a topic, inserting a new non-zero at its
// topic-ordered position if necessary.
func (o *Ordered) Inc(topic, count int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if count <= 0 {
		panic(fmt.Sprintf("count (%d) <= 0", count))
	}
	if count > int(math.MaxInt32) {
		panic(fmt.Sprintf("count (%d) larger than MaxInt32", count))
	}

	t := int32(topic)
	c := int32(count)
	i := o.search(t)
	if i < len(o.Topics) && o.Topics[i] == t {
		if o.Counts[i] >= math.MaxInt32-c {
			panic(fmt.Sprintf("o[%d] = %d overflow", i, o.Counts[i]))
		}
		o.Counts[i] += c
		return
	}
	o.Topics = append(o.Topics, 0)
	o.Counts = append(o.Counts, 0)
	copy(o.Topics[i+1:], o.Topics[i:])
	copy(o.Counts[i+1:], o.Counts[i:])
	o.Topics[i] = t
	o.Counts[i] = c
}

// Dec decreases the count of a topic.  A count that reaches zero is
// compacted out so that Topics holds only non-zeros.
func (o *Ordered) Dec(topic, count int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if count <= 0 {
		panic(fmt.Sprintf("count (%d) <= 0", count))
	}

	t := int32(topic)
	c := int32(count)
	i := o.search(t)
	if i >= len(o.Topics) || o.Topics[i] != t {
		panic(fmt.Sprintf("topic %d does not exist", t))
	}
	if o.Counts[i] < c {
		panic(fmt.Sprintf("existing count (%d) < delta count (%d)",
			o.Counts[i], c))
	}
	o.Counts[i] -= c
	if o.Counts[i] == 0 {
		o.Topics = append(o.Topics[:i], o.Topics[i+1:]...)
		o.Counts = append(o.Counts[:i], o.Counts[i+1:]...)
	}
}

// ForEach goes over non-zeros in ascending topic order.
func (o *Ordered) ForEach(p func(topic int, count int64) error) error {
	for i := 0; i < len(o.Topics); i++ {
		if e := p(int(o.Topics[i]), int64(o.Counts[i])); e != nil {
			return e
		}
	}
	return nil
}

func (o *Ordered) Clone() Hist {
	n := NewOrdered()
	n.Topics = make([]int32, len(o.Topics))
	n.Counts = make([]int32, len(o.Counts))
	copy(n.Topics, o.Topics)
	copy(n.Counts, o.Counts)
	return n
}

// Assign clears and recreates o so that it represents s.
func (o *Ordered) Assign(s Hist) *Ordered {
	o.Topics = make([]int32, 0, s.Len())
	o.Counts = make([]int32, 0, s.Len())
	s.ForEach(func(topic int, count int64) error {
		o.Topics = append(o.Topics, int32(topic))
		o.Counts = append(o.Counts, int32(count))
		return nil
	})
	sort.Sort(byTopic{o})
	return o
}

type byTopic struct{ *Ordered }

func (b byTopic) Len() int           { return len(b.Topics) }
func (b byTopic) Less(i, j int) bool { return b.Topics[i] < b.Topics[j] }
func (b byTopic) Swap(i, j int) {
	b.Topics[i], b.Topics[j] = b.Topics[j], b.Topics[i]
	b.Counts[i], b.Counts[j] = b.Counts[j], b.Counts[i]
}

// String prints an Ordered variable in the topic:count format.
func (o *Ordered) String() string {
	out := "[ "
	for i, topic := range o.Topics {
		out += fmt.Sprintf("%d:%d ", topic, o.Counts[i])
	}
	out += "]"
	return out
}
