package corpus

import "math/rand"

// Document is one input document: a raw non-negative document id and
// the token sequence, already mapped to term ids.
type Document struct {
	ID    int32
	Terms []int32
}

func (d Document) Len() int {
	return len(d.Terms)
}

// termFreq counts occurrences per distinct term.
func (d Document) termFreq() map[int32]int32 {
	f := make(map[int32]int32)
	for _, t := range d.Terms {
		f[t]++
	}
	return f
}

// TopicInitializer assigns initial topics to every token of one
// document.  It returns, for each distinct term of the document, the
// topic array of that term's edge, with one entry per occurrence.
// Graph construction uses UniformTopics for cold starts; incremental
// training passes an initializer seeded from a prior model.
type TopicInitializer func(d Document, rng *rand.Rand) (map[int32][]int32, error)

// UniformTopics initializes every token to a topic drawn uniformly
// from [0, numTopics).
func UniformTopics(numTopics int) TopicInitializer {
	return func(d Document, rng *rand.Rand) (map[int32][]int32, error) {
		topics := make(map[int32][]int32)
		for _, t := range d.Terms {
			topics[t] = append(topics[t], int32(rng.Intn(numTopics)))
		}
		return topics, nil
	}
}
