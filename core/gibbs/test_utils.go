package gibbs

import (
	"math/rand"
	"strings"

	"github.com/godist/starling/core/corpus"
)

const (
	testingV = 4
	testingK = 2

	// The vocabulary size behind createTestingCorpus, whose documents
	// use term ids 0 through 4.
	testingNumTerms = 5

	testingAlpha   = 0.1
	testingBeta    = 0.01
	testingAlphaAS = 0.1
)

func createTestingVocab() (*Vocab, error) {
	r := strings.NewReader("apple 100\norange\twhatever\n\ncat\ntiger")
	v := NewVocab()
	e := v.Load(r)
	return v, e
}

func createTestingConfig() *Config {
	return &Config{
		JobName:          "unittest",
		NumTopics:        testingK,
		Alpha:            testingAlpha,
		Beta:             testingBeta,
		AlphaAS:          testingAlphaAS,
		Iterations:       50,
		BurnInIterations: 5,
		Partitions:       2,
		Seed:             1,
	}
}

// createTestingCorpus builds a small two-topic corpus over five terms:
// documents 0 and 1 draw from terms {0, 1}, documents 2 and 3 from
// terms {2, 3}, and documents 4 and 5 mix in term 4.
func createTestingCorpus() []corpus.Document {
	return []corpus.Document{
		{ID: 0, Terms: []int32{0, 1, 0, 1, 0, 1}},
		{ID: 1, Terms: []int32{0, 1, 1, 0}},
		{ID: 2, Terms: []int32{2, 3, 2, 3, 2, 3}},
		{ID: 3, Terms: []int32{3, 2, 2, 3}},
		{ID: 4, Terms: []int32{4, 0, 1, 4}},
		{ID: 5, Terms: []int32{4, 2, 3, 4}},
	}
}

func testingTermFreq(docs []corpus.Document) map[int32]int64 {
	freq := make(map[int32]int64)
	for _, d := range docs {
		for _, term := range d.Terms {
			freq[term]++
		}
	}
	return freq
}

// fixedTopics assigns every token to one topic, making the initial
// counters fully predictable.
func fixedTopics(k int32) corpus.TopicInitializer {
	return func(d corpus.Document, rng *rand.Rand) (map[int32][]int32, error) {
		out := make(map[int32][]int32)
		for _, term := range d.Terms {
			out[term] = append(out[term], k)
		}
		return out, nil
	}
}
