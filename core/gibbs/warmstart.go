package gibbs

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/godist/starling/core/corpus"
	"github.com/godist/starling/core/hist"
)

// WarmStartTopics returns a topic initializer that seeds each
// document with a short local Gibbs burn-in against the term-topic
// distribution of a prior model, so that incremental training starts
// near the prior's mode instead of from uniform noise.  The prior is
// read-only; only the document's own topic counter evolves during the
// sweeps.
func WarmStartTopics(prior *Model, sweeps int) corpus.TopicInitializer {
	return func(d corpus.Document, rng *rand.Rand) (map[int32][]int32, error) {
		numTopics := prior.NumTopics
		for _, term := range d.Terms {
			if term < 0 || int(term) >= prior.NumTerms {
				return nil, fmt.Errorf(
					"term %d outside the prior model vocabulary [0, %d)",
					term, prior.NumTerms)
			}
		}

		topics := make([]int32, len(d.Terms))
		docHist := hist.NewOrderedAndReserve(min(numTopics, len(d.Terms)))
		for i := range d.Terms {
			k := rng.Intn(numTopics)
			topics[i] = int32(k)
			docHist.Inc(k, 1)
		}

		cum := make([]float64, numTopics)
		for s := 0; s < sweeps; s++ {
			for i, term := range d.Terms {
				docHist.Dec(int(topics[i]), 1)

				total := 0.0
				for k := 0; k < numTopics; k++ {
					total += (float64(docHist.At(k)) + prior.Alpha) *
						prior.Phi(term, k)
					cum[k] = total
				}
				u := rng.Float64() * total
				k := sort.Search(numTopics, func(k int) bool {
					return cum[k] >= u
				})
				if k >= numTopics {
					k = numTopics - 1
				}

				topics[i] = int32(k)
				docHist.Inc(k, 1)
			}
		}

		out := make(map[int32][]int32)
		for i, term := range d.Terms {
			out[term] = append(out[term], topics[i])
		}
		return out, nil
	}
}
