package gibbs

import (
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/godist/starling/core/corpus"
	"github.com/godist/starling/core/hist"
)

// The un-normalized Gibbs conditional of assigning a token to topic k
// decomposes into three additive buckets:
//
//   d_k = (n_dk + adj) * (n_tk + adj + beta) / (n_k + adj + betaSum)
//   w_k = n_tk * alphaSum * (n_k + alphaAS) / ((n_k + betaSum) * termSum)
//   t_k = beta * alphaSum * (n_k + alphaAS) / ((n_k + betaSum) * termSum)
//
// where n_dk, n_tk and n_k are the document, term and global counts
// of topic k, betaSum = numTerms*beta, alphaSum = alpha*numTopics,
// termSum = numTokens - 1 + alphaAS*numTopics, and adj is -1 exactly
// at the token's current topic (the leave-one-out correction).
//
// The d bucket is rebuilt for every token; the w bucket is rebuilt on
// cache miss or a WRefreshProb roll; the t bucket is shared by all
// tokens and rebuilt on a TRefreshProb roll.  Each bucket is stored
// as a cumulative sum in increasing topic order so that a uniform
// draw over the combined mass is located by binary search.

// docBucket fills buf with the document bucket of one token.  Both
// endpoint counters are read under their vertex locks, held by the
// caller.
func (t *Trainer) docBucket(buf *hist.Cumulative,
	doc, term *corpus.Vertex, cur int32) *hist.Cumulative {

	h := doc.TopicHist
	buf.Reset(h.Len())
	for i := 0; i < h.Len(); i++ {
		k := h.Topics[i]
		ndk := float64(h.Counts[i])
		ntk := float64(term.TopicHist.At(int(k)))
		nk := float64(t.globalAt(k))
		var adj float64
		if k == cur {
			adj = -1
		}
		buf.Append(k, (ndk+adj)*(ntk+adj+t.beta)/(nk+adj+t.betaSum))
	}
	return buf
}

// wordBucket returns the cached word bucket of a term, recomputing it
// on a miss or on a probabilistic refresh roll.  The cached bucket
// may lag the live counters; the drift is bounded by the refresh
// probability and repaired wholesale at the end of each pass.
func (t *Trainer) wordBucket(id int32, term *corpus.Vertex,
	rng *rand.Rand) *hist.Cumulative {

	if c, ok := t.wCache.Get(id); ok && rng.Float64() >= t.cfg.WRefreshProb {
		return c
	}

	h := term.TopicHist
	c := &hist.Cumulative{}
	c.Reset(h.Len())
	for i := 0; i < h.Len(); i++ {
		k := h.Topics[i]
		ntk := float64(h.Counts[i])
		nk := float64(t.globalAt(k))
		c.Append(k, ntk*t.alphaSum*(nk+t.alphaAS)/((nk+t.betaSum)*t.termSum))
	}
	t.wCache.Add(id, c)
	return c
}

// smoothingBucket returns the dense smoothing bucket shared by all
// tokens, recomputing it on a probabilistic refresh roll.  It changes
// slowly: only through global counter drift.
func (t *Trainer) smoothingBucket(rng *rand.Rand) hist.DenseCumulative {
	if c := t.tBucket.Load(); c != nil && rng.Float64() >= t.cfg.TRefreshProb {
		return *c
	}

	numTopics := t.cfg.NumTopics
	c := hist.NewDenseCumulative(numTopics)
	for k := 0; k < numTopics; k++ {
		nk := float64(t.globalAt(int32(k)))
		c.Append(int32(k),
			t.beta*t.alphaSum*(nk+t.alphaAS)/((nk+t.betaSum)*t.termSum))
	}
	t.tBucket.Store(&c)
	return c
}

func (t *Trainer) globalAt(k int32) int64 {
	return atomic.LoadInt64(&t.global[k])
}

// sampleTopic locates a uniform draw u over the combined cumulative
// mass of the three buckets: the smallest topic whose combined
// cumulative value reaches u.  The result is clamped to numTopics-1
// to absorb floating-point drift at the upper boundary.
func sampleTopic(d, w *hist.Cumulative, s hist.DenseCumulative,
	u float64, numTopics int) int32 {

	k := sort.Search(numTopics, func(k int) bool {
		kk := int32(k)
		return d.Lookup(kk)+w.Lookup(kk)+s.Lookup(kk) >= u
	})
	if k >= numTopics {
		k = numTopics - 1
	}
	return int32(k)
}
