package gibbs

import (
	"math"
	"sync"

	"github.com/wangkuiyi/parallel"

	"github.com/godist/starling/core/hist"
)

// Perplexity computes the corpus perplexity exp(-logL/numTokens)
// under the current counters.  The likelihood of one token of term t
// in document m is
//
//   L(m,t) = sum_k theta_mk * phi_kt
//          = sum_k [(n_mk + a)(n_tk + b)] / [(L_m + aK)(n_k + bV)]
//
// which factors into a global part over all topics plus sparse parts
// over the document's and the term's non-zero topics, so each token
// costs O(#non-zeros) instead of O(K).  Purely diagnostic; not part
// of the fit loop.
func (t *Trainer) Perplexity() (float64, error) {
	g := t.graph
	gc, e := g.GlobalCounter()
	if e != nil {
		return 0, e
	}

	alpha, beta := t.cfg.Alpha, t.cfg.Beta
	numTopics := t.cfg.NumTopics

	// inv[k] = 1 / (n_k + beta*V); s0 = sum_k alpha*beta*inv[k].
	inv := make([]float64, numTopics)
	s0 := 0.0
	for k := 0; k < numTopics; k++ {
		inv[k] = 1 / (float64(gc.At(k)) + t.betaSum)
		s0 += alpha * beta * inv[k]
	}

	docLen := make(map[int32]float64, len(g.Docs))
	for id, v := range g.Docs {
		docLen[id] = float64(hist.Sum(v.TopicHist))
	}

	var mu sync.Mutex
	logl := 0.0
	if e := parallel.For(0, len(g.Parts), 1, func(p int) error {
		local := 0.0
		for i := range g.Parts[p] {
			e := &g.Parts[p][i]
			dh := g.Docs[e.Doc].TopicHist
			th := g.Terms[e.Term].TopicHist

			s1, s2, s3 := 0.0, 0.0, 0.0
			dh.ForEach(func(k int, ndk int64) error {
				s1 += beta * float64(ndk) * inv[k]
				if ntk := th.At(k); ntk > 0 {
					s3 += float64(ndk) * float64(ntk) * inv[k]
				}
				return nil
			})
			th.ForEach(func(k int, ntk int64) error {
				s2 += alpha * float64(ntk) * inv[k]
				return nil
			})

			prob := (s0 + s1 + s2 + s3) / (docLen[e.Doc] + t.alphaSum)
			local += float64(len(e.Topics)) * math.Log(prob)
		}
		mu.Lock()
		defer mu.Unlock()
		logl += local
		return nil
	}); e != nil {
		return 0, e
	}

	return math.Exp(-logl / float64(g.TotalTokens)), nil
}
