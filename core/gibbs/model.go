package gibbs

import (
	"encoding/gob"
	"fmt"
	"io"
	"sort"

	"github.com/godist/starling/core/corpus"
)

// TopicWeights is a sparse vector of per-topic mass for one term.
// During burn-in accumulation the weights are integer counts; the
// final model holds their average over burn-in passes.
type TopicWeights map[int32]float64

// Model is the output artifact of training: expected term-topic
// counts, global topic counts, and the hyperparameters they were
// estimated under.  A model starts empty, accumulates per-pass
// term-topic snapshots during burn-in, and is scaled by 1/burnIn to
// yield averaged expected counts.
type Model struct {
	NumTopics int
	NumTerms  int
	Alpha     float64
	Beta      float64
	AlphaAS   float64

	GlobalTopic []float64
	TermTopic   map[int32]TopicWeights
}

func init() {
	gob.Register(&Model{})
}

func NewModel(numTopics, numTerms int, alpha, beta, alphaAS float64) *Model {
	if numTopics <= 0 {
		panic(fmt.Sprintf("numTopics = %d, must be positive", numTopics))
	}
	if numTerms <= 0 {
		panic(fmt.Sprintf("numTerms = %d, must be positive", numTerms))
	}
	if alpha <= 0 || beta <= 0 {
		panic(fmt.Sprintf("priors alpha=%f beta=%f must be positive",
			alpha, beta))
	}
	return &Model{
		NumTopics:   numTopics,
		NumTerms:    numTerms,
		Alpha:       alpha,
		Beta:        beta,
		AlphaAS:     alphaAS,
		GlobalTopic: make([]float64, numTopics),
		TermTopic:   make(map[int32]TopicWeights),
	}
}

// TermWeights returns the topic weights of a term, allocating an
// empty row on first access.
func (m *Model) TermWeights(term int32) TopicWeights {
	w := m.TermTopic[term]
	if w == nil {
		w = make(TopicWeights)
		m.TermTopic[term] = w
	}
	return w
}

// AccumulateGraph adds the current term-topic counters of one graph
// generation into the model.
func (m *Model) AccumulateGraph(g *corpus.Graph) {
	for id, v := range g.Terms {
		w := m.TermWeights(id)
		v.TopicHist.ForEach(func(topic int, count int64) error {
			w[int32(topic)] += float64(count)
			m.GlobalTopic[topic] += float64(count)
			return nil
		})
	}
}

// Scale multiplies every weight by f; used to turn accumulated
// burn-in snapshots into averages.
func (m *Model) Scale(f float64) {
	for k := range m.GlobalTopic {
		m.GlobalTopic[k] *= f
	}
	for _, w := range m.TermTopic {
		for t := range w {
			w[t] *= f
		}
	}
}

// Phi returns the smoothed topic-term probability
// (n_tk + beta) / (n_k + beta*V).
func (m *Model) Phi(term int32, topic int) float64 {
	return (m.TermTopic[term][int32(topic)] + m.Beta) /
		(m.GlobalTopic[topic] + m.Beta*float64(m.NumTerms))
}

// TermWeight pairs a term id with its mass in one topic.
type TermWeight struct {
	Term   int32
	Weight float64
}

// TopTerms returns the terms of a topic in descending weight order.
func (m *Model) TopTerms(topic int) []TermWeight {
	var ws []TermWeight
	for term, w := range m.TermTopic {
		if mass, ok := w[int32(topic)]; ok && mass > 0 {
			ws = append(ws, TermWeight{term, mass})
		}
	}
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Weight == ws[j].Weight {
			return ws[i].Term < ws[j].Term
		}
		return ws[i].Weight > ws[j].Weight
	})
	return ws
}

// WriteTopics writes the model in the row-per-topic sparse text
// format: each line is the topic id, a tab, then term:count pairs in
// descending count order.
func (m *Model) WriteTopics(w io.Writer) error {
	for k := 0; k < m.NumTopics; k++ {
		if _, e := fmt.Fprintf(w, "%d\t", k); e != nil {
			return e
		}
		for i, tw := range m.TopTerms(k) {
			sep := " "
			if i == 0 {
				sep = ""
			}
			if _, e := fmt.Fprintf(w, "%s%d:%g", sep, tw.Term, tw.Weight); e != nil {
				return e
			}
		}
		if _, e := fmt.Fprintln(w); e != nil {
			return e
		}
	}
	return nil
}

// Clone deep-copies a model.
func (m *Model) Clone() *Model {
	n := NewModel(m.NumTopics, m.NumTerms, m.Alpha, m.Beta, m.AlphaAS)
	copy(n.GlobalTopic, m.GlobalTopic)
	for term, w := range m.TermTopic {
		nw := make(TopicWeights, len(w))
		for t, mass := range w {
			nw[t] = mass
		}
		n.TermTopic[term] = nw
	}
	return n
}
