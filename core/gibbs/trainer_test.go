package gibbs

import (
	"math"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	file "github.com/wangkuiyi/file"

	"github.com/godist/starling/core/corpus"
	"github.com/godist/starling/core/hist"
)

func TestNewTrainer(t *testing.T) {
	tr, e := NewTrainer(createTestingConfig(), testingNumTerms,
		createTestingCorpus())
	require.NoError(t, e)

	assert.Equal(t, 0, tr.Iteration())
	assert.Equal(t, int64(28), tr.Graph().TotalTokens)
	assert.Len(t, tr.Graph().Terms, 5)
	assert.Len(t, tr.Graph().Docs, 6)
}

func TestNewTrainerValidatesNumTerms(t *testing.T) {
	_, e := NewTrainer(createTestingConfig(), 0, createTestingCorpus())
	assert.Error(t, e)

	// The corpus uses 5 distinct terms; a 3-term vocabulary cannot
	// have produced it.
	_, e = NewTrainer(createTestingConfig(), 3, createTestingCorpus())
	assert.Error(t, e)
}

// newTrainer is also entered directly by in-package callers that never
// ran Config.Validate, so it must apply the cache-size default itself.
func TestNewTrainerDefaultsCacheSize(t *testing.T) {
	cfg := createTestingConfig()
	require.Zero(t, cfg.WCacheSize)

	tr, e := newTrainer(cfg, testingNumTerms, createTestingCorpus(),
		fixedTopics(0))
	require.NoError(t, e)
	require.NotNil(t, tr.wCache)
}

func TestRunRejectsBadIterations(t *testing.T) {
	tr, e := NewTrainer(createTestingConfig(), testingNumTerms,
		createTestingCorpus())
	require.NoError(t, e)
	assert.Error(t, tr.Run(0))
	assert.Error(t, tr.Run(-3))
}

// Resampling moves tokens between topics but never creates or destroys
// them: after any number of passes the counters of every term must
// still sum to its corpus frequency.
func TestTrainerConservesTokens(t *testing.T) {
	docs := createTestingCorpus()
	tr, e := NewTrainer(createTestingConfig(), testingNumTerms, docs)
	require.NoError(t, e)
	require.NoError(t, tr.Run(3))

	assert.Equal(t, 3, tr.Iteration())
	g := tr.Graph()
	for term, freq := range testingTermFreq(docs) {
		assert.Equal(t, freq, hist.Sum(g.Terms[term].TopicHist),
			"term %d", term)
	}

	gc, e := g.GlobalCounter()
	require.NoError(t, e)
	total := int64(0)
	for k := 0; k < testingK; k++ {
		total += gc.At(k)
		assert.Equal(t, gc.At(k), tr.globalAt(int32(k)))
	}
	assert.Equal(t, g.TotalTokens, total)
}

// Moving a token from topic a to b and then from b back to a must
// restore the document, term, and global counters exactly.
func TestMoveTokenRoundTrip(t *testing.T) {
	tr, e := newTrainer(createTestingConfig(), testingNumTerms,
		createTestingCorpus(), fixedTopics(0))
	require.NoError(t, e)

	g := tr.Graph()
	var edge *corpus.Edge
	for pi := range g.Parts {
		if len(g.Parts[pi]) > 0 {
			edge = &g.Parts[pi][0]
			break
		}
	}
	require.NotNil(t, edge)
	doc, term := g.Docs[edge.Doc], g.Terms[edge.Term]

	docBefore := doc.TopicHist.Clone()
	termBefore := term.TopicHist.Clone()
	globalBefore := []int64{tr.globalAt(0), tr.globalAt(1)}

	tr.moveToken(doc, term, 0, 1)
	assert.NotEqual(t, docBefore, doc.TopicHist.Clone())
	assert.Equal(t, globalBefore[0]-1, tr.globalAt(0))
	assert.Equal(t, globalBefore[1]+1, tr.globalAt(1))

	tr.moveToken(doc, term, 1, 0)
	assert.Equal(t, docBefore, doc.TopicHist.Clone())
	assert.Equal(t, termBefore, term.TopicHist.Clone())
	assert.Equal(t, globalBefore[0], tr.globalAt(0))
	assert.Equal(t, globalBefore[1], tr.globalAt(1))
}

func TestTrainerPerplexity(t *testing.T) {
	tr, e := NewTrainer(createTestingConfig(), testingNumTerms,
		createTestingCorpus())
	require.NoError(t, e)

	require.NoError(t, tr.Run(1))
	pp1, e := tr.Perplexity()
	require.NoError(t, e)
	assert.False(t, math.IsNaN(pp1) || math.IsInf(pp1, 0))
	assert.Greater(t, pp1, 1.0)

	require.NoError(t, tr.Run(49))
	pp50, e := tr.Perplexity()
	require.NoError(t, e)
	assert.False(t, math.IsNaN(pp50) || math.IsInf(pp50, 0))

	// On this clearly two-topic corpus the fit improves, or at worst
	// plateaus, as sampling proceeds.
	assert.LessOrEqual(t, pp50, pp1*1.05)
}

func TestSaveModel(t *testing.T) {
	docs := createTestingCorpus()
	tr, e := NewTrainer(createTestingConfig(), testingNumTerms, docs)
	require.NoError(t, e)
	require.NoError(t, tr.Run(10))

	m, e := tr.SaveModel(5)
	require.NoError(t, e)
	assert.Equal(t, testingK, m.NumTopics)
	assert.Equal(t, testingNumTerms, m.NumTerms)
	assert.Equal(t, 15, tr.Iteration())

	// Every burn-in snapshot of a term sums to its corpus frequency,
	// so the average does too.
	for term, freq := range testingTermFreq(docs) {
		sum := 0.0
		for _, mass := range m.TermTopic[term] {
			sum += mass
		}
		assert.InDelta(t, float64(freq), sum, 1e-9, "term %d", term)
	}

	total := 0.0
	for _, mass := range m.GlobalTopic {
		total += mass
	}
	assert.InDelta(t, float64(tr.Graph().TotalTokens), total, 1e-9)

	_, e = tr.SaveModel(0)
	assert.Error(t, e)
}

func TestTrainerCheckpoint(t *testing.T) {
	dir := t.TempDir()
	cfg := createTestingConfig()
	cfg.JobDir = file.LocalPrefix + dir
	cfg.CheckpointInterval = 2

	tr, e := NewTrainer(cfg, testingNumTerms, createTestingCorpus())
	require.NoError(t, e)
	require.NoError(t, tr.Run(2))

	_, e = os.Stat(path.Join(dir, "unittest-checkpoint-00002.gz"))
	assert.NoError(t, e)
}

// A checkpointed run must be resumable: decoding the file yields a
// trainer at the checkpointed iteration with intact counters that can
// keep sampling.
func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := createTestingConfig()
	cfg.JobDir = file.LocalPrefix + dir
	cfg.CheckpointInterval = 2
	docs := createTestingCorpus()

	tr, e := NewTrainer(cfg, testingNumTerms, docs)
	require.NoError(t, e)
	require.NoError(t, tr.Run(2))

	resumed, e := LoadCheckpoint(cfg,
		file.LocalPrefix+path.Join(dir, "unittest-checkpoint-00002.gz"))
	require.NoError(t, e)
	assert.Equal(t, 2, resumed.Iteration())
	assert.Equal(t, tr.Graph().TotalTokens, resumed.Graph().TotalTokens)
	assert.Equal(t, testingNumTerms, resumed.numTerms)
	for term, freq := range testingTermFreq(docs) {
		assert.Equal(t, freq,
			hist.Sum(resumed.Graph().Terms[term].TopicHist), "term %d", term)
	}

	require.NoError(t, resumed.Run(1))
	assert.Equal(t, 3, resumed.Iteration())
}

func TestIncrementalTrainer(t *testing.T) {
	docs := createTestingCorpus()
	cfg := createTestingConfig()
	tr, e := NewTrainer(cfg, testingNumTerms, docs)
	require.NoError(t, e)
	require.NoError(t, tr.Run(20))
	prior, e := tr.SaveModel(5)
	require.NoError(t, e)

	inc, e := NewIncrementalTrainer(createTestingConfig(), prior,
		testingNumTerms, docs)
	require.NoError(t, e)
	require.NoError(t, inc.Run(1))

	g := inc.Graph()
	for term, freq := range testingTermFreq(docs) {
		assert.Equal(t, freq, hist.Sum(g.Terms[term].TopicHist),
			"term %d", term)
	}
}

// Fingerprint-ordered vocabularies spread a corpus' terms over the
// whole id space, so a model's NumTerms must be the vocabulary size,
// not the count of distinct terms seen in training.  A prior must
// accept the very corpus it was trained on.
func TestIncrementalTrainerSparseTermIds(t *testing.T) {
	const vocabSize = 8
	docs := []corpus.Document{
		{ID: 0, Terms: []int32{0, 7, 0, 7}},
		{ID: 1, Terms: []int32{7, 0}},
	}

	cfg := createTestingConfig()
	tr, e := NewTrainer(cfg, vocabSize, docs)
	require.NoError(t, e)
	require.NoError(t, tr.Run(2))
	prior, e := tr.SaveModel(2)
	require.NoError(t, e)
	assert.Equal(t, vocabSize, prior.NumTerms)

	inc, e := NewIncrementalTrainer(createTestingConfig(), prior,
		vocabSize, docs)
	require.NoError(t, e)
	require.NoError(t, inc.Run(1))
}

func TestIncrementalTrainerRejectsTopicMismatch(t *testing.T) {
	prior := NewModel(testingK+1, testingNumTerms,
		testingAlpha, testingBeta, testingAlphaAS)
	_, e := NewIncrementalTrainer(createTestingConfig(), prior,
		testingNumTerms, createTestingCorpus())
	assert.Error(t, e)
}

func TestIncrementalTrainerRejectsVocabMismatch(t *testing.T) {
	prior := NewModel(testingK, testingNumTerms,
		testingAlpha, testingBeta, testingAlphaAS)
	_, e := NewIncrementalTrainer(createTestingConfig(), prior,
		testingNumTerms+1, createTestingCorpus())
	assert.Error(t, e)
}
