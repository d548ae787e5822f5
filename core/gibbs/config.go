package gibbs

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	file "github.com/wangkuiyi/file"
)

const (
	// DefaultCheckpointInterval is the number of sampling passes
	// between graph checkpoints.
	DefaultCheckpointInterval = 10

	// DefaultWRefreshProb and DefaultTRefreshProb bound the staleness
	// of the cached word and smoothing buckets: a cache hit is
	// discarded and recomputed with this probability, since the
	// counters the buckets were derived from drift during a pass.
	// The refresh is an approximation knob, not a correctness
	// requirement.
	DefaultWRefreshProb = 1e-4
	DefaultTRefreshProb = 1e-7

	// DefaultWCacheSize is the capacity of the per-term word-bucket
	// cache, in entries.
	DefaultWCacheSize = 1 << 16

	// DefaultWarmStartSweeps is the number of local Gibbs sweeps used
	// to initialize a document against a prior model.
	DefaultWarmStartSweeps = 15
)

// Config carries the configuration surface of a training run.
type Config struct {
	// JobName identifies the run in log and checkpoint file names.
	JobName string

	// JobDir receives checkpoints and the trained model.  Empty
	// disables checkpointing.
	JobDir string

	// CorpusFile and VocabFile define the input of a training job.
	CorpusFile string
	VocabFile  string

	// Priors.
	NumTopics int
	Alpha     float64
	Beta      float64
	AlphaAS   float64

	// Iteration schedule.
	Iterations         int
	BurnInIterations   int
	CheckpointInterval int

	// Partitions is the number of edge partitions sampled in
	// parallel.
	Partitions int

	// Perplexity is logged after every EvalLag iterations; 0 disables
	// evaluation.
	EvalLag int

	// MergeThreshold is the column-similarity threshold above which
	// two topics are collapsed; 0 disables merging.
	MergeThreshold float64

	// Word-bucket cache tuning.
	WCacheSize   int
	WRefreshProb float64
	TRefreshProb float64

	// Seed of the sampling RNGs.
	Seed int64
}

func (c *Config) Validate() error {
	msg := ""
	if c.NumTopics <= 0 {
		msg += fmt.Sprintf("NumTopics (%d) must be positive. ", c.NumTopics)
	}
	if c.Iterations <= 0 {
		msg += fmt.Sprintf("Iterations (%d) must be positive. ", c.Iterations)
	}
	if c.BurnInIterations <= 0 {
		msg += fmt.Sprintf("BurnInIterations (%d) must be positive. ",
			c.BurnInIterations)
	}
	if c.Partitions <= 0 {
		msg += fmt.Sprintf("Partitions (%d) must be positive. ", c.Partitions)
	}
	if c.Alpha <= 0 || c.Beta <= 0 {
		msg += fmt.Sprintf("Priors Alpha (%f) and Beta (%f) must be positive. ",
			c.Alpha, c.Beta)
	}
	if c.AlphaAS < 0 {
		msg += fmt.Sprintf("AlphaAS (%f) must not be negative. ", c.AlphaAS)
	}
	if c.MergeThreshold < 0 || c.MergeThreshold >= 1 {
		msg += fmt.Sprintf("MergeThreshold (%f) must be in [0, 1). ",
			c.MergeThreshold)
	}
	if c.WRefreshProb < 0 || c.WRefreshProb > 1 ||
		c.TRefreshProb < 0 || c.TRefreshProb > 1 {
		msg += "Cache refresh probabilities must be in [0, 1]. "
	}
	if len(msg) > 0 {
		return errors.New(strings.TrimSpace(msg))
	}

	if c.CheckpointInterval <= 0 {
		c.CheckpointInterval = DefaultCheckpointInterval
	}
	if c.WCacheSize <= 0 {
		c.WCacheSize = DefaultWCacheSize
	}
	return nil
}

// Encode returns the JSON-encoded Config, which can be used as the
// value of a command line flag.
func (c *Config) Encode() (string, error) {
	var buf bytes.Buffer
	if e := json.NewEncoder(&buf).Encode(c); e != nil {
		return "", fmt.Errorf("JSON encoding failed: %v", e)
	}
	return buf.String(), nil
}

// String is required by interface flag.Value.
func (c *Config) String() string {
	if b, e := json.MarshalIndent(c, " ", "  "); e == nil {
		return string(b)
	}
	return ""
}

// Set is required by interface flag.Value.  It decodes a JSON encoded
// Config variable.
func (c *Config) Set(value string) error {
	if e := json.NewDecoder(strings.NewReader(value)).Decode(c); e != nil {
		return fmt.Errorf("Error decoding JSON: %v", e)
	}
	return nil
}

// RegisterAsFlag registers a flag with name "config" accepting a JSON
// encoded Config value.  It must be called before flag.Parse().
func (c *Config) RegisterAsFlag() {
	flag.Var(c, "config", "JSON encoded configuration")
}

// LoadConfig reads and validates a JSON config file, which may live
// on any filesystem supported by wangkuiyi/file.
func LoadConfig(filename string) (*Config, error) {
	f, e := file.Open(filename)
	if e != nil {
		return nil, fmt.Errorf("Cannot open config file %s: %v", filename, e)
	}
	defer f.Close()

	cfg := new(Config)
	if e = json.NewDecoder(f).Decode(cfg); e != nil {
		return nil, fmt.Errorf("Parse JSON config file: %v", e)
	}
	if e := cfg.Validate(); e != nil {
		return nil, fmt.Errorf("Invalid configuration: %v", e)
	}
	return cfg, nil
}
