// train is a command line trainer.  It learns a topic model from a
// text corpus with collapsed Gibbs sampling over a partitioned
// document-term graph, optionally warm-starting from a previously
// trained model.
// Usage:
/*
  $GOPATH/bin/train \
    -vocab=./testdata/vocab -corpus=./testdata/corpus -topics=2 \
    -model=/tmp/model.gz
*/

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/godist/starling/core/gibbs"
	"github.com/godist/starling/core/utils"
)

func main() {
	flagAddr := flag.String("addr", ":6060", "HTTP status page address")
	flagVocab := flag.String("vocab", "./testdata/vocab", "Vocabulary file")
	flagCorpus := flag.String("corpus", "./testdata/corpus", "Corpus file")
	flagMinDocLen := flag.Int("minlen", 1, "minimum document length")
	flagMaxDocLen := flag.Int("maxlen", -1, "maximum document length")
	flagTopics := flag.Int("topics", 10, "Number of topics to be learned")
	flagGibbsIter := flag.Int("gibbs_iter", 100, "Gibbs sampling iterations")
	flagBurnIn := flag.Int("burnin_iter", 5,
		"Iterations averaged into the saved model")
	flagAlpha := flag.Float64("alpha", 0.1, "Topic prior")
	flagBeta := flag.Float64("beta", 0.01, "Word prior")
	flagAlphaAS := flag.Float64("alpha_as", 0.1,
		"Asymmetric pseudo-count of the word and smoothing buckets")
	flagPartitions := flag.Int("partitions", runtime.NumCPU(),
		"Number of graph partitions sampled in parallel")
	flagJob := flag.String("job", "starling", "Job name")
	flagJobDir := flag.String("job_dir", "",
		"Checkpoint directory; empty disables checkpointing")
	flagCheckpoint := flag.Int("checkpoint_interval",
		gibbs.DefaultCheckpointInterval, "Iterations between checkpoints")
	flagEvalLag := flag.Int("eval_lag", 1, "Evaluation lag")
	flagMerge := flag.Float64("merge_threshold", 0,
		"Collapse topics above this column similarity; 0 disables merging")
	flagPrior := flag.String("prior_model", "",
		"Warm-start from this previously trained model")
	flagResume := flag.String("resume", "",
		"Resume from this checkpoint file instead of a fresh corpus")
	flagModel := flag.String("model", "", "The model output")
	flagSeed := flag.Int64("seed", 1, "Seed of the sampling RNGs")
	flagGoMaxProcs := flag.Int("GOMAXPROCS", -1, "GOMAXPROCS")
	flag.Parse()

	is := utils.EnableExpvar(*flagAddr)
	log.Printf("Initialization start at %s", is.Start().StartTime)

	if *flagGoMaxProcs < 0 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	} else {
		runtime.GOMAXPROCS(*flagGoMaxProcs)
	}
	log.Println("Running with MAXPROCS ", runtime.GOMAXPROCS(-1))

	cfg := &gibbs.Config{
		JobName:            *flagJob,
		JobDir:             *flagJobDir,
		CorpusFile:         *flagCorpus,
		VocabFile:          *flagVocab,
		NumTopics:          *flagTopics,
		Alpha:              *flagAlpha,
		Beta:               *flagBeta,
		AlphaAS:            *flagAlphaAS,
		Iterations:         *flagGibbsIter,
		BurnInIterations:   *flagBurnIn,
		CheckpointInterval: *flagCheckpoint,
		Partitions:         *flagPartitions,
		EvalLag:            *flagEvalLag,
		MergeThreshold:     *flagMerge,
		Seed:               *flagSeed,
	}
	if e := cfg.Validate(); e != nil {
		log.Fatalf("Invalid configuration: %v", e)
	}

	var tr *gibbs.Trainer
	var e error
	if len(*flagResume) > 0 {
		tr, e = gibbs.LoadCheckpoint(cfg, *flagResume)
	} else {
		vocab := utils.LoadVocabOrDie(*flagVocab)
		docs := utils.LoadCorpusOrDie(*flagCorpus, vocab,
			*flagMinDocLen, *flagMaxDocLen)
		if len(*flagPrior) > 0 {
			tr, e = gibbs.NewIncrementalTrainer(cfg,
				utils.LoadModelOrDie(*flagPrior), vocab.Len(), docs)
		} else {
			tr, e = gibbs.NewTrainer(cfg, vocab.Len(), docs)
		}
	}
	if e != nil {
		log.Fatalf("Cannot build trainer: %v", e)
	}

	log.Printf("Initialization done in %s", is.End(0.0).Duration)

	sigs := make(chan os.Signal, 1)
	exit := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for sig := range sigs {
			log.Printf("Caught signal, will save the model and exit ...")
			exit <- sig
		}
	}()

GibbsIterations:
	for iter := tr.Iteration(); iter < cfg.Iterations; iter++ {
		select {
		case <-exit:
			log.Printf("Early terminated by signal.")
			break GibbsIterations
		default:
		}

		log.Printf("Iteration %04d start at %s", iter, is.Start().StartTime)

		if e := tr.Run(1); e != nil {
			log.Fatalf("Iteration %04d failed: %v", iter, e)
		}

		if cfg.EvalLag > 0 && iter%cfg.EvalLag == 0 {
			pp, e := tr.Perplexity()
			if e != nil {
				log.Fatalf("Evaluation at iteration %04d failed: %v", iter, e)
			}
			log.Printf("Iteration %04d perplexity %f", iter, pp)
			is.End(pp)
		} else {
			is.End(0.0)
		}
	}

	if cfg.MergeThreshold > 0 {
		if _, e := tr.MergeDuplicateTopics(cfg.MergeThreshold); e != nil {
			log.Fatalf("Merging duplicate topics failed: %v", e)
		}
	}

	model, e := tr.SaveModel(cfg.BurnInIterations)
	if e != nil {
		log.Fatalf("Cannot estimate the model: %v", e)
	}
	utils.SaveModel(model, *flagModel)
}
