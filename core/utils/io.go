package utils

import (
	"bufio"
	"encoding/gob"
	"io"
	"log"
	"os"
	"path"
	"strings"

	cmprs "github.com/wangkuiyi/compress_io"

	"github.com/godist/starling/core/corpus"
	"github.com/godist/starling/core/gibbs"
)

func LoadVocabOrDie(filename string) *gibbs.Vocab {
	log.Printf("Loading vocab %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open vocab file %s: %v", filename, e)
	}
	defer r.Close()

	vocab := gibbs.NewVocab()
	if e := vocab.Load(r); e != nil {
		log.Fatalf("Failed loading vocab file %s: %v", filename, e)
	}

	log.Println("Done loading vocabulary.")
	return vocab
}

// LoadCorpusOrDie reads one document per line, maps its tokens to term
// ids, and keeps documents whose in-vocabulary length lies in [minLen,
// maxLen].  Non-positive bounds disable the corresponding filter.
// Tokens missing from the vocabulary are dropped.
func LoadCorpusOrDie(filename string, vocab *gibbs.Vocab,
	minLen, maxLen int) []corpus.Document {

	log.Printf("Loading corpus %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open corpus file %s: %v", filename, e)
	}
	defer r.Close()

	docs := make([]corpus.Document, 0)
	scanned := 0
	s := bufio.NewReader(r)
	for {
		line, e := s.ReadString('\n')
		if len(strings.TrimSpace(line)) > 0 {
			scanned++
			tokens := strings.Fields(line)
			terms := make([]int32, 0, len(tokens))
			for _, tok := range tokens {
				if id := vocab.ID(tok); id >= 0 {
					terms = append(terms, id)
				}
			}
			if (minLen <= 0 || len(terms) >= minLen) &&
				(maxLen <= 0 || len(terms) <= maxLen) {
				docs = append(docs,
					corpus.Document{ID: int32(len(docs)), Terms: terms})
			}
		}
		if e != nil {
			if e != io.EOF {
				log.Fatal("Error reading", filename, ":", e)
			}
			break
		}
	}

	if len(docs) == 0 {
		log.Fatal("corpus contains no valid document!")
	}
	log.Printf("Done loading corpus: %d out of %d.", len(docs), scanned)
	return docs
}

func LoadModelOrDie(filename string) *gibbs.Model {
	log.Printf("Loading model %s ...", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open model file %s: %v", filename, e)
	}
	defer r.Close()

	m := new(gibbs.Model)
	if e := gob.NewDecoder(r).Decode(m); e != nil {
		log.Fatalf("Cannot decode model: %v", e)
	}

	log.Printf("Done. %d topics %d terms.", m.NumTopics, m.NumTerms)
	return m
}

func SaveModel(model *gibbs.Model, filename string) {
	if len(filename) > 0 {
		f, e := os.Create(filename)
		w := cmprs.NewWriter(f, e, path.Ext(filename))
		if w == nil {
			log.Printf("Cannot create file %s: %v", filename, e)
		} else {
			defer func() {
				w.Close()
				log.Printf("Saved model to %s.", filename)
			}()
			if e := gob.NewEncoder(w).Encode(model); e != nil {
				log.Printf("Failed encoding model: %v", e)
			}
		}
	}
}

// Trans maps tokens to their display form, e.g., ids to names or
// words to another language.
type Trans map[string]string

func TranslatedVocab(v *gibbs.Vocab, tr Trans) *gibbs.Vocab {
	log.Printf("Translating vocabulary ... ")
	for i, s := range v.Tokens {
		if t, exist := tr[s]; exist {
			v.Tokens[i] = t
		} else {
			log.Printf("Cannot translate %s", s)
		}
	}
	log.Printf("Done with translating vocabulary.")
	return v
}

func LoadTranslationOrDie(filename string) Trans {
	log.Printf("Loading translation %s ...", filename)
	trans := make(map[string]string)

	f, e := os.Open(filename)
	if r := cmprs.NewReader(f, e, path.Ext(filename)); r == nil {
		log.Fatalf("Cannot load from %s", filename)
	} else {
		defer r.Close()
		s := bufio.NewScanner(r)
		for s.Scan() {
			fs := strings.Fields(s.Text())
			if len(fs) < 2 {
				log.Fatalf("%v has less than 2 fields", fs)
			}
			if _, exist := trans[fs[0]]; exist {
				log.Fatalf("Found duplicated token (%s) in %s", fs[0], fs)
			}
			trans[fs[0]] = strings.Join(fs[1:], " ")
		}
		if e := s.Err(); e != nil {
			log.Fatalf("Reading %s error: %v", filename, e)
		}
	}

	log.Printf("Done loading translation, %d entries.", len(trans))
	return trans
}
