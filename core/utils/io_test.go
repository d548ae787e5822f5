package utils

import (
	"log"
	"os"
	"path"
	"reflect"
	"strings"
	"testing"

	cmprs "github.com/wangkuiyi/compress_io"

	"github.com/godist/starling/core/gibbs"
)

func createTestingVocab(t *testing.T) *gibbs.Vocab {
	v := gibbs.NewVocab()
	if e := v.Load(strings.NewReader("apple\norange\ncat\ntiger")); e != nil {
		t.Fatalf("Load vocab: %v", e)
	}
	return v
}

func TestLoadVocabOrDie(t *testing.T) {
	dir := t.TempDir()
	v := createTestingVocab(t)

	gzFile := createTempVocab(dir, ".gz", strings.Join(v.Tokens, "\n"))
	if len(gzFile) == 0 {
		t.Fatalf("createTempVocab failed")
	}

	v2 := LoadVocabOrDie(gzFile)
	if !reflect.DeepEqual(v, v2) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", v, v2)
	}

	plainFile := createTempVocab(dir, "", strings.Join(v.Tokens, "\n"))
	if len(plainFile) == 0 {
		t.Fatalf("createTempVocab failed")
	}

	v2 = LoadVocabOrDie(plainFile)
	if !reflect.DeepEqual(v, v2) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", v, v2)
	}
}

func TestLoadCorpusOrDie(t *testing.T) {
	dir := t.TempDir()
	v := createTestingVocab(t)

	content := "apple unknown orange\ncat\ncat tiger apple orange\n"
	plainFile := createTempCorpus(dir, "", content)
	if len(plainFile) == 0 {
		t.Fatalf("createTempCorpus failed")
	}

	// The one-token document falls below minLen.
	docs := LoadCorpusOrDie(plainFile, v, 2, 50)
	if len(docs) != 2 {
		t.Fatalf("Expecting 2 documents, got %d", len(docs))
	}
	if docs[0].ID != 0 || docs[1].ID != 1 {
		t.Errorf("Expecting sequential ids, got %d and %d",
			docs[0].ID, docs[1].ID)
	}
	truth := []int32{v.ID("apple"), v.ID("orange")}
	if !reflect.DeepEqual(docs[0].Terms, truth) {
		t.Errorf("Expecting %v, got %v", truth, docs[0].Terms)
	}
	if len(docs[1].Terms) != 4 {
		t.Errorf("Expecting 4 terms, got %v", docs[1].Terms)
	}

	gzFile := createTempCorpus(dir, ".gz", content)
	if len(gzFile) == 0 {
		t.Fatalf("createTempCorpus failed")
	}
	docs = LoadCorpusOrDie(gzFile, v, 0, 0)
	if len(docs) != 3 {
		t.Fatalf("Expecting 3 documents, got %d", len(docs))
	}
}

func TestLoadTranslationOrDie(t *testing.T) {
	dir := t.TempDir()
	v := createTestingVocab(t)

	trans := make([]string, len(v.Tokens))
	truth := make([]string, len(v.Tokens))
	for i, tok := range v.Tokens {
		trans[i] = tok + " " + "The " + tok
		truth[i] = "The " + tok
	}
	transFile := createTempFile(dir, "trans", ".gz", strings.Join(trans, "\n"))
	if len(transFile) == 0 {
		t.Fatalf("createTempFile failed")
	}

	tr := LoadTranslationOrDie(transFile)
	v1 := TranslatedVocab(v, tr)
	if !reflect.DeepEqual(v1.Tokens, truth) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", truth, v1.Tokens)
	}
}

func TestSaveAndLoadModelOrDie(t *testing.T) {
	dir := t.TempDir()

	m := gibbs.NewModel(2, 4, 0.1, 0.01, 0.1)
	m.TermWeights(1)[0] = 3
	m.TermWeights(2)[1] = 2
	m.GlobalTopic[0] = 3
	m.GlobalTopic[1] = 2

	gzFile := path.Join(dir, "model.gz")
	SaveModel(m, gzFile)
	m1 := LoadModelOrDie(gzFile)
	if !reflect.DeepEqual(*m, *m1) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", *m, *m1)
	}

	plainFile := path.Join(dir, "model")
	SaveModel(m, plainFile)
	m1 = LoadModelOrDie(plainFile)
	if !reflect.DeepEqual(*m, *m1) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", *m, *m1)
	}
}

func createTempVocab(dir, ext, content string) string {
	return createTempFile(dir, "vocab", ext, content)
}

func createTempCorpus(dir, ext, content string) string {
	return createTempFile(dir, "corpus", ext, content)
}

func createTempFile(dir, name, ext, content string) string {
	filename := path.Join(dir, name+ext)
	f, e := os.Create(filename)
	w := cmprs.NewWriter(f, e, path.Ext(filename))
	if w == nil {
		log.Printf("NewCompressWriter failed")
		return ""
	}
	defer w.Close()

	if _, e := w.Write([]byte(content)); e != nil {
		log.Printf("Failed writing to temp file %s: %v", filename, e)
	}

	return filename
}
