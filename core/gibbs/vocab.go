package gibbs

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"sort"
	"strings"
)

// Vocab maintains the bi-directional mapping between tokens and term
// ids.  Ids follow the ascending order of token fingerprints (ties
// broken lexically), which shuffles highly-frequent and long-tail
// tokens over the id space instead of clustering frequent tokens at
// low ids.
type Vocab struct {
	Tokens []string
	ids    map[string]int32
}

func NewVocab() *Vocab {
	return &Vocab{}
}

// Load reads one token per line, taking only the first column of each
// line, then assigns ids by fingerprint order.
func (v *Vocab) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if fs := strings.Fields(scanner.Text()); len(fs) > 0 {
			v.Tokens = append(v.Tokens, fs[0])
		}
	}
	if e := scanner.Err(); e != nil {
		return e
	}

	fps := make([]uint64, len(v.Tokens))
	for i, tok := range v.Tokens {
		fps[i] = fingerprint(tok)
	}
	sort.Sort(&byFingerprint{v.Tokens, fps})

	v.ids = make(map[string]int32, len(v.Tokens))
	for i, tok := range v.Tokens {
		v.ids[tok] = int32(i)
	}
	return nil
}

// fingerprint is the FNV-1a hash of a token.
func fingerprint(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

type byFingerprint struct {
	tokens []string
	fps    []uint64
}

func (b *byFingerprint) Len() int { return len(b.tokens) }
func (b *byFingerprint) Less(i, j int) bool {
	if b.fps[i] == b.fps[j] {
		return b.tokens[i] < b.tokens[j]
	}
	return b.fps[i] < b.fps[j]
}
func (b *byFingerprint) Swap(i, j int) {
	b.tokens[i], b.tokens[j] = b.tokens[j], b.tokens[i]
	b.fps[i], b.fps[j] = b.fps[j], b.fps[i]
}

func (v *Vocab) Len() int {
	return len(v.Tokens)
}

func (v *Vocab) Token(id int32) string {
	if id < 0 || int(id) >= len(v.Tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", id, len(v.Tokens)))
	}
	return v.Tokens[id]
}

// ID returns the term id of token, or -1 if the token is not in the
// vocabulary.
func (v *Vocab) ID(token string) int32 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return -1
}
