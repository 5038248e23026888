package features

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrEmptyVocabulary is returned when a vocabulary artifact holds no tokens.
var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// Vocabulary is the ordered, immutable list of canonical symptom tokens.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// NewVocabulary builds a vocabulary from tokens in their stored order.
// When a token repeats, its first position owns the index.
func NewVocabulary(tokens []string) *Vocabulary {
	v := &Vocabulary{
		tokens: make([]string, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}
	copy(v.tokens, tokens)
	for i, t := range v.tokens {
		if _, ok := v.index[t]; !ok {
			v.index[t] = i
		}
	}
	return v
}

// ParseVocabulary decodes a vocabulary artifact. name selects the format:
// names ending in ".txt" hold one token per line, anything else is a JSON
// array of strings. Compression suffixes must already be stripped.
func ParseVocabulary(name string, data []byte) (*Vocabulary, error) {
	var tokens []string
	if strings.EqualFold(path.Ext(name), ".txt") {
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			tokens = append(tokens, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read vocabulary lines: %w", err)
		}
	} else if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode vocabulary json: %w", err)
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return NewVocabulary(tokens), nil
}

// Len is the feature vector dimensionality.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns a copy of the tokens in vector order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Sample returns at most n tokens from the start of the vocabulary.
func (v *Vocabulary) Sample(n int) []string {
	if n > len(v.tokens) {
		n = len(v.tokens)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, v.tokens[:n])
	return out
}

// Index reports the vector position of a canonical token.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}
