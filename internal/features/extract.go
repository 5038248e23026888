package features

import (
	"regexp"
	"strings"
	"unicode"
)

// Extractor finds vocabulary symptoms mentioned in free text, such as a
// patient's complaint, so they can be fed to Encode.
type Extractor struct {
	tokens   []string
	patterns []*regexp.Regexp
}

// NewExtractor compiles one pattern per vocabulary token. Underscores in a
// token match any run of spaces, underscores or hyphens in the text.
func NewExtractor(vocab *Vocabulary) *Extractor {
	e := &Extractor{}
	for _, token := range vocab.tokens {
		words := strings.FieldsFunc(token, func(r rune) bool {
			return r == '_' || unicode.IsSpace(r)
		})
		if len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		expr := `(?i)(?:^|[^\p{L}\p{N}])` + strings.Join(quoted, `[\s_-]+`) + `(?:$|[^\p{L}\p{N}])`
		e.tokens = append(e.tokens, token)
		e.patterns = append(e.patterns, regexp.MustCompile(expr))
	}
	return e
}

// Extract returns the tokens mentioned in text, in vocabulary order and
// without duplicates.
func (e *Extractor) Extract(text string) []string {
	found := make([]string, 0)
	seen := make(map[string]struct{})
	for i, re := range e.patterns {
		if !re.MatchString(text) {
			continue
		}
		if _, ok := seen[e.tokens[i]]; ok {
			continue
		}
		seen[e.tokens[i]] = struct{}{}
		found = append(found, e.tokens[i])
	}
	return found
}
