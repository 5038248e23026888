package features

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Encoding is the result of mapping raw symptoms onto a vocabulary.
type Encoding struct {
	Vector *Vector
	// Matched holds normalized tokens found in the vocabulary, in input order.
	Matched []string
	// Unmatched holds the original, unnormalized inputs that were not found.
	Unmatched []string
}

// Normalize converts a free-text symptom into the canonical token form:
// lowercase, trimmed, with each inner space replaced by an underscore.
func Normalize(symptom string) string {
	// cases.Caser keeps per-call state, so one is built per use.
	s := cases.Lower(language.Und).String(strings.TrimSpace(symptom))
	return strings.ReplaceAll(s, " ", "_")
}

// Encode maps symptoms onto vocab. Every input lands in exactly one of
// Matched or Unmatched; duplicates are kept and set the same position.
func Encode(vocab *Vocabulary, symptoms []string) Encoding {
	enc := Encoding{
		Vector:    NewVector(vocab.Len()),
		Matched:   make([]string, 0, len(symptoms)),
		Unmatched: make([]string, 0),
	}
	for _, s := range symptoms {
		token := Normalize(s)
		if i, ok := vocab.Index(token); ok {
			enc.Vector.Set(i)
			enc.Matched = append(enc.Matched, token)
			continue
		}
		enc.Unmatched = append(enc.Unmatched, s)
	}
	return enc
}
