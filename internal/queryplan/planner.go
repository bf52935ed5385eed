// Package queryplan expands seed topics into the randomized search queries a
// discovery run walks through.
package queryplan

import (
	"errors"
	"math/rand/v2"
	"strings"
)

// suffixVocabulary is the fixed set of variations appended to each topic.
// The cartesian product over topics is combinatorially unique, so no dedup
// pass is needed after expansion.
var suffixVocabulary = []string{
	"podcast",
	"show",
	"interview",
	"talk show",
	"conversations",
}

// Query pairs an originating topic with one expanded search string.
type Query struct {
	Topic string
	Text  string
}

// Expand returns the full topic x suffix product in randomized order. The
// shuffle trades reproducibility for result diversity across runs; two runs
// with identical topics may hit the catalogs in different order.
func Expand(topics []string) ([]Query, error) {
	cleaned := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("at least one topic is required")
	}

	queries := make([]Query, 0, len(cleaned)*len(suffixVocabulary))
	for _, topic := range cleaned {
		for _, suffix := range suffixVocabulary {
			queries = append(queries, Query{
				Topic: topic,
				Text:  topic + " " + suffix,
			})
		}
	}

	rand.Shuffle(len(queries), func(i, j int) {
		queries[i], queries[j] = queries[j], queries[i]
	})
	return queries, nil
}

// SuffixCount reports the size of the suffix vocabulary.
func SuffixCount() int {
	return len(suffixVocabulary)
}
