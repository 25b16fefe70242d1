package usecase

import "github.com/mkravets/docsqa/internal/core/domain"

const (
	// Near-duplicate chunks from overlapping crawl boundaries share a long
	// prefix; 64 characters is enough to catch those without collapsing
	// distinct chunks that merely start alike.
	dedupPrefixRunes = 64

	minFusedCandidates = 10
)

type dedupKey struct {
	prefix string
	url    string
}

// fuseCandidates concatenates vector results ahead of lexical results,
// drops later duplicates under the (text prefix, url) key, and caps the
// merged set at max(2k, 10). Scores stay on their source scale; fusion is
// purely set-based.
func fuseCandidates(vector, lexical []domain.Candidate, k int) []domain.Candidate {
	limit := 2 * k
	if limit < minFusedCandidates {
		limit = minFusedCandidates
	}

	seen := make(map[dedupKey]struct{}, len(vector)+len(lexical))
	out := make([]domain.Candidate, 0, limit)
	for _, list := range [][]domain.Candidate{vector, lexical} {
		for _, cand := range list {
			key := dedupKey{prefix: textPrefix(cand.Text), url: cand.URL}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, cand)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// textPrefix returns the first dedupPrefixRunes characters of s. The corpus
// is UTF-8 markdown, so the prefix is counted in runes, not bytes.
func textPrefix(s string) string {
	n := 0
	for i := range s {
		if n == dedupPrefixRunes {
			return s[:i]
		}
		n++
	}
	return s
}
