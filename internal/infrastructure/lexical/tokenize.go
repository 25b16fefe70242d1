package lexical

import "strings"

// Tokenize splits text on whitespace. The snapshot's BM25 corpus was built
// with plain whitespace splitting, so queries must tokenize the same way for
// term frequencies to line up.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
