package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexUnavailable means the corpus snapshot is missing, empty or
	// unparseable. Startup must fail; there is no lexical search without it.
	ErrIndexUnavailable = errors.New("lexical index unavailable")

	// ErrBackendUnavailable means the vector store could not serve the query
	// (unreachable, unauthorized, or the collection does not exist).
	ErrBackendUnavailable = errors.New("retrieval backend unavailable")

	// ErrRerankUnavailable means the batched cross-encoder call failed.
	ErrRerankUnavailable = errors.New("rerank model unavailable")

	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
