package httpadapter

import (
	"net/http"

	"github.com/mkravets/docsqa/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrBackendUnavailable):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrRerankUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
