package httpadapter

import (
	"net/http"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/infrastructure/formdata"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case formdata.IsTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSubmissionInFlight), domain.IsKind(err, domain.ErrResultShown):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrBackend):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
