package httpadapter

import (
	"errors"
	"net/http"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrUnknownStep):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrMissingPrerequisite):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrExternalCall), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	payload := map[string]string{"error": err.Error()}

	var prereq *domain.PrerequisiteError
	if errors.As(err, &prereq) {
		payload["missing_step"] = string(prereq.Missing)
	}
	writeJSON(w, mapErrorToHTTPStatus(err), payload)
}
