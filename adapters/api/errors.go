package api

import (
	"net/http"

	"aquacheck/internal/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps err to its code and status and writes the error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)

	message := appErr.Message
	if appErr.Cause != nil && appErr.Message != appErr.Cause.Error() {
		message = appErr.Error()
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Code: appErr.Code, Message: message}})
}
