package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

const (
	msgServerError        = "Server error"
	msgConflict           = "Username or email already exists"
	msgInvalidCredentials = "Invalid username or password"
	msgInvalidBody        = "Invalid request body"
)

// writeServiceError logs err and converts it to a {message} response.
// Client faults are 400; anything unrecognised is a 500 with a generic body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrConflict):
		log.Warn("registration conflict", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, msgConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Warn("login rejected", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidCredentials)
	case errors.As(err, &verr):
		log.Warn("validation failed", "field", verr.Field, "reason", verr.Reason)
		httpx.WriteMessage(w, http.StatusBadRequest, verr.Error())
	default:
		log.Error("request failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, msgServerError)
	}
}
