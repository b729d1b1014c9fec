package http

import (
	"context"
	"net/http"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"
)

// Codes used by the transport on top of the domain taxonomy.
const (
	codeNotFound        = "NotFound"
	codeTooLarge        = "RequestTooLarge"
	codeCanceled        = "Canceled"
	codeDeadlineExpired = "DeadlineExceeded"
)

// statusFor maps an error to a status code and a response code.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, codeTooLarge
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, codeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeDeadlineExpired
	case chatgate.IsClientError(err):
		return http.StatusBadRequest, chatgate.ErrorCode(err)
	case errors.Is(err, chatgate.ErrUpload), errors.Is(err, chatgate.ErrBackend):
		return http.StatusBadGateway, chatgate.ErrorCode(err)
	default:
		return http.StatusInternalServerError, chatgate.ErrorCode(err)
	}
}

// fail logs err and writes the mapped error response. Internal error text
// is not exposed to callers.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	logger := hlog.FromRequest(r)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("code", code).Msg("request failed")
	default:
		logger.Info().Err(err).Str("code", code).Msg("request rejected")
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	data, err := json.MarshalError(code, message)
	if err != nil {
		http.Error(w, message, status)
		return
	}
	writeJSON(w, status, data)
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
