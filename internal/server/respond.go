package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/view"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	if view.IsNotFound(err) {
		return http.StatusNotFound
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPath, errs.ErrCodeInvalidGraph:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeNodeNotFound, errs.ErrCodeViewNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeMutationInFlight, errs.ErrCodeStaleResponse:
		return http.StatusConflict
	case errs.ErrCodeInvalidFragment:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeOracleTransport:
		return http.StatusBadGateway
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	switch {
	case code != "":
	case view.IsNotFound(err):
		code = string(errs.ErrCodeViewNotFound)
	default:
		code = string(errs.ErrCodeInternal)
	}

	if status >= 500 {
		s.logger.Error("request failed", "code", code, "err", err)
	} else {
		s.logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errs.UserMessage(err)})
}

// decodeJSON reads an optional JSON body into v. An empty body is allowed.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
