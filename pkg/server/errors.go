package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/morph/internal/errors"
)

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case "H001", "S001":
		return http.StatusNotFound
	case "H002", "M001", "M003":
		return http.StatusBadRequest
	case "M002":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errors.FromError(err, "H003")
	status := statusFor(e.Code)
	if status >= 500 {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	detail := e.Detail
	if e.Wrapped != nil {
		if detail != "" {
			detail += ": "
		}
		detail += e.Wrapped.Error()
	}
	writeJSON(w, status, ErrorResponse{Code: e.Code, Message: e.Message, Detail: detail})
}
