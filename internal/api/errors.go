package api

import (
	"net/http"
	"strings"

	"github.com/microempresa/portal-client/internal/core/domain"
)

// errorEnvelope is the API error body: {"error": "...", "code": "..."}.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// codeKinds maps machine-readable error codes to error kinds.
var codeKinds = map[string]error{
	"signup_not_found": domain.ErrSignupNotFound,
	"unauthorized":     domain.ErrUnauthorized,
	"forbidden":        domain.ErrForbidden,
	"not_found":        domain.ErrNotFound,
	"conflict":         domain.ErrConflict,
}

// legacySignupNotFound is the message older servers send, without a code,
// when a signup id no longer exists.
const legacySignupNotFound = "signup_id no encontrado"

// mapError builds the *domain.APIError for a non-2xx response. The error code
// wins over the status; the legacy message match is the last resort for
// servers that do not send codes.
func mapError(resp *Response) *domain.APIError {
	var env errorEnvelope
	_ = resp.Decode(&env)

	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	out := &domain.APIError{
		Status:  resp.Meta.Status,
		Code:    env.Code,
		Message: msg,
	}

	if kind, ok := codeKinds[strings.ToLower(env.Code)]; ok {
		out.Kind = kind
		return out
	}
	if strings.Contains(strings.ToLower(msg), legacySignupNotFound) {
		out.Kind = domain.ErrSignupNotFound
		return out
	}

	switch status := resp.Meta.Status; {
	case status == http.StatusUnauthorized:
		out.Kind = domain.ErrUnauthorized
	case status == http.StatusForbidden:
		out.Kind = domain.ErrForbidden
	case status == http.StatusNotFound:
		out.Kind = domain.ErrNotFound
	case status == http.StatusConflict:
		out.Kind = domain.ErrConflict
	case status >= http.StatusInternalServerError:
		out.Kind = domain.ErrServer
	default:
		out.Kind = domain.ErrRejected
	}
	return out
}
