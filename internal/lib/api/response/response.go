package response

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/validate"
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
}

const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeNoPortalAccess     = "NO_PORTAL_ACCESS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNotFound           = "NOT_FOUND"
	CodeEntitySuspended    = "ENTITY_SUSPENDED"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_FAILED"
	CodeInternal           = "INTERNAL"
)

func Ok(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

func ErrorCode(code, message string) Response {
	return Response{
		Success: false,
		Message: message,
		Code:    code,
	}
}

// FromError classifies err into an HTTP status and a body that is safe to
// show to the caller. Access denials and missing entities produce identical
// bodies.
func FromError(err error) (int, Response) {
	switch {
	case errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorCode(CodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, entity.ErrAccountDisabled):
		return http.StatusForbidden, ErrorCode(CodeAccountDisabled, "account is disabled")
	case errors.Is(err, entity.ErrAccountLocked):
		return http.StatusTooManyRequests, ErrorCode(CodeAccountLocked, "too many failed attempts, try again later")
	case errors.Is(err, entity.ErrNoPortalAccess):
		return http.StatusForbidden, ErrorCode(CodeNoPortalAccess, "no portal access for this account")
	case errors.Is(err, entity.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorCode(CodeUnauthenticated, "authentication required")
	case errors.Is(err, entity.ErrAccessDenied), errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, ErrorCode(CodeNotFound, "requested resource not found")
	case errors.Is(err, entity.ErrEntitySuspended):
		return http.StatusForbidden, ErrorCode(CodeEntitySuspended, "the selected entity is suspended")
	case errors.Is(err, entity.ErrInvalidTransition):
		return http.StatusBadRequest, ErrorCode(CodeInvalidTransition, err.Error())
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict, ErrorCode(CodeConflict, "the resource was modified concurrently, reload and retry")
	case errors.Is(err, entity.ErrValidation), errors.Is(err, validate.ErrInvalid):
		return http.StatusBadRequest, ErrorCode(CodeValidation, err.Error())
	}
	return http.StatusInternalServerError, ErrorCode(CodeInternal, "internal error")
}

// RenderError writes the classified response for err.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
}
