package entity

import (
	"EduPortal/internal/lib/validate"
	"net/http"
	"strings"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

func (l *LoginRequest) Bind(_ *http.Request) error {
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	return validate.Struct(l)
}

type SelectAccessRequest struct {
	Portal   string `json:"portal" validate:"required,oneof=ADMIN FRANCHISOR SCHOOL"`
	Context  string `json:"context" validate:"omitempty,max=128"`
	ReturnTo string `json:"returnTo"`
}

func (s *SelectAccessRequest) Bind(_ *http.Request) error {
	s.Context = strings.TrimSpace(s.Context)
	return validate.Struct(s)
}

type TransitionRequest struct {
	Action         string `json:"action" validate:"required"`
	ReasonCategory string `json:"reason_category" validate:"omitempty,max=200"`
	ReasonDetails  string `json:"reason_details" validate:"omitempty,max=4000"`
}

func (t *TransitionRequest) Bind(_ *http.Request) error {
	return validate.Struct(t)
}
