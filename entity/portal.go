package entity

import "fmt"

type Portal string

const (
	PortalAdmin      Portal = "ADMIN"
	PortalFranchisor Portal = "FRANCHISOR"
	PortalSchool     Portal = "SCHOOL"
)

// PortalPrecedence is the fixed evaluation order of the membership resolver.
// The first membership found in this order becomes the default landing target
// when an identity holds several.
var PortalPrecedence = [...]Portal{PortalAdmin, PortalFranchisor, PortalSchool}

func ParsePortal(s string) (Portal, error) {
	switch p := Portal(s); p {
	case PortalAdmin, PortalFranchisor, PortalSchool:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown portal %q", ErrValidation, s)
}

// DefaultPath is the landing page of the portal.
func (p Portal) DefaultPath() string {
	switch p {
	case PortalAdmin:
		return "/admin/dashboard"
	case PortalFranchisor:
		return "/franchisor/dashboard"
	case PortalSchool:
		return "/school/dashboard"
	}
	return ""
}

// PathPrefix is the path prefix every page of the portal lives under.
func (p Portal) PathPrefix() string {
	switch p {
	case PortalAdmin:
		return "/admin/"
	case PortalFranchisor:
		return "/franchisor/"
	case PortalSchool:
		return "/school/"
	}
	return ""
}

// RedirectTarget is a validated post-login destination.
type RedirectTarget struct {
	Portal       Portal `json:"portal"`
	FranchisorID string `json:"franchisor_id,omitempty"`
	SchoolID     string `json:"school_id,omitempty"`
	Path         string `json:"path"`
}
