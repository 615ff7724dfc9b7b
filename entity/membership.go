package entity

import (
	"fmt"
	"time"
)

type FranchisorRole string

const (
	FranchisorOwner FranchisorRole = "Owner"
	FranchisorStaff FranchisorRole = "Staff"
)

type SchoolRole string

const (
	SchoolOwner   SchoolRole = "Owner"
	SchoolStaff   SchoolRole = "Staff"
	SchoolCoach   SchoolRole = "Coach"
	SchoolFinance SchoolRole = "Finance"
)

// Membership is one grant of an identity to a portal. The set of variants is
// closed: AdminMembership, FranchisorMembership and SchoolMembership.
type Membership interface {
	Portal() Portal
	// ContextID is the franchisor or school id the membership is bound to,
	// empty for admin.
	ContextID() string
	isMembership()
}

type AdminMembership struct{}

func (AdminMembership) Portal() Portal    { return PortalAdmin }
func (AdminMembership) ContextID() string { return "" }
func (AdminMembership) isMembership()     {}

type FranchisorMembership struct {
	FranchisorID string         `json:"franchisor_id"`
	Role         FranchisorRole `json:"role"`
	Scope        Scope          `json:"scope"`
}

func (FranchisorMembership) Portal() Portal      { return PortalFranchisor }
func (m FranchisorMembership) ContextID() string { return m.FranchisorID }
func (FranchisorMembership) isMembership()       {}

type SchoolMembership struct {
	SchoolID string     `json:"school_id"`
	Role     SchoolRole `json:"role"`
	// ScopeSchoolIDs is only used for aggregate permission counts in listings.
	ScopeSchoolIDs []string `json:"scope_school_ids,omitempty"`
}

func (SchoolMembership) Portal() Portal      { return PortalSchool }
func (m SchoolMembership) ContextID() string { return m.SchoolID }
func (SchoolMembership) isMembership()       {}

// MembershipRecord is the persisted, flat form of a membership.
type MembershipRecord struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Portal       Portal    `json:"portal" bson:"portal"`
	FranchisorID string    `json:"franchisor_id,omitempty" bson:"franchisor_id,omitempty"`
	SchoolID     string    `json:"school_id,omitempty" bson:"school_id,omitempty"`
	Role         string    `json:"role,omitempty" bson:"role,omitempty"`
	Scope        *Scope    `json:"scope,omitempty" bson:"scope,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// ToMembership converts a record into its typed variant. Records that would
// grant access through incomplete or malformed data are rejected.
func (r MembershipRecord) ToMembership() (Membership, error) {
	switch r.Portal {
	case PortalAdmin:
		return AdminMembership{}, nil

	case PortalFranchisor:
		if r.FranchisorID == "" {
			return nil, fmt.Errorf("%w: franchisor membership %s has no franchisor", ErrValidation, r.ID)
		}
		role := FranchisorRole(r.Role)
		if role != FranchisorOwner && role != FranchisorStaff {
			return nil, fmt.Errorf("%w: franchisor membership %s has role %q", ErrValidation, r.ID, r.Role)
		}
		if r.Scope == nil {
			return nil, fmt.Errorf("%w: franchisor membership %s has no scope", ErrValidation, r.ID)
		}
		scope := *r.Scope
		switch scope.Kind {
		case ScopeAllSchools:
			scope.SchoolIDs = nil
		case ScopeSchoolList:
			if len(scope.SchoolIDs) == 0 {
				return nil, fmt.Errorf("%w: franchisor membership %s has an empty school list", ErrValidation, r.ID)
			}
			scope.SchoolIDs = append([]string(nil), scope.SchoolIDs...)
		default:
			return nil, fmt.Errorf("%w: franchisor membership %s has scope %q", ErrValidation, r.ID, scope.Kind)
		}
		return FranchisorMembership{FranchisorID: r.FranchisorID, Role: role, Scope: scope}, nil

	case PortalSchool:
		if r.SchoolID == "" {
			return nil, fmt.Errorf("%w: school membership %s has no school", ErrValidation, r.ID)
		}
		role := SchoolRole(r.Role)
		switch role {
		case SchoolOwner, SchoolStaff, SchoolCoach, SchoolFinance:
		default:
			return nil, fmt.Errorf("%w: school membership %s has role %q", ErrValidation, r.ID, r.Role)
		}
		m := SchoolMembership{SchoolID: r.SchoolID, Role: role}
		if r.Scope != nil {
			m.ScopeSchoolIDs = append([]string(nil), r.Scope.SchoolIDs...)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: membership %s has portal %q", ErrValidation, r.ID, r.Portal)
}

// RedirectFor returns the default landing target of a membership.
func RedirectFor(m Membership) RedirectTarget {
	target := RedirectTarget{Portal: m.Portal(), Path: m.Portal().DefaultPath()}
	switch v := m.(type) {
	case FranchisorMembership:
		target.FranchisorID = v.FranchisorID
	case SchoolMembership:
		target.SchoolID = v.SchoolID
	}
	return target
}

// MembershipView is the wire form of a membership.
type MembershipView struct {
	Portal       Portal `json:"portal"`
	FranchisorID string `json:"franchisor_id,omitempty"`
	SchoolID     string `json:"school_id,omitempty"`
	Role         string `json:"role,omitempty"`
	Scope        *Scope `json:"scope,omitempty"`
}

func ViewOf(m Membership) MembershipView {
	view := MembershipView{Portal: m.Portal()}
	switch v := m.(type) {
	case FranchisorMembership:
		scope := v.Scope
		view.FranchisorID = v.FranchisorID
		view.Role = string(v.Role)
		view.Scope = &scope
	case SchoolMembership:
		view.SchoolID = v.SchoolID
		view.Role = string(v.Role)
	}
	return view
}
