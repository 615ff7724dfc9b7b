package entity

type ScopeKind string

const (
	ScopeAllSchools ScopeKind = "ALL_SCHOOLS"
	ScopeSchoolList ScopeKind = "SCHOOL_LIST"
)

// Scope is the set of schools a franchisor membership may operate on.
// ALL_SCHOOLS is evaluated live; SCHOOL_LIST carries the explicit ids.
type Scope struct {
	Kind      ScopeKind `json:"kind" bson:"kind"`
	SchoolIDs []string  `json:"school_ids,omitempty" bson:"school_ids,omitempty"`
}

func AllSchools() Scope {
	return Scope{Kind: ScopeAllSchools}
}

func SchoolList(ids ...string) Scope {
	return Scope{Kind: ScopeSchoolList, SchoolIDs: ids}
}
