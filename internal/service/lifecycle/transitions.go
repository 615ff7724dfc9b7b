package lifecycle

import "EduPortal/entity"

type transitionKey struct {
	kind   entity.EntityKind
	action entity.Action
	from   entity.Status
}

// transitions is the complete set of legal status changes. Schools are
// created active and never pass through approval.
var transitions = map[transitionKey]entity.Status{
	{entity.KindFranchisor, entity.ActionApprove, entity.StatusPending}:      entity.StatusActive,
	{entity.KindFranchisor, entity.ActionSuspend, entity.StatusActive}:       entity.StatusSuspended,
	{entity.KindFranchisor, entity.ActionReactivate, entity.StatusSuspended}: entity.StatusActive,

	{entity.KindSchool, entity.ActionSuspend, entity.StatusActive}:       entity.StatusSuspended,
	{entity.KindSchool, entity.ActionReactivate, entity.StatusSuspended}: entity.StatusActive,
}

// Next returns the status reached by applying action to an entity of kind in
// status from.
func Next(kind entity.EntityKind, action entity.Action, from entity.Status) (entity.Status, bool) {
	to, ok := transitions[transitionKey{kind, action, from}]
	return to, ok
}
