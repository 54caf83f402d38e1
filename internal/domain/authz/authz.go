// Package authz is the task authorization engine: a pure decision
// function over (actor, action, task state, payload fields). It holds no
// request or storage context so the rules stay unit-testable in isolation.
package authz

import (
	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
)

// Action identifies the operation being authorized.
type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionAssign   Action = "assign"
)

// FieldStatus is the only task field a member may modify on update.
const FieldStatus = "status"

// Decision is the outcome of an authorization check.
//
// AllowedFields nil means every field, otherwise the payload must stay
// within the set. ScopeToActor narrows list/retrieve to tasks assigned to
// the actor. ForceSelfAssign overrides assigned_to and created_by with
// the actor on create.
type Decision struct {
	Allow           bool
	Deny            *apperror.Error
	AllowedFields   map[string]struct{}
	ScopeToActor    bool
	ForceSelfAssign bool
}

func allow() Decision { return Decision{Allow: true} }

func deny(err *apperror.Error) Decision { return Decision{Deny: err} }

// Decide evaluates the role/action table.
//
// task is the current persisted state (nil for list/create); fields are
// the payload field names present in a mutation request. Priority range
// checks are not authorization and happen at the binding layer before
// this function runs.
func Decide(actorID string, role entity.Role, action Action, task *entity.Task, fields []string) Decision {
	switch role {
	case entity.RoleAdmin, entity.RoleManager:
		// Full access, no scope filter, any field.
		return allow()
	case entity.RoleMember:
		return decideMember(actorID, action, task, fields)
	}
	return deny(apperror.Forbidden("unknown role"))
}

func decideMember(actorID string, action Action, task *entity.Task, fields []string) Decision {
	switch action {
	case ActionList, ActionRetrieve:
		return Decision{Allow: true, ScopeToActor: true}

	case ActionCreate:
		// Create always succeeds for members; assigned_to and created_by
		// in the payload are silently overridden to the actor.
		return Decision{Allow: true, ForceSelfAssign: true}

	case ActionUpdate:
		// Ownership is checked before the field set so a member probing a
		// foreign task learns nothing about field rules.
		if task == nil || !task.AssignedToUser(actorID) {
			return deny(apperror.Forbidden("members may only modify their own assigned tasks"))
		}
		for _, f := range fields {
			if f != FieldStatus {
				return deny(apperror.InvalidField("members may only update the task status"))
			}
		}
		return Decision{Allow: true, AllowedFields: map[string]struct{}{FieldStatus: {}}}

	case ActionDelete:
		return deny(apperror.Forbidden("members cannot delete tasks"))

	case ActionAssign:
		return deny(apperror.Forbidden("members cannot assign tasks"))
	}
	return deny(apperror.Forbidden("unknown action"))
}
