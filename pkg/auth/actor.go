package auth

import (
	"context"
	"slices"
)

type Role string

const (
	RoleUser       Role = "User"
	RoleProvider   Role = "Provider"
	RoleAdmin      Role = "Admin"
	RoleMasterDemo Role = "MasterDemo"
)

var AllRoles = []Role{RoleUser, RoleProvider, RoleAdmin, RoleMasterDemo}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string
	Email string
	Roles []Role
}

func (a *Actor) HasRole(role Role) bool {
	return a != nil && slices.Contains(a.Roles, role)
}

func (a *Actor) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}

func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.ID != ""
}

// ParseRoles keeps the known roles from raw, dropping duplicates and unknown names.
func ParseRoles(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, name := range raw {
		for _, known := range AllRoles {
			if string(known) == name && !slices.Contains(roles, known) {
				roles = append(roles, known)
			}
		}
	}
	return roles
}

func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

type actorKey struct{}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by the auth middleware, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorKey{}).(*Actor)
	return actor
}
