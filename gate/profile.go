package gate

import (
	"context"
	"sort"
)

// Profile is the set of permissions a subject holds.
type Profile interface {
	Role() string
	HasPermission(Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a subject to its profile. A nil profile with a
// nil error means the subject holds no permission at all.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// RoleProfile grants a fixed set of permissions to a named role.
type RoleProfile struct {
	role  string
	perms []Permission
}

// NewRoleProfile returns a profile for role holding perms.
func NewRoleProfile(role string, perms ...Permission) *RoleProfile {
	cp := append([]Permission(nil), perms...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return &RoleProfile{role: role, perms: cp}
}

func (p *RoleProfile) Role() string { return p.role }

func (p *RoleProfile) Permissions() []Permission {
	return append([]Permission(nil), p.perms...)
}

func (p *RoleProfile) HasPermission(requested Permission) bool {
	for _, perm := range p.perms {
		if perm.Grants(requested) {
			return true
		}
	}
	return false
}

// RoleTable maps role names to the permissions they grant.
type RoleTable map[string][]Permission

// Profile returns the profile of role, or nil when the role grants nothing.
func (t RoleTable) Profile(role string) Profile {
	perms, ok := t[role]
	if !ok || len(perms) == 0 {
		return nil
	}
	return NewRoleProfile(role, perms...)
}

// StaticResolver is an in-memory resolver, mostly useful in tests.
type StaticResolver[U comparable] struct {
	profiles map[U]Profile
}

// NewStaticResolver creates an empty in-memory resolver.
func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{profiles: make(map[U]Profile)}
}

// Set assigns profile to subject.
func (r *StaticResolver[U]) Set(subject U, profile Profile) {
	r.profiles[subject] = profile
}

func (r *StaticResolver[U]) Resolve(_ context.Context, subject U) (Profile, error) {
	return r.profiles[subject], nil
}
