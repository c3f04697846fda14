package gate

import "strings"

// Action is the operation part of a permission.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Permission is a "resource:action" pair, e.g. "employe:list".
type Permission string

const (
	Wildcard = "*"
	// PermissionAll is granted to administrators.
	PermissionAll Permission = "*:*"
)

// NewPermission builds a permission for resource and action.
func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Split returns the resource and action parts. Malformed values yield
// empty strings.
func (p Permission) Split() (resource string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Grants reports whether holding p allows the requested permission.
// "*:*" grants everything and "employe:*" grants every employe action.
func (p Permission) Grants(requested Permission) bool {
	if p == PermissionAll || p == requested {
		return true
	}
	res, act := p.Split()
	reqRes, _ := requested.Split()
	return res != "" && res == reqRes && string(act) == Wildcard
}
