// Package gate is a small permission gate. A subject is resolved to a
// Profile of "resource:action" permissions, and resources may additionally
// register a Policy (ownership and the like) that is consulted whenever a
// concrete resource is passed to Authorize.
//
// The package has no dependency on the application's models; the subject
// type is generic (a user id, a claims struct, ...).
package gate

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is returned for the zero subject (no session).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the profile or the policy denies access.
	ErrForbidden = errors.New("forbidden")
)

// Gate checks profile permissions first, then the resource policy.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate resolving subjects through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register sets the policy of resource, replacing any previous one.
// Not safe for use once the gate is serving requests.
func (g *Gate[U]) Register(resource string, p Policy[U]) {
	g.policies[resource] = p
}

// Authorize returns ErrUnauthorized for the zero subject, ErrForbidden when
// the profile lacks resource:action or the resource policy refuses, and the
// resolver error if resolution fails.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resource string, target any) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return err
	}
	if profile == nil || !profile.HasPermission(NewPermission(resource, action)) {
		return ErrForbidden
	}
	if target == nil {
		return nil
	}
	if p, ok := g.policies[resource]; ok && !p.Can(ctx, subject, action, target) {
		return ErrForbidden
	}
	return nil
}

// Can is Authorize as a boolean.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resource string, target any) bool {
	return g.Authorize(ctx, subject, action, resource, target) == nil
}

// HasPermission checks the profile only, ignoring resource policies.
func (g *Gate[U]) HasPermission(ctx context.Context, subject U, perm Permission) bool {
	var zero U
	if subject == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(perm)
}
