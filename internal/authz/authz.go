// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz holds the ownership-or-role authorization decisions for
// mutating operations. The decisions are pure functions of the actor and
// the resource owner so every mutation path applies them identically.
package authz

import "inkwell/internal/models"

// Principal is the already-verified identity attached to an authenticated
// request. The core never derives it; the session layer supplies it.
type Principal struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// IsAdmin returns true if the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanModify reports whether the actor may mutate a resource owned by
// ownerID. Owners and admins may; everyone else is denied.
func CanModify(actor *Principal, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.IsAdmin()
}
