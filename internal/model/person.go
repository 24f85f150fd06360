// Package model defines domain entities for the application.
package model

import "time"

// Role is the authorization role attached to a person.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid checks if the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole normalizes a role string, defaulting to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Person represents a registered person who may own tags.
// PasswordHash is the opaque credential secret and must never
// leave the auth boundary.
type Person struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PersonRef is the non-sensitive subset of a person attached to
// intake results and event listings.
type PersonRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PersonSummary is the public identity view returned by tag resolution.
type PersonSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the minimal reference view of the person.
func (p *Person) Ref() *PersonRef {
	if p == nil {
		return nil
	}
	return &PersonRef{ID: p.ID, Name: p.Name}
}

// Summary returns the public identity view of the person.
func (p *Person) Summary() *PersonSummary {
	if p == nil {
		return nil
	}
	return &PersonSummary{ID: p.ID, Name: p.Name, Email: p.Email}
}
