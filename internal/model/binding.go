package model

import "time"

// TagBinding maps a physical tag identifier to its current owner.
// UID is the natural key; a tag maps to at most one person at any
// instant, while a person may own any number of tags.
type TagBinding struct {
	UID       string    `json:"uid"`
	PersonID  *int64    `json:"person_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
