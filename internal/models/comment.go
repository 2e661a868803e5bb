package models

import "time"

// Comment is an append-only note on a session, optionally tied to one accommodation.
type Comment struct {
	ID                 string    `db:"id" json:"id"`
	SessionID          string    `db:"session_id" json:"sessionId"`
	UserID             string    `db:"user_id" json:"userId"`
	UserName           string    `db:"user_name" json:"userName"`
	UserRole           string    `db:"user_role" json:"userRole"`
	Text               string    `db:"text" json:"text"`
	AccommodationIndex *int      `db:"accommodation_index" json:"accommodationIndex"`
	CreatedAt          time.Time `db:"created_at" json:"timestamp"`
}

// IsGeneral reports whether the comment is not tied to a specific accommodation.
func (c Comment) IsGeneral() bool {
	return c.AccommodationIndex == nil
}
