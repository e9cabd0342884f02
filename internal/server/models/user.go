// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account record. ID is the internal row id; UserID is the
// opaque identifier handed out to clients and stamped on owned items.
type User struct {
	ID           int64     `json:"-"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
