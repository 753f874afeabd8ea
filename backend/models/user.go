package models

import "time"

// User is a single record in the users file, keyed by username.
// The store is the only writer; records are never deleted.
type User struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	APIKey       string     `json:"api_key,omitempty"`
}
