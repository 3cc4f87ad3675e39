package models

import "time"

// User is an account holder. ExternalID is the national ID used to log in.
type User struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	FirstName    string    `json:"first_name" db:"first_name" example:"Dana"`
	LastName     string    `json:"last_name" db:"last_name" example:"Levi"`
	ExternalID   string    `json:"external_id" db:"external_id" example:"123456789"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
