// Package admin is the authorization gate for back-office operations: status
// changes, stock corrections and analytics reads.
package admin

import "time"

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
