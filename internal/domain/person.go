package domain

import "time"

// Person is a person note in the vault.
type Person struct {
	ID      string
	Name    string
	Body    string
	Team    string
	Role    string
	Email   string
	Created time.Time
	Updated time.Time
}
