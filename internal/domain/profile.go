package domain

import "time"

// Identity providers accepted in the X-Auth-Provider header
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

// Profile is the local account row an authenticated request resolves to
type Profile struct {
	ID         string    `json:"id" db:"id"`
	Provider   string    `json:"provider" db:"provider"`
	ProviderID string    `json:"provider_id" db:"provider_id"`
	Email      *string   `json:"email" db:"email"`
	Name       *string   `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
