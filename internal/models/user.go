package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	Handle         string
	Name           string
	Description    string
	Image          string
	Links          []string
	HashedPassword string
}

// PublicProfile is the subset of User that is safe to expose outside the
// storage layer. The password hash never leaves the service boundary.
type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Handle      string    `json:"handle"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Links       []string  `json:"links"`
}

func (u User) Public() PublicProfile {
	links := u.Links
	if links == nil {
		links = []string{}
	}

	return PublicProfile{
		ID:          u.ID,
		Email:       u.Email,
		Handle:      u.Handle,
		Name:        u.Name,
		Description: u.Description,
		Image:       u.Image,
		Links:       links,
	}
}
