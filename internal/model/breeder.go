package model

import (
	"regexp"
	"time"
)

// Breeder is a seller profile. IssuerNumber is the breeder's registration
// number used in passport numbering.
type Breeder struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	RegionCode   string    `json:"region_code"`
	IssuerNumber int       `json:"issuer_number"`
	About        string    `json:"about,omitempty"`
	Photo        []byte    `json:"photo,omitempty"`
	PhotoMIME    string    `json:"photo_mime,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well-formed profile slug.
func ValidSlug(s string) bool {
	return len(s) >= 3 && len(s) <= 64 && slugPattern.MatchString(s)
}
