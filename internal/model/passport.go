package model

import (
	"fmt"
	"time"
)

// PassportCountry is the fixed country prefix on every passport number.
const PassportCountry = "UA"

// Passport is the uniquely numbered identity record issued per fulfilled
// queen. Ownership is transferred on resale; the number never changes.
type Passport struct {
	ID           string    `json:"id"`
	LineID       string    `json:"line_id"`
	CategoryCode string    `json:"category_code"`
	RegionCode   string    `json:"region_code"`
	IssuerNumber int       `json:"issuer_number"`
	Sequence     int       `json:"sequence"`
	Year         int       `json:"year"`
	OwnerID      string    `json:"owner_id"`
	BreederID    string    `json:"breeder_id"`
	Status       string    `json:"status"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Passport statuses.
const (
	PassportStatusIssued      = "issued"
	PassportStatusTransferred = "transferred"
)

// PassportNumber composes the globally unique passport id from its fixed
// fields. No two passports may share the same
// (category, region, issuer, sequence, year) tuple.
func PassportNumber(category, region string, issuer, sequence, year int) string {
	return fmt.Sprintf("%s-%s-%s-%04d-%04d-%d",
		PassportCountry, category, region, issuer, sequence, year)
}

// Number returns the passport's composed id.
func (p *Passport) Number() string {
	return PassportNumber(p.CategoryCode, p.RegionCode, p.IssuerNumber, p.Sequence, p.Year)
}
