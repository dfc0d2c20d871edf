package models

import "time"

// Resource is a study resource written in markdown
type Resource struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"bodyHtml,omitempty"`
	Grade     *Grade    `json:"grade,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SponsorTier ranks sponsors
type SponsorTier string

const (
	TierGold   SponsorTier = "gold"
	TierSilver SponsorTier = "silver"
	TierBronze SponsorTier = "bronze"
)

// Sponsor is a contest sponsor
type Sponsor struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Tier              SponsorTier `json:"tier"`
	Website           string      `json:"website,omitempty"`
	LogoURL           string      `json:"logoUrl,omitempty"`
	ContributionCents int         `json:"contributionCents"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// Vendor supplies services for contest events
type Vendor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Service      string    `json:"service"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
