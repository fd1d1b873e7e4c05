package domain

import "time"

// Donation is an immutable record of one donor's contribution to one
// campaign. Donations reference their campaign by id only; they are never
// updated or deleted, and they survive campaign deletion.
type Donation struct {
	ID         string
	CampaignID string
	UserID     string
	Amount     float64
	Date       time.Time
}
