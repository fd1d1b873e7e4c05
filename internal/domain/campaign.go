package domain

import (
	"math"
	"time"
)

// Campaign represents a fundraising goal with a monetary target and a
// running collected total.
type Campaign struct {
	ID              string
	Title           string
	Description     string
	GoalAmount      float64
	CollectedAmount float64
	ImageURL        string
	CreatedAt       time.Time
	CreatedBy       string
}

// ProgressPercentage returns collected/goal as a whole percentage, clamped
// to 100. A goal of zero always reports zero progress.
func (c Campaign) ProgressPercentage() int {
	if c.GoalAmount <= 0 {
		return 0
	}
	pct := c.CollectedAmount / c.GoalAmount * 100
	if pct >= 100 {
		return 100
	}
	return int(math.Floor(pct))
}

// IsGoalReached reports whether the collected total has met the goal.
func (c Campaign) IsGoalReached() bool {
	return c.CollectedAmount >= c.GoalAmount
}

// CampaignPatch enumerates the campaign fields an administrator may change.
// CollectedAmount is deliberately absent: the donation ledger is its only
// writer, and admin edits must never overwrite it.
type CampaignPatch struct {
	Title       *string
	Description *string
	GoalAmount  *float64
	ImageURL    *string
}

// IsEmpty reports whether the patch names no fields.
func (p CampaignPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.GoalAmount == nil && p.ImageURL == nil
}
