package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusOngoing || s == StatusCompleted
}

// Campaign holds the funding aggregate. CollectedAmount and DonorCount only
// ever grow, one increment per finalized donation.
type Campaign struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug            string       `gorm:"not null;uniqueIndex" json:"slug"`
	Title           string       `gorm:"not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	TargetAmount    int64        `gorm:"not null" json:"target_amount"`
	CollectedAmount int64        `gorm:"not null;default:0" json:"collected_amount"`
	DonorCount      int64        `gorm:"not null;default:0" json:"donor_count"`
	Currency        string       `gorm:"not null;default:'IDR'" json:"currency"`
	Status          Status       `gorm:"not null;default:'ongoing';index" json:"status"`
	Deadline        *time.Time   `json:"deadline,omitempty"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// Progress is the collected share of the target in percent, capped at 100.
func (c Campaign) Progress() float64 {
	if c.TargetAmount <= 0 {
		return 0
	}
	pct := float64(c.CollectedAmount) / float64(c.TargetAmount) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// AggregateSum is the aggregate recomputed from applied donations.
type AggregateSum struct {
	CollectedAmount int64
	DonorCount      int64
}
