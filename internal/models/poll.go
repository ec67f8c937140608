// Package models defines the database models for the vote audit trail.
package models

import "time"

// PollRecord represents one poll this verifier produced a vote for.
type PollRecord struct {
	ID        uint   `gorm:"primaryKey"`
	PollID    string `gorm:"size:32;index:ix_contract_poll;index"`
	Contract  string `gorm:"size:128;index:ix_contract_poll;index"`
	Sender    string `gorm:"size:128;index"`
	VoteCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}
