package models

import "time"

// VoteRecord stores the per-message conclusion cast for a poll, in message
// order. Records are write-only audit data; the handler never reads them back.
type VoteRecord struct {
	ID           uint   `gorm:"primaryKey"`
	PollID       string `gorm:"size:32;index"`
	Contract     string `gorm:"size:128;index"`
	MessageIndex int    `gorm:"index"`
	Vote         string `gorm:"size:32;index"` // "succeeded_on_chain", "failed_on_chain" or "not_found"
	CreatedAt    time.Time
}
