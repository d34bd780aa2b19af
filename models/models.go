package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	gorm.Model
	Username       string `gorm:"uniqueIndex" json:"username"`
	HashedPassword string `json:"-"`
}

// JournalEntry represents one trade-journal record owned by a user.
type JournalEntry struct {
	gorm.Model
	OwnerID    uint       `gorm:"index" json:"owner_id"`
	Underlying string     `gorm:"index" json:"underlying"`
	Strategy   string     `json:"strategy"`
	EntryDate  time.Time  `json:"entry_date"`
	ExitDate   *time.Time `json:"exit_date,omitempty"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	Quantity   int        `json:"quantity"`
	Rationale  string     `json:"rationale,omitempty"`
	FinalPL    *float64   `json:"final_pl,omitempty"`
}

// TableName overrides for cleaner table names
func (User) TableName() string {
	return "users"
}

func (JournalEntry) TableName() string {
	return "trade_journal_entries"
}
