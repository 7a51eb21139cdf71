package model

import "time"

type Party struct {
	// UUIDv7, so ordering by ID is ordering by creation time
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"userId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	PartyDate   time.Time `gorm:"not null" json:"partyDate"`
	Privacy     bool      `json:"privacy"`
	Photos      PathList  `gorm:"type:text" json:"photos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
