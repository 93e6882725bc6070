package model

import (
	"time"

	"gorm.io/gorm"
)

// ReadingText is a Portuguese read-aloud passage. Attempts pin the id and the
// version current at assignment time.
type ReadingText struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Title   string `json:"title" gorm:"not null"`
	Body    string `json:"body" gorm:"type:text;not null"`
	Version int    `json:"version" gorm:"not null;default:1"`
	Active  bool   `json:"active" gorm:"default:true;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
