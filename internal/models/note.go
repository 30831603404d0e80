package models

import (
	"time"

	"gorm.io/datatypes"
)

// Note is a personal study note, optionally linked to a Bible verse.
type Note struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	AuthorID  uint                        `gorm:"index;not null" json:"author_id"`
	Title     string                      `gorm:"size:255;not null" json:"title"`
	Content   string                      `gorm:"type:text" json:"content"`
	Tags      datatypes.JSONSlice[string] `json:"tags,omitempty"`
	Private   bool                        `gorm:"not null;default:true" json:"private"`
	Reference string                      `gorm:"size:128" json:"reference,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}
