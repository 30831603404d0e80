package models

import (
	"time"

	"gorm.io/datatypes"
)

// StudyPlan is a multi-day devotional curriculum.
type StudyPlan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AuthorID        uint      `gorm:"index;not null" json:"author_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DayCount        int       `gorm:"not null;default:0" json:"day_count"`
	SubscriberCount int64     `gorm:"not null;default:0" json:"subscriber_count"`
	Days            []PlanDay `gorm:"foreignKey:PlanID" json:"days,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PlanDay is one ordered entry of a study plan.
type PlanDay struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PlanID    uint   `gorm:"uniqueIndex:idx_plan_day;not null" json:"plan_id"`
	Number    int    `gorm:"uniqueIndex:idx_plan_day;not null" json:"number"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Content   string `gorm:"type:text" json:"content"`
	Reference string `gorm:"size:128" json:"reference"`
	VerseText string `gorm:"type:text" json:"verse_text"`
}

// PlanProgress tracks a user's completion of a plan. Created on subscribe,
// mutated on day completion, never deleted.
type PlanProgress struct {
	ID            uint                     `gorm:"primaryKey" json:"id"`
	PlanID        uint                     `gorm:"uniqueIndex:idx_progress_pair;not null" json:"plan_id"`
	UserID        uint                     `gorm:"uniqueIndex:idx_progress_pair;not null" json:"user_id"`
	CompletedDays datatypes.JSONSlice[int] `json:"completed_days"`
	Completed     bool                     `gorm:"not null;default:false" json:"completed"`
	Reminder      bool                     `gorm:"not null;default:false" json:"reminder"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}
