package models

import "time"

// Profile represents a member of the community, 1:1 with the auth account.
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Bio          string    `gorm:"size:160" json:"bio"`
	Location     string    `gorm:"size:128" json:"location"`
	Church       string    `gorm:"size:255" json:"church"`
	Whatsapp     string    `gorm:"size:128" json:"whatsapp,omitempty"`
	Instagram    string    `gorm:"size:128" json:"instagram,omitempty"`
	Facebook     string    `gorm:"size:128" json:"facebook,omitempty"`
	Twitter      string    `gorm:"size:128" json:"twitter,omitempty"`
	Youtube      string    `gorm:"size:128" json:"youtube,omitempty"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	CoverURL     string    `gorm:"size:512" json:"cover_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileCounters carries the counts computed on read for a profile page.
type ProfileCounters struct {
	Posts     int64 `json:"posts"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
