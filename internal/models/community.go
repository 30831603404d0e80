package models

import (
	"time"

	"gorm.io/datatypes"
)

// Livestream describes the optional single active stream of a community.
type Livestream struct {
	Title     string `json:"title,omitempty"`
	StreamURL string `json:"stream_url,omitempty"`
	Live      bool   `json:"live,omitempty"`
}

// Community groups members around a church, ministry or interest.
type Community struct {
	ID          uint                           `gorm:"primaryKey" json:"id"`
	Name        string                         `gorm:"size:255;not null" json:"name"`
	Description string                         `gorm:"type:text" json:"description"`
	AdminID     uint                           `gorm:"index;not null" json:"admin_id"`
	AvatarURL   string                         `gorm:"size:512" json:"avatar_url"`
	CoverURL    string                         `gorm:"size:512" json:"cover_url"`
	MemberCount int64                          `gorm:"not null;default:0" json:"member_count"`
	Verified    bool                           `gorm:"not null;default:false" json:"verified"`
	Promoted    bool                           `gorm:"not null;default:false" json:"promoted"`
	Stream      datatypes.JSONType[Livestream] `json:"stream,omitempty"`
	Events      []Event                        `gorm:"foreignKey:CommunityID" json:"events,omitempty"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

// CommunityMember records membership of a user in a community.
type CommunityMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"uniqueIndex:idx_member_pair;not null" json:"community_id"`
	UserID      uint      `gorm:"uniqueIndex:idx_member_pair;not null" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is a dated gathering nested under a community.
type Event struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CommunityID   uint      `gorm:"index;not null" json:"community_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Location      string    `gorm:"size:255" json:"location"`
	StartsAt      time.Time `gorm:"index" json:"starts_at"`
	AttendeeCount int64     `gorm:"not null;default:0" json:"attendee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EventRSVP records a user's attendance intent for an event.
type EventRSVP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"uniqueIndex:idx_rsvp_pair;not null" json:"event_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_rsvp_pair;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
