package models

import "time"

// Follow is a directed edge: follower sees following's posts in their feed.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"uniqueIndex:idx_follow_pair;not null" json:"follower_id"`
	FollowingID uint      `gorm:"uniqueIndex:idx_follow_pair;not null" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification types created in response to other entities' mutations.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
)

// Notification is a per-user alert produced by like/comment/follow/mention
// activity and consumed (marked read) by the notification view.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ActorID   uint      `gorm:"index" json:"actor_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	PostID    *uint     `json:"post_id,omitempty"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is an append-only ledger entry for donations, promotions and
// subscriptions. Rows are never mutated after creation.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Status      string    `gorm:"size:32;not null;default:pending" json:"status"`
	CommunityID *uint     `gorm:"index" json:"community_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
