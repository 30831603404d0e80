package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content types recognised by the store. There is no generic "media" label:
// callers must supply the precise type.
const (
	ContentTypeText    = "text"
	ContentTypeImage   = "image"
	ContentTypeVideo   = "video"
	ContentTypeAudio   = "audio"
	ContentTypeGallery = "gallery"
)

// ValidContentType reports whether t is one of the recognised content types.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypeText, ContentTypeImage, ContentTypeVideo, ContentTypeAudio, ContentTypeGallery:
		return true
	}
	return false
}

// PostStyle is the structured style descriptor for rich text posts. Raw
// markup is never persisted; plain text plus this descriptor is the only
// styled representation.
type PostStyle struct {
	Background string `json:"background,omitempty"`
	Font       string `json:"font,omitempty"`
	TextColor  string `json:"text_color,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Underline  bool   `json:"underline,omitempty"`
	Highlight  bool   `json:"highlight,omitempty"`
}

// Post is a single user-authored feed item.
type Post struct {
	ID               uint                            `gorm:"primaryKey" json:"id"`
	AuthorID         uint                            `gorm:"index;not null" json:"author_id"`
	Author           *Profile                        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content          string                          `gorm:"type:text" json:"content"`
	ContentType      string                          `gorm:"size:32;not null;default:text" json:"content_type"`
	MediaURLs        datatypes.JSONSlice[string]     `json:"media_urls,omitempty"`
	Style            datatypes.JSONType[PostStyle]   `json:"style,omitempty"`
	LikesCount       int64                           `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount    int64                           `gorm:"not null;default:0" json:"comments_count"`
	SharesCount      int64                           `gorm:"not null;default:0" json:"shares_count"`
	OriginalPostID   *uint                           `gorm:"index" json:"original_post_id,omitempty"`
	OriginalAuthorID *uint                           `json:"original_author_id,omitempty"`
	CreatedAt        time.Time                       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time                       `json:"updated_at"`
}

// Like marks that a user liked a post. At most one row per (post, user).
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_like_post_user;not null" json:"post_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_like_post_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment belongs to a post. Comments are a flat time-ordered list; a
// leading @username is a text convention, not threading.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Author    *Profile  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hashtag is created implicitly the first time a post mentions it.
type Hashtag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	PostCount int64     `gorm:"not null;default:0" json:"post_count"`
	CreatedAt time.Time `json:"created_at"`
}

// PostHashtag links posts and hashtags many-to-many.
type PostHashtag struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	PostID    uint `gorm:"uniqueIndex:idx_post_hashtag;not null" json:"post_id"`
	HashtagID uint `gorm:"uniqueIndex:idx_post_hashtag;not null" json:"hashtag_id"`
}
