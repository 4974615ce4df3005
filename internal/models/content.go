package models

import "time"

// ContentType classifies a content post.
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
	ContentText  ContentType = "text"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentImage, ContentText:
		return true
	}
	return false
}

// Content is a post published by a user.
type Content struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	Description string      `gorm:"type:text" json:"description"`
	Type        ContentType `gorm:"type:varchar(20);not null;index" json:"type"`
	MediaURL    string      `gorm:"size:255" json:"media_url,omitempty"`
	PublishedAt time.Time   `gorm:"not null;index" json:"published_at"`

	AuthorName   string `gorm:"->;-:migration" json:"author_name,omitempty"`
	AuthorRole   Role   `gorm:"->;-:migration" json:"author_role,omitempty"`
	CommentCount int64  `gorm:"->;-:migration" json:"comment_count"`
}

// ContentPatch carries optional content fields. Only the description is mutable.
type ContentPatch struct {
	Description *string `json:"description"`
}

func (p ContentPatch) IsEmpty() bool {
	return p.Description == nil
}

func (p ContentPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "description", p.Description)
	return cols
}

// Comment is a user's comment on a Content.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ContentID uint      `gorm:"not null;index" json:"content_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	AuthorName string `gorm:"->;-:migration" json:"author_name,omitempty"`
}

// CommentPatch carries optional comment fields.
type CommentPatch struct {
	Text *string `json:"text"`
}

func (p CommentPatch) IsEmpty() bool {
	return p.Text == nil
}

func (p CommentPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "text", p.Text)
	return cols
}

// Subscription is a directed follow edge between two users.
type Subscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"followed_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// FollowEntry is one row of a followers or following listing.
type FollowEntry struct {
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	FollowedAt time.Time `json:"followed_at"`
}
