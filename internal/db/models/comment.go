package models

import (
	"fmt"
	"net/url"
	"time"
)

// Limits enforced on comment fields.
const (
	MaxCommentLength    = 1000
	MaxAuthorNameLength = 100
)

// Comment belongs to a video and optionally replies to another comment.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Comment struct {
	ID            int64     `db:"id" json:"id"`
	VideoID       int64     `db:"video_id" json:"video_id"`
	ParentID      *int64    `db:"parent_id" json:"parent_id"`
	Content       string    `db:"content" json:"content"`
	AuthorName    string    `db:"author_name" json:"author_name"`
	AuthorAvatar  string    `db:"author_avatar" json:"author_avatar"`
	LikeCount     int64     `db:"like_count" json:"like_count"`
	IsApproved    bool      `db:"is_approved" json:"is_approved"`
	IsAIGenerated bool      `db:"is_ai_generated" json:"is_ai_generated"`
	AIModelUsed   *string   `db:"ai_model_used" json:"ai_model_used"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// NewComment creates an approved, human-authored top-level comment.
func NewComment(videoID int64, authorName, content string) *Comment {
	now := time.Now()
	return &Comment{
		VideoID:      videoID,
		Content:      content,
		AuthorName:   authorName,
		AuthorAvatar: DefaultAvatar(authorName),
		IsApproved:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewAIComment creates an approved comment authored by a generator model.
func NewAIComment(videoID int64, authorName, content, model string) *Comment {
	c := NewComment(videoID, authorName, content)
	c.IsAIGenerated = true
	c.AIModelUsed = &model
	return c
}

// ReplyTo makes the comment a reply to parent on the same video.
func (c *Comment) ReplyTo(parent *Comment) {
	id := parent.ID
	c.ParentID = &id
	c.VideoID = parent.VideoID
}

// IsReply reports whether the comment has a parent.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// DefaultAvatar returns the generated avatar URL used when an author has none.
func DefaultAvatar(authorName string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(authorName))
}
