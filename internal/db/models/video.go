package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// VideoStatus is the publication state of a video.
type VideoStatus string

// VideoStatus constants.
const (
	VideoStatusDraft     VideoStatus = "draft"
	VideoStatusPublished VideoStatus = "published"
	VideoStatusUnlisted  VideoStatus = "unlisted"
	VideoStatusPrivate   VideoStatus = "private"
)

// Valid reports whether s is one of the known statuses.
func (s VideoStatus) Valid() bool {
	switch s {
	case VideoStatusDraft, VideoStatusPublished, VideoStatusUnlisted, VideoStatusPrivate:
		return true
	}
	return false
}

const (
	mockStorageBase = "https://mock-video-storage.com"

	// DefaultLanguage is used when a video is created without a language code.
	DefaultLanguage = "en"
)

// Video is a simulated upload.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID            int64       `db:"id" json:"id"`
	Title         string      `db:"title" json:"title"`
	Slug          string      `db:"slug" json:"slug"`
	Description   string      `db:"description" json:"description"`
	Duration      int         `db:"duration" json:"duration"`
	Status        VideoStatus `db:"status" json:"status"`
	PublishedAt   *time.Time  `db:"published_at" json:"published_at"`
	CategoryID    *int64      `db:"category_id" json:"category_id"`
	ChannelName   string      `db:"channel_name" json:"channel_name"`
	ChannelAvatar string      `db:"channel_avatar" json:"channel_avatar"`
	VideoURL      string      `db:"video_url" json:"video_url"`
	ThumbnailURL  string      `db:"thumbnail_url" json:"thumbnail_url"`
	ViewCount     int64       `db:"view_count" json:"view_count"`
	LikeCount     int64       `db:"like_count" json:"like_count"`
	DislikeCount  int64       `db:"dislike_count" json:"dislike_count"`
	CommentCount  int64       `db:"comment_count" json:"comment_count"`
	Tags          []string    `db:"tags" json:"tags"`
	Language      string      `db:"language" json:"language"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time  `db:"deleted_at" json:"deleted_at,omitempty"`
}

// NewVideo creates a draft Video owned by the given channel.
func NewVideo(title, channelName string, duration int) *Video {
	now := time.Now()
	v := &Video{
		Title:       title,
		Duration:    duration,
		Status:      VideoStatusDraft,
		ChannelName: channelName,
		Tags:        []string{},
		Language:    DefaultLanguage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	v.SetTitle(title)
	return v
}

// SetTitle updates the title and the slug and mock media URLs that derive from it.
func (v *Video) SetTitle(title string) {
	v.Title = title
	v.SetSlug(slug.Make(title))
}

// SetSlug replaces the slug and re-derives the mock media URLs.
func (v *Video) SetSlug(s string) {
	v.Slug = s
	v.VideoURL = fmt.Sprintf("%s/videos/%s.mp4", mockStorageBase, s)
	v.ThumbnailURL = fmt.Sprintf("%s/thumbnails/%s.jpg", mockStorageBase, s)
}

// SetStatus changes the status. PublishedAt is stamped on the first transition
// to published and never cleared afterwards.
func (v *Video) SetStatus(status VideoStatus, now time.Time) {
	v.Status = status
	if status == VideoStatusPublished && v.PublishedAt == nil {
		t := now
		v.PublishedAt = &t
	}
}

// IsDeleted reports whether the video has been soft deleted.
func (v *Video) IsDeleted() bool {
	return v.DeletedAt != nil
}

// EngagementRate is likes per view as a percentage.
func (v *Video) EngagementRate() float64 {
	if v.ViewCount <= 0 {
		return 0
	}
	return float64(v.LikeCount) / float64(v.ViewCount) * 100
}

// LikeRatio is likes as a percentage of all ratings.
func (v *Video) LikeRatio() float64 {
	total := v.LikeCount + v.DislikeCount
	if total <= 0 {
		return 0
	}
	return float64(v.LikeCount) / float64(total) * 100
}

// DurationFormatted renders the duration as h:mm:ss, or m:ss under an hour.
func (v *Video) DurationFormatted() string {
	hours := v.Duration / 3600
	minutes := (v.Duration % 3600) / 60
	seconds := v.Duration % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// VideoView is the API representation of a video including derived metrics.
type VideoView struct {
	*Video
	EngagementRate    float64 `json:"engagement_rate"`
	LikeRatio         float64 `json:"like_ratio"`
	DurationFormatted string  `json:"duration_formatted"`
}

// View wraps the video with its derived metrics.
func (v *Video) View() VideoView {
	return VideoView{
		Video:             v,
		EngagementRate:    v.EngagementRate(),
		LikeRatio:         v.LikeRatio(),
		DurationFormatted: v.DurationFormatted(),
	}
}
