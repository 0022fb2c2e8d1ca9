package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PostStatus represents the lifecycle state of a scheduled post. The
// dispatcher owns the pending→published/failed transitions; this service
// owns pending→cancelled.
type PostStatus string

const (
	PostStatusPending   PostStatus = "pending"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
	PostStatusCancelled PostStatus = "cancelled"
)

// Known platform identifiers. The calendar and store treat platform as an
// opaque string; these constants exist for callers that want to enumerate
// the set the product currently connects to.
const (
	PlatformTwitter   = "twitter"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformYouTube   = "youtube"
	PlatformThreads   = "threads"
	PlatformPinterest = "pinterest"
	PlatformReddit    = "reddit"
	PlatformBluesky   = "bluesky"
	PlatformTikTok    = "tiktok"
)

// PostTarget is one platform account a post fans out to
type PostTarget struct {
	Platform  string `json:"platform" db:"platform"`
	AccountID string `json:"account_id" db:"account_id"`
}

// PostTargets is the fan-out list, stored as a JSONB column
type PostTargets []PostTarget

// Value implements the driver.Valuer interface for PostTargets
func (t PostTargets) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal([]PostTarget{})
	}
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface for PostTargets
func (t *PostTargets) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PostTargets", value)
	}

	return json.Unmarshal(bytes, t)
}

// ScheduledPost represents a post queued for future publication to one or
// more platform accounts
type ScheduledPost struct {
	ID          string      `json:"id" db:"id"`
	Content     string      `json:"content" db:"content"`
	ScheduledAt time.Time   `json:"scheduled_at" db:"scheduled_at"`
	Targets     PostTargets `json:"targets" db:"targets"`
	Status      PostStatus  `json:"status" db:"status"`
	MediaURLs   []string    `json:"media_urls,omitempty" db:"media_urls"`
	Error       *string     `json:"error,omitempty" db:"error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SchedulePostRequest is the dashboard request to queue a post
type SchedulePostRequest struct {
	Content      string      `json:"content" binding:"required"`
	ScheduledFor time.Time   `json:"scheduled_for" binding:"required"`
	Targets      PostTargets `json:"targets" binding:"required"`
	MediaURLs    []string    `json:"media_urls,omitempty"`
}

// ScheduledPostsResponse is the list response for GET /schedule
type ScheduledPostsResponse struct {
	Posts []ScheduledPost `json:"posts"`
}

// CalendarDay is one cell of the month grid
type CalendarDay struct {
	Date    string          `json:"date"`
	InMonth bool            `json:"in_month"`
	Today   bool            `json:"today"`
	Count   int             `json:"count"`
	Posts   []ScheduledPost `json:"posts,omitempty"`
}

// CalendarResponse is the month-view payload for GET /schedule/calendar.
// Calendar maps "YYYY-MM-DD" day keys to that day's posts, matching what
// the dashboard's calendar page consumes; Days carries the full
// week-aligned grid in render order.
type CalendarResponse struct {
	Year      int                        `json:"year"`
	Month     int                        `json:"month"`
	Timezone  string                     `json:"timezone"`
	Today     string                     `json:"today"`
	Days      []CalendarDay              `json:"days"`
	Calendar  map[string][]ScheduledPost `json:"calendar"`
	Warnings  []string                   `json:"warnings,omitempty"`
	PostCount int                        `json:"post_count"`
}

// ErrorResponse is the generic error payload
type ErrorResponse struct {
	Error string `json:"error"`
}
