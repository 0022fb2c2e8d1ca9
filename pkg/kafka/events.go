package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicPostLifecycle carries every state change of a scheduled post. This
// service produces scheduled/cancelled; the dispatcher produces
// published/failed after attempting delivery to the platform APIs.
const TopicPostLifecycle = "crossport.post-lifecycle"

// Post lifecycle event types
const (
	EventPostScheduled = "post.scheduled"
	EventPostCancelled = "post.cancelled"
	EventPostPublished = "post.published"
	EventPostFailed    = "post.failed"
)

// PostEvent is the envelope for post lifecycle events
type PostEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	PostID        string    `json:"post_id"`
	ScheduledAt   time.Time `json:"scheduled_at,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	SchemaVersion string    `json:"schema_version"`
}

// NewPostEvent creates a lifecycle event for a post
func NewPostEvent(eventType, source, postID string) PostEvent {
	return PostEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		PostID:        postID,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
	}
}

// Marshal serializes the event for the wire
func (e PostEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParsePostEvent deserializes and validates a lifecycle event
func ParsePostEvent(data []byte) (PostEvent, error) {
	var evt PostEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode post event: %w", err)
	}
	if evt.PostID == "" {
		return evt, fmt.Errorf("post event %q has no post_id", evt.ID)
	}
	if evt.Type == "" {
		return evt, fmt.Errorf("post event %q has no type", evt.ID)
	}
	return evt, nil
}
