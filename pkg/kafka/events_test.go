package kafka

import (
	"testing"
)

func TestNewPostEventFillsEnvelope(t *testing.T) {
	evt := NewPostEvent(EventPostScheduled, "almanac", "post-1")
	if evt.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if evt.Type != EventPostScheduled || evt.PostID != "post-1" || evt.Source != "almanac" {
		t.Fatalf("envelope fields not set: %+v", evt)
	}
	if evt.Timestamp.IsZero() || evt.SchemaVersion == "" {
		t.Fatalf("expected timestamp and schema version")
	}
}

func TestPostEventRoundTrip(t *testing.T) {
	evt := NewPostEvent(EventPostFailed, "dispatcher", "post-2")
	evt.Error = "rate limited"

	data, err := evt.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := ParsePostEvent(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if decoded.PostID != "post-2" || decoded.Type != EventPostFailed || decoded.Error != "rate limited" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestParsePostEventRejectsInvalid(t *testing.T) {
	if _, err := ParsePostEvent([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ParsePostEvent([]byte(`{"id":"1","type":"post.published"}`)); err == nil {
		t.Fatalf("expected error for missing post_id")
	}
	if _, err := ParsePostEvent([]byte(`{"id":"1","post_id":"p"}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
}
