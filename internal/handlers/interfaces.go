package handlers

import (
	"context"
	"time"

	"crossport/api_schedule/pkg/kafka"
	"crossport/api_schedule/pkg/models"
)

type PostStore interface {
	CreatePost(ctx context.Context, req models.SchedulePostRequest) (models.ScheduledPost, error)
	GetPost(ctx context.Context, id string) (models.ScheduledPost, error)
	ListPosts(ctx context.Context) ([]models.ScheduledPost, error)
	ListPostsInRange(ctx context.Context, from, to time.Time) ([]models.ScheduledPost, error)
	CancelPost(ctx context.Context, id string) (models.ScheduledPost, error)
}

type DispatcherClient interface {
	Enqueue(ctx context.Context, post models.ScheduledPost) error
	Cancel(ctx context.Context, postID string) error
}

type EventPublisher interface {
	PublishPostEvent(ctx context.Context, evt kafka.PostEvent) error
}
