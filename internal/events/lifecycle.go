// Package events consumes the post lifecycle topic and folds dispatcher
// outcomes back into the schedule store. The dispatcher publishes
// post.published and post.failed once it has attempted delivery; this
// service owns the rows, so it is the one that records the outcome.
package events

import (
	"context"

	"crossport/api_schedule/internal/store"
	"crossport/api_schedule/pkg/cache"
	"crossport/api_schedule/pkg/kafka"
	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/models"
)

type StatusStore interface {
	UpdateStatus(ctx context.Context, id string, status models.PostStatus, errMsg string) error
}

// LifecycleHandler applies post lifecycle events to the store
type LifecycleHandler struct {
	store  StatusStore
	cache  *cache.Cache
	logger logging.Logger
}

func NewLifecycleHandler(statusStore StatusStore, calendarCache *cache.Cache, logger logging.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		store:  statusStore,
		cache:  calendarCache,
		logger: logger,
	}
}

// Handle processes one message from the lifecycle topic. Malformed
// payloads and events for unknown posts are logged and committed; only
// store failures are returned so the offset stays uncommitted and the
// event is retried.
func (h *LifecycleHandler) Handle(ctx context.Context, msg kafka.Message) error {
	evt, err := kafka.ParsePostEvent(msg.Value)
	if err != nil {
		h.logger.WithFields(logging.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"error":     err.Error(),
		}).Warn("Dropping malformed lifecycle event")
		return nil
	}

	var status models.PostStatus
	switch evt.Type {
	case kafka.EventPostPublished:
		status = models.PostStatusPublished
	case kafka.EventPostFailed:
		status = models.PostStatusFailed
	case kafka.EventPostScheduled, kafka.EventPostCancelled:
		// Our own mutations echoed back on the topic.
		return nil
	default:
		h.logger.WithFields(logging.Fields{
			"type":    evt.Type,
			"post_id": evt.PostID,
		}).Warn("Ignoring unknown lifecycle event type")
		return nil
	}

	err = h.store.UpdateStatus(ctx, evt.PostID, status, evt.Error)
	if err == store.ErrNotFound {
		h.logger.WithFields(logging.Fields{
			"post_id": evt.PostID,
			"type":    evt.Type,
		}).Warn("Lifecycle event for unknown post")
		return nil
	}
	if err != nil {
		h.logger.WithFields(logging.Fields{
			"post_id": evt.PostID,
			"type":    evt.Type,
			"error":   err.Error(),
		}).Error("Failed to apply lifecycle event")
		return err
	}

	if h.cache != nil {
		h.cache.Flush()
	}

	h.logger.WithFields(logging.Fields{
		"post_id": evt.PostID,
		"status":  status,
	}).Info("Applied lifecycle event")

	return nil
}
