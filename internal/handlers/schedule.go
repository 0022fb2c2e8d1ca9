package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crossport/api_schedule/internal/store"
	"crossport/api_schedule/pkg/cache"
	"crossport/api_schedule/pkg/kafka"
	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/models"
)

const eventSource = "almanac"

// ScheduleHandler serves the scheduled-post CRUD surface. Mutations go
// through the store first; the dispatcher and the lifecycle topic are
// best-effort side channels and never fail the request once the row is
// committed.
type ScheduleHandler struct {
	store      PostStore
	dispatcher DispatcherClient
	events     EventPublisher
	cache      *cache.Cache
	logger     logging.Logger
	metrics    *ScheduleMetrics
}

func NewScheduleHandler(
	postStore PostStore,
	dispatcher DispatcherClient,
	events EventPublisher,
	calendarCache *cache.Cache,
	logger logging.Logger,
	metrics *ScheduleMetrics,
) *ScheduleHandler {
	return &ScheduleHandler{
		store:      postStore,
		dispatcher: dispatcher,
		events:     events,
		cache:      calendarCache,
		logger:     logger,
		metrics:    metrics,
	}
}

// Create handles POST /schedule
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req models.SchedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncPost("create", "bad_request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request format"})
		return
	}

	if len(req.Targets) == 0 {
		h.metrics.IncPost("create", "bad_request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "At least one target is required"})
		return
	}
	if req.ScheduledFor.Before(time.Now()) {
		h.metrics.IncPost("create", "bad_request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "scheduled_for must be in the future"})
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), req)
	if err != nil {
		h.metrics.IncPost("create", "error")
		h.logger.WithFields(logging.Fields{
			"error": err.Error(),
		}).Error("Failed to create scheduled post")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to schedule post"})
		return
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.Enqueue(c.Request.Context(), post); err != nil {
			h.logger.WithFields(logging.Fields{
				"post_id": post.ID,
				"error":   err.Error(),
			}).Warn("Failed to enqueue post with dispatcher")
		}
	}

	h.publishEvent(c, kafka.EventPostScheduled, post)
	h.invalidateCalendar()
	h.metrics.IncPost("create", "success")

	c.JSON(http.StatusCreated, post)
}

// List handles GET /schedule
func (h *ScheduleHandler) List(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context())
	if err != nil {
		h.logger.WithFields(logging.Fields{
			"error": err.Error(),
		}).Error("Failed to list scheduled posts")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, models.ScheduledPostsResponse{Posts: posts})
}

// Cancel handles DELETE /schedule/:id
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	postID := c.Param("id")

	post, err := h.store.CancelPost(c.Request.Context(), postID)
	if err == store.ErrNotFound {
		h.metrics.IncPost("cancel", "not_found")
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Post not found"})
		return
	}
	if err == store.ErrNotCancellable {
		h.metrics.IncPost("cancel", "conflict")
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Only pending posts can be cancelled"})
		return
	}
	if err != nil {
		h.metrics.IncPost("cancel", "error")
		h.logger.WithFields(logging.Fields{
			"post_id": postID,
			"error":   err.Error(),
		}).Error("Failed to cancel scheduled post")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to cancel post"})
		return
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.Cancel(c.Request.Context(), postID); err != nil {
			h.logger.WithFields(logging.Fields{
				"post_id": postID,
				"error":   err.Error(),
			}).Warn("Failed to remove post from dispatcher queue")
		}
	}

	h.publishEvent(c, kafka.EventPostCancelled, post)
	h.invalidateCalendar()
	h.metrics.IncPost("cancel", "success")

	c.JSON(http.StatusOK, post)
}

func (h *ScheduleHandler) publishEvent(c *gin.Context, eventType string, post models.ScheduledPost) {
	if h.events == nil {
		return
	}

	evt := kafka.NewPostEvent(eventType, eventSource, post.ID)
	evt.ScheduledAt = post.ScheduledAt
	if err := h.events.PublishPostEvent(c.Request.Context(), evt); err != nil {
		h.logger.WithFields(logging.Fields{
			"post_id": post.ID,
			"type":    eventType,
			"error":   err.Error(),
		}).Warn("Failed to publish lifecycle event")
	}
}

// invalidateCalendar drops every cached month view. Mutations are rare
// next to calendar reads, so flushing the whole cache is cheaper than
// tracking which months a post touches across timezones.
func (h *ScheduleHandler) invalidateCalendar() {
	if h.cache == nil {
		return
	}
	h.cache.Flush()
	h.metrics.IncCache("flush")
}
