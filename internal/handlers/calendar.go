package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"crossport/api_schedule/pkg/calendar"
	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/models"
)

// Calendar handles GET /schedule/calendar. The month payload is a pure
// function of (year, month, tz, week_start) plus the posts in that window,
// so identical requests share a cached build until a mutation flushes it.
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	now := time.Now()

	year := now.Year()
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1970 || v > 9999 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid year"})
			return
		}
		year = v
	}

	month := int(now.Month())
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid month"})
			return
		}
		month = v
	}

	tzName := c.DefaultQuery("tz", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Unknown timezone"})
		return
	}

	weekStart, err := parseWeekStart(c.DefaultQuery("week_start", "sunday"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	cacheKey := fmt.Sprintf("%04d-%02d:%s:%d", year, month, tzName, weekStart)
	payload, err := h.cachedCalendar(c.Request.Context(), cacheKey, func(ctx context.Context) (interface{}, error) {
		return h.buildCalendar(ctx, year, time.Month(month), loc, weekStart)
	})
	if err != nil {
		h.logger.WithFields(logging.Fields{
			"year":  year,
			"month": month,
			"tz":    tzName,
			"error": err.Error(),
		}).Error("Failed to build calendar view")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build calendar"})
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (h *ScheduleHandler) cachedCalendar(ctx context.Context, key string, loader func(context.Context) (interface{}, error)) (*models.CalendarResponse, error) {
	if h.cache == nil {
		val, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return val.(*models.CalendarResponse), nil
	}

	val, err := h.cache.Get(ctx, key, loader)
	if err != nil {
		return nil, err
	}
	return val.(*models.CalendarResponse), nil
}

func (h *ScheduleHandler) buildCalendar(ctx context.Context, year int, month time.Month, loc *time.Location, weekStart time.Weekday) (*models.CalendarResponse, error) {
	started := time.Now()

	window := calendar.MonthWindow(year, month, loc, weekStart)
	from := window[0].Time(loc)
	last := window[len(window)-1]
	to := calendar.DayKey{Year: last.Year, Month: last.Month, Day: last.Day + 1}.Time(loc)

	posts, err := h.store.ListPostsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	index, report := calendar.BuildIndex(posts, loc, calendar.BuildOptions{})
	for _, skipped := range report.Skipped {
		h.logger.WithFields(logging.Fields{
			"post_id": skipped.ID,
			"reason":  skipped.Reason,
		}).Warn("Skipped post while indexing calendar")
	}

	today := calendar.Today(time.Now(), loc)
	days := make([]models.CalendarDay, 0, len(window))
	buckets := make(map[string][]models.ScheduledPost, index.Len())
	for _, key := range window {
		dayPosts := index.PostsOnDay(key)
		days = append(days, models.CalendarDay{
			Date:    key.String(),
			InMonth: key.Month == month,
			Today:   key == today,
			Count:   len(dayPosts),
			Posts:   dayPosts,
		})
		if len(dayPosts) > 0 {
			buckets[key.String()] = dayPosts
		}
	}

	h.metrics.ObserveBuild("http", time.Since(started).Seconds())

	return &models.CalendarResponse{
		Year:      year,
		Month:     int(month),
		Timezone:  loc.String(),
		Today:     today.String(),
		Days:      days,
		Calendar:  buckets,
		Warnings:  report.Warnings(),
		PostCount: index.Len(),
	}, nil
}

func parseWeekStart(raw string) (time.Weekday, error) {
	switch strings.ToLower(raw) {
	case "sunday", "sun", "0":
		return time.Sunday, nil
	case "monday", "mon", "1":
		return time.Monday, nil
	case "saturday", "sat", "6":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid week_start %q", raw)
	}
}
