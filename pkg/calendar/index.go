// Package calendar implements the day-bucketing engine behind the
// scheduling dashboard's month view. It maps scheduled posts to calendar
// days in an injected timezone, keeps each day's bucket deterministically
// ordered, and supports incremental insert/remove so the caller can keep an
// index in sync through optimistic create/cancel flows without rebuilding.
//
// The engine is pure in-process data manipulation: it performs no I/O and
// is not safe for concurrent mutation. Callers driving it from multiple
// event sources (a user action racing a fetch completion) are expected to
// serialize mutations themselves.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"crossport/api_schedule/pkg/models"
)

// Index is a sparse map from day key to that day's posts. Buckets are kept
// sorted by scheduled time ascending, ties broken by post ID, and a day
// with no posts has no key at all: removal of a bucket's last post deletes
// the bucket, and PostsOnDay returns an empty slice for absent days.
type Index struct {
	loc     *time.Location
	buckets map[DayKey][]models.ScheduledPost
	dayByID map[string]DayKey
}

// BuildOptions controls index construction. A nil/empty Statuses slice
// means no status filtering; the engine never filters unless asked.
type BuildOptions struct {
	Statuses []models.PostStatus
}

// SkippedPost records a post excluded from the index and why
type SkippedPost struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BuildReport carries the non-fatal diagnostics from BuildIndex. Duplicate
// IDs and malformed records are data-quality problems in the input, not
// errors: the build always completes.
type BuildReport struct {
	Indexed    int
	Filtered   int
	Skipped    []SkippedPost
	Duplicates []string
}

// Warnings renders the report's diagnostics as log-friendly strings
func (r BuildReport) Warnings() []string {
	var out []string
	for _, s := range r.Skipped {
		out = append(out, fmt.Sprintf("skipped post %q: %s", s.ID, s.Reason))
	}
	for _, id := range r.Duplicates {
		out = append(out, fmt.Sprintf("duplicate post id %q: later record wins", id))
	}
	return out
}

// NewIndex creates an empty index bucketing by calendar day in loc.
// A nil loc defaults to UTC.
func NewIndex(loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}
	return &Index{
		loc:     loc,
		buckets: make(map[DayKey][]models.ScheduledPost),
		dayByID: make(map[string]DayKey),
	}
}

// BuildIndex buckets a post collection by calendar day in loc. Input order
// does not matter except for duplicate IDs, where the later record wins
// (deterministic last-write-wins, reported as a diagnostic). Posts with an
// empty ID or zero scheduled time are skipped and reported rather than
// aborting the build. Unknown platform strings pass through untouched.
func BuildIndex(posts []models.ScheduledPost, loc *time.Location, opts BuildOptions) (*Index, BuildReport) {
	ix := NewIndex(loc)
	var report BuildReport

	for _, post := range posts {
		switch {
		case post.ID == "":
			report.Skipped = append(report.Skipped, SkippedPost{Reason: "missing id"})
			continue
		case post.ScheduledAt.IsZero():
			report.Skipped = append(report.Skipped, SkippedPost{ID: post.ID, Reason: "missing scheduled time"})
			continue
		}

		if len(opts.Statuses) > 0 && !statusMatches(post.Status, opts.Statuses) {
			report.Filtered++
			continue
		}

		if _, ok := ix.dayByID[post.ID]; ok {
			report.Duplicates = append(report.Duplicates, post.ID)
		}
		ix.upsert(post)
	}

	report.Indexed = len(ix.dayByID)
	return ix, report
}

// Location returns the timezone the index buckets by
func (ix *Index) Location() *time.Location {
	return ix.loc
}

// Insert adds a post to its computed day bucket, keeping the bucket
// ordered. If a post with the same ID is already indexed it is removed from
// its old bucket first, which makes Insert double as the reschedule
// operation: a changed scheduled time moves the post, never mutates it in
// place.
func (ix *Index) Insert(post models.ScheduledPost) error {
	if post.ID == "" {
		return fmt.Errorf("insert: post has no id")
	}
	if post.ScheduledAt.IsZero() {
		return fmt.Errorf("insert: post %q has no scheduled time", post.ID)
	}
	ix.upsert(post)
	return nil
}

// Update re-buckets a post whose fields (possibly including its scheduled
// time) changed. Identical to Insert; it exists so call sites read as what
// they do.
func (ix *Index) Update(post models.ScheduledPost) error {
	return ix.Insert(post)
}

// Remove deletes the post with the given ID from wherever it sits and
// reports whether anything was removed. Removing an absent ID is a no-op,
// not an error: optimistic-UI cancel paths call Remove speculatively.
func (ix *Index) Remove(postID string) bool {
	day, ok := ix.dayByID[postID]
	if !ok {
		return false
	}

	bucket := ix.buckets[day]
	for i := range bucket {
		if bucket[i].ID == postID {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(ix.buckets, day)
	} else {
		ix.buckets[day] = bucket
	}
	delete(ix.dayByID, postID)
	return true
}

// PostsOnDay returns a copy of the day's bucket in scheduled order, or an
// empty slice for a day with no posts. It never fails.
func (ix *Index) PostsOnDay(day DayKey) []models.ScheduledPost {
	bucket := ix.buckets[day]
	out := make([]models.ScheduledPost, len(bucket))
	copy(out, bucket)
	return out
}

// CountOnDay returns the number of posts on a day without materializing
// the bucket, for the dot/badge indicators in month view.
func (ix *Index) CountOnDay(day DayKey) int {
	return len(ix.buckets[day])
}

// Len returns the total number of indexed posts
func (ix *Index) Len() int {
	return len(ix.dayByID)
}

// Days returns the day keys that currently have posts, in ascending order
func (ix *Index) Days() []DayKey {
	days := make([]DayKey, 0, len(ix.buckets))
	for day := range ix.buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// DayForPost returns the day a post is currently bucketed under
func (ix *Index) DayForPost(postID string) (DayKey, bool) {
	day, ok := ix.dayByID[postID]
	return day, ok
}

// upsert places a post in its bucket at the sorted position, evicting any
// prior occurrence of the same ID first.
func (ix *Index) upsert(post models.ScheduledPost) {
	ix.Remove(post.ID)

	day := DayOf(post.ScheduledAt, ix.loc)
	bucket := ix.buckets[day]

	pos := sort.Search(len(bucket), func(i int) bool {
		return !postLess(bucket[i], post)
	})

	bucket = append(bucket, models.ScheduledPost{})
	copy(bucket[pos+1:], bucket[pos:])
	bucket[pos] = post

	ix.buckets[day] = bucket
	ix.dayByID[post.ID] = day
}

// postLess orders buckets: scheduled time ascending, ties by ID ascending.
// Instants are compared absolutely, so posts in mixed source timezones
// still order deterministically.
func postLess(a, b models.ScheduledPost) bool {
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	return a.ID < b.ID
}

func statusMatches(status models.PostStatus, allowed []models.PostStatus) bool {
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	return false
}
