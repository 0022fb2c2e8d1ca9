package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/models"
)

func newMockStore(t *testing.T) (*PostStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewPostStore(db, logging.NewLogger()), mock, func() { db.Close() }
}

func postRow(id string, at time.Time, status models.PostStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "content", "scheduled_at", "targets", "status", "media_urls", "error", "created_at", "updated_at",
	}).AddRow(
		id, "hello", at, []byte(`[{"platform":"twitter","account_id":"acct-1"}]`),
		string(status), pq.Array([]string{}), nil, now, now,
	)
}

func TestCreatePost(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO scheduled_posts").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	req := models.SchedulePostRequest{
		Content:      "hello",
		ScheduledFor: time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC),
		Targets:      models.PostTargets{{Platform: "twitter", AccountID: "acct-1"}},
	}

	post, err := s.CreatePost(context.Background(), req)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.ID == "" {
		t.Fatalf("expected generated post id")
	}
	if post.Status != models.PostStatusPending {
		t.Fatalf("expected pending status, got %s", post.Status)
	}
	if !post.ScheduledAt.Equal(req.ScheduledFor) {
		t.Fatalf("scheduled time mismatch")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("FROM scheduled_posts WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.GetPost(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsInRange(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery("WHERE scheduled_at >= .* AND scheduled_at <").
		WithArgs(from, to).
		WillReturnRows(postRow("p1", from.Add(12*time.Hour), models.PostStatusPending))

	posts, err := s.ListPostsInRange(context.Background(), from, to)
	if err != nil {
		t.Fatalf("ListPostsInRange returned error: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "p1" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if len(posts[0].Targets) != 1 || posts[0].Targets[0].Platform != "twitter" {
		t.Fatalf("targets column not decoded: %+v", posts[0].Targets)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelPost(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	at := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE scheduled_posts").
		WithArgs(string(models.PostStatusCancelled), "p1", string(models.PostStatusPending)).
		WillReturnRows(postRow("p1", at, models.PostStatusCancelled))

	post, err := s.CancelPost(context.Background(), "p1")
	if err != nil {
		t.Fatalf("CancelPost returned error: %v", err)
	}
	if post.Status != models.PostStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", post.Status)
	}
}

func TestCancelPostNotPending(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	at := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE scheduled_posts").
		WithArgs(string(models.PostStatusCancelled), "p1", string(models.PostStatusPending)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM scheduled_posts WHERE id").
		WithArgs("p1").
		WillReturnRows(postRow("p1", at, models.PostStatusPublished))

	if _, err := s.CancelPost(context.Background(), "p1"); err != ErrNotCancellable {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
}

func TestCancelPostMissing(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("UPDATE scheduled_posts").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM scheduled_posts WHERE id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.CancelPost(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec("UPDATE scheduled_posts").
		WithArgs(string(models.PostStatusFailed), "rate limited", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.UpdateStatus(context.Background(), "p1", models.PostStatusFailed, "rate limited"); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
}

func TestUpdateStatusMissingPost(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec("UPDATE scheduled_posts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdateStatus(context.Background(), "ghost", models.PostStatusPublished, ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
