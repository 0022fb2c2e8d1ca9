// Package store persists scheduled posts in Postgres. It is the post-fetch
// collaborator for the calendar engine: handlers pull a time range from
// here and hand the rows to the bucketer.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/models"
)

// ErrNotFound is returned when a post does not exist
var ErrNotFound = fmt.Errorf("post not found")

// ErrNotCancellable is returned when cancellation is requested for a post
// that already left the pending state.
var ErrNotCancellable = fmt.Errorf("post is not pending")

const postColumns = `id, content, scheduled_at, targets, status, media_urls, error, created_at, updated_at`

// PostStore provides CRUD over scheduled posts
type PostStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewPostStore creates a store backed by the given connection
func NewPostStore(db *sql.DB, logger logging.Logger) *PostStore {
	return &PostStore{db: db, logger: logger}
}

// CreatePost inserts a new pending post and returns it with generated
// fields populated.
func (s *PostStore) CreatePost(ctx context.Context, req models.SchedulePostRequest) (models.ScheduledPost, error) {
	post := models.ScheduledPost{
		ID:          uuid.New().String(),
		Content:     req.Content,
		ScheduledAt: req.ScheduledFor.UTC(),
		Targets:     req.Targets,
		Status:      models.PostStatusPending,
		MediaURLs:   req.MediaURLs,
	}

	query := `
		INSERT INTO scheduled_posts (id, content, scheduled_at, targets, status, media_urls)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		post.ID, post.Content, post.ScheduledAt, post.Targets, post.Status, pq.Array(post.MediaURLs),
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return models.ScheduledPost{}, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

// GetPost fetches a single post by ID
func (s *PostStore) GetPost(ctx context.Context, id string) (models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE id = $1`
	post, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return models.ScheduledPost{}, ErrNotFound
	}
	if err != nil {
		return models.ScheduledPost{}, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ListPosts returns all posts ordered by scheduled time
func (s *PostStore) ListPosts(ctx context.Context) ([]models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts ORDER BY scheduled_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListPostsInRange returns posts with scheduled_at in [from, to), ordered
// by scheduled time. The calendar handler uses this to fetch exactly the
// month window it is about to bucket.
func (s *PostStore) ListPostsInRange(ctx context.Context, from, to time.Time) ([]models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + `
		FROM scheduled_posts
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts in range: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// CancelPost flips a pending post to cancelled and returns the updated
// row. Only pending posts are cancellable; published/failed posts already
// left the queue, and cancelling twice is a conflict the dashboard should
// hear about.
func (s *PostStore) CancelPost(ctx context.Context, id string) (models.ScheduledPost, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING ` + postColumns
	post, err := scanPost(s.db.QueryRowContext(ctx, query, models.PostStatusCancelled, id, models.PostStatusPending))
	if err == sql.ErrNoRows {
		// Distinguish a missing post from a non-pending one.
		if _, getErr := s.GetPost(ctx, id); getErr == ErrNotFound {
			return models.ScheduledPost{}, ErrNotFound
		} else if getErr != nil {
			return models.ScheduledPost{}, getErr
		}
		return models.ScheduledPost{}, ErrNotCancellable
	}
	if err != nil {
		return models.ScheduledPost{}, fmt.Errorf("failed to cancel post: %w", err)
	}
	return post, nil
}

// UpdateStatus records a dispatcher outcome for a post. errMsg is stored
// for failed posts and cleared otherwise.
func (s *PostStore) UpdateStatus(ctx context.Context, id string, status models.PostStatus, errMsg string) error {
	var errValue interface{}
	if errMsg != "" {
		errValue = errMsg
	}

	query := `
		UPDATE scheduled_posts
		SET status = $1, error = $2, updated_at = now()
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, status, errValue, id)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (models.ScheduledPost, error) {
	var post models.ScheduledPost
	var errMsg sql.NullString
	err := row.Scan(
		&post.ID, &post.Content, &post.ScheduledAt, &post.Targets,
		&post.Status, pq.Array(&post.MediaURLs), &errMsg,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return post, err
	}
	if errMsg.Valid {
		post.Error = &errMsg.String
	}
	return post, nil
}

func collectPosts(rows *sql.Rows) ([]models.ScheduledPost, error) {
	posts := make([]models.ScheduledPost, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}
