package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/shared/db"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// SQLitePostRepository implements domain.PostRepository on a relational
// posts/revisions schema (SQLite).
type SQLitePostRepository struct {
	db *sql.DB
}

// NewSQLitePostRepository creates a repository from a standard sql.DB
func NewSQLitePostRepository(sqlDB *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db: sqlDB,
	}
}

const listPublishedQuery = `
	SELECT id, slug, title, summary, author, tags, published, created_at
	FROM posts
	WHERE published = 1
	ORDER BY created_at DESC
`

// ListPublished retrieves published post summaries, newest first.
func (r *SQLitePostRepository) ListPublished(ctx context.Context) ([]*domain.PostSummary, error) {
	rows, err := r.db.QueryContext(ctx, listPublishedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	defer rows.Close()

	summaries := make([]*domain.PostSummary, 0)
	for rows.Next() {
		var row summaryRow
		err := rows.Scan(
			&row.ID,
			&row.Slug,
			&row.Title,
			&row.Summary,
			&row.Author,
			&row.Tags,
			&row.Published,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		summaries = append(summaries, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return summaries, nil
}

const getPostQuery = `
	SELECT id, slug, title, summary, content, author, tags, published, scheduled_at, created_at, updated_at
	FROM posts
	WHERE %s = ?
`

// GetBySlug retrieves a single full post by slug.
func (r *SQLitePostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	return r.getBy(ctx, "slug", slug)
}

// GetByID retrieves a single full post by id.
func (r *SQLitePostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return r.getBy(ctx, "id", id)
}

func (r *SQLitePostRepository) getBy(ctx context.Context, column, value string) (*domain.Post, error) {
	var row postRow
	executor := db.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, fmt.Sprintf(getPostQuery, column), value).Scan(
		&row.ID,
		&row.Slug,
		&row.Title,
		&row.Summary,
		&row.Content,
		&row.Author,
		&row.Tags,
		&row.Published,
		&row.ScheduledAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get post by %s: %w", column, err)
	}

	return row.toDomain(), nil
}

const insertPostQuery = `
	INSERT INTO posts (id, slug, title, summary, content, author, tags, published, scheduled_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Create inserts a new post row. A duplicate slug trips the unique index and
// surfaces as a ValidationError.
func (r *SQLitePostRepository) Create(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	_, err := r.db.ExecContext(ctx, insertPostQuery,
		p.ID,
		p.Slug,
		p.Title,
		p.Summary,
		p.Content,
		p.Author,
		p.Tags,
		p.Published,
		p.ScheduledAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return domain.NewValidationError("slug", fmt.Sprintf("%q is already in use", p.Slug))
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

const updatePostQuery = `
	UPDATE posts
	SET slug = ?, title = ?, summary = ?, content = ?, author = ?, tags = ?, published = ?, scheduled_at = ?, updated_at = ?
	WHERE id = ?
`

const insertRevisionQuery = `
	INSERT INTO revisions (post_id, content, created_at)
	VALUES (?, ?, ?)
`

// Update merges upd over the stored post, preserving created_at and any field
// not present, and appends a revision when the body changed. The read, write
// and revision insert run in one transaction.
func (r *SQLitePostRepository) Update(ctx context.Context, id string, upd *domain.PostUpdate) (*domain.Post, error) {
	if upd == nil {
		return nil, fmt.Errorf("update cannot be nil")
	}

	var updated *domain.Post
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		current, err := r.getBy(txCtx, "id", id)
		if err != nil {
			return err
		}

		merged := mergeUpdate(current, upd)
		merged.UpdatedAt = time.Now().UTC()

		executor := db.GetExecutor(txCtx, r.db)
		_, err = executor.ExecContext(txCtx, updatePostQuery,
			merged.Slug,
			merged.Title,
			merged.Summary,
			merged.Content,
			merged.Author,
			merged.Tags,
			merged.Published,
			merged.ScheduledAt,
			merged.UpdatedAt,
			id,
		)
		if err != nil {
			if isSlugViolation(err) {
				return domain.NewValidationError("slug", fmt.Sprintf("%q is already in use", merged.Slug))
			}
			return fmt.Errorf("failed to update post: %w", err)
		}

		if merged.Content != current.Content {
			_, err = executor.ExecContext(txCtx, insertRevisionQuery, id, merged.Content, merged.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to append revision: %w", err)
			}
		}

		updated = merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

const deletePostQuery = `
	DELETE FROM posts WHERE id = ?
`

// Delete removes a post row; revisions cascade with it.
func (r *SQLitePostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deletePostQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

const listRevisionsQuery = `
	SELECT post_id, content, created_at
	FROM revisions
	WHERE post_id = ?
	ORDER BY created_at ASC, id ASC
`

// Revisions lists a post's body history, oldest first.
func (r *SQLitePostRepository) Revisions(ctx context.Context, postID string) ([]*domain.Revision, error) {
	rows, err := r.db.QueryContext(ctx, listRevisionsQuery, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	revisions := make([]*domain.Revision, 0)
	for rows.Next() {
		rev := &domain.Revision{}
		if err := rows.Scan(&rev.PostID, &rev.Content, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision row: %w", err)
		}
		revisions = append(revisions, rev)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revision rows: %w", err)
	}

	return revisions, nil
}

// mergeUpdate applies non-nil fields of upd over current.
func mergeUpdate(current *domain.Post, upd *domain.PostUpdate) *domain.Post {
	merged := *current

	if upd.Slug != nil {
		merged.Slug = *upd.Slug
	}
	if upd.Title != nil {
		merged.Title = *upd.Title
	}
	if upd.Summary != nil {
		merged.Summary = *upd.Summary
	}
	if upd.Content != nil {
		merged.Content = *upd.Content
	}
	if upd.Tags != nil {
		merged.Tags = *upd.Tags
	}
	if upd.Published != nil {
		merged.Published = *upd.Published
	}
	if upd.ScheduledAt != nil {
		merged.ScheduledAt = upd.ScheduledAt
	}
	if upd.Author != "" {
		merged.Author = upd.Author
	}

	return &merged
}

// isSlugViolation detects a slug collision without importing driver
// internals; modernc reports the violated column in the error text. Other
// constraint failures stay plain errors.
func isSlugViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug")
}

// postRow is a private struct used to scan database rows
type postRow struct {
	ID          string
	Slug        string
	Title       string
	Summary     string
	Content     string
	Author      string
	Tags        string
	Published   bool
	ScheduledAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:        pr.ID,
		Slug:      pr.Slug,
		Title:     pr.Title,
		Summary:   pr.Summary,
		Content:   pr.Content,
		Author:    pr.Author,
		Tags:      pr.Tags,
		Published: pr.Published,
		CreatedAt: pr.CreatedAt,
		UpdatedAt: pr.UpdatedAt,
	}

	if pr.ScheduledAt.Valid {
		t := pr.ScheduledAt.Time
		post.ScheduledAt = &t
	}

	return post
}

// summaryRow scans the list projection.
type summaryRow struct {
	ID        string
	Slug      string
	Title     string
	Summary   string
	Author    string
	Tags      string
	Published bool
	CreatedAt time.Time
}

func (sr *summaryRow) toDomain() *domain.PostSummary {
	return &domain.PostSummary{
		ID:        sr.ID,
		Slug:      sr.Slug,
		Title:     sr.Title,
		Summary:   sr.Summary,
		Author:    sr.Author,
		Tags:      sr.Tags,
		Published: sr.Published,
		CreatedAt: sr.CreatedAt,
	}
}
