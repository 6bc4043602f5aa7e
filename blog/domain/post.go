package domain

import (
	"context"
	"time"
)

// Post represents a blog post.
// Content holds the rich-text body (HTML or Markdown) exactly as submitted;
// rendering happens at read time, never at rest.
type Post struct {
	ID          string
	Slug        string
	Title       string
	Summary     string
	Content     string
	Author      string
	Tags        string
	Published   bool
	ScheduledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summarize strips the body from a post for list views.
func (p *Post) Summarize() *PostSummary {
	return &PostSummary{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Summary:   p.Summary,
		Author:    p.Author,
		Tags:      p.Tags,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
	}
}

// PostSummary is the list-view projection of a post: everything but the body.
type PostSummary struct {
	ID        string
	Slug      string
	Title     string
	Summary   string
	Author    string
	Tags      string
	Published bool
	CreatedAt time.Time
}

// Revision is an immutable snapshot of a post's body, appended whenever the
// body changes. Revisions are never mutated and only disappear with their post.
type Revision struct {
	PostID    string
	Content   string
	CreatedAt time.Time
}

// PostUpdate is a partial update; nil fields keep the stored value.
type PostUpdate struct {
	Slug        *string
	Title       *string
	Summary     *string
	Content     *string
	Tags        *string
	Published   *bool
	ScheduledAt *time.Time
	Author      string
}

type PostRepository interface {
	// ListPublished returns summaries of published posts, newest first.
	ListPublished(ctx context.Context) ([]*PostSummary, error)

	// GetBySlug retrieves a full post by its slug.
	GetBySlug(ctx context.Context, slug string) (*Post, error)

	// GetByID retrieves a full post by its identifier.
	GetByID(ctx context.Context, id string) (*Post, error)

	// Create persists a new post. ID, timestamps and slug must already be set
	// by the caller; the repository stores the post as given.
	Create(ctx context.Context, p *Post) error

	// Update applies a partial update, preserving CreatedAt and any field not
	// present in upd, and appends a Revision when the body changed.
	Update(ctx context.Context, id string, upd *PostUpdate) (*Post, error)

	// Delete removes a post's metadata and body together. Deleting an absent
	// post returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Revisions lists a post's body history, oldest first.
	Revisions(ctx context.Context, postID string) ([]*Revision, error)
}
