package api

import (
	"time"

	"github.com/inkwell-blog/inkwell/blog/domain"
)

// Post is the wire shape of a full post.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"content_html,omitempty"`
	Author      string     `json:"author"`
	Tags        string     `json:"tags"`
	Published   bool       `json:"published"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PostProto is the request body for creating a post. Slug and Summary are
// derived from the title and body when left empty.
type PostProto struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Tags        string     `json:"tags"`
	Published   *bool      `json:"published"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// PostPatch is the request body for updating a post; every field is optional
// and absent fields keep their stored value.
type PostPatch struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	Slug        *string    `json:"slug"`
	Summary     *string    `json:"summary"`
	Tags        *string    `json:"tags"`
	Published   *bool      `json:"published"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Revision is the wire shape of a body snapshot.
type Revision struct {
	PostID    string    `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload is the response to a media upload.
type Upload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// FromDomain converts a domain post to its wire shape.
func FromDomain(p *domain.Post) *Post {
	return &Post{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Content:     p.Content,
		Author:      p.Author,
		Tags:        p.Tags,
		Published:   p.Published,
		ScheduledAt: p.ScheduledAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// RevisionFromDomain converts a domain revision to its wire shape.
func RevisionFromDomain(r *domain.Revision) *Revision {
	return &Revision{
		PostID:    r.PostID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}
