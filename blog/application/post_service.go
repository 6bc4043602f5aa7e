package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/shared/cache"
)

// listCacheKey matches the original cache entry name so a deployed cache
// survives the cutover.
const listCacheKey = "posts_list_v1"

// PostService owns the post lifecycle: validation, slug derivation, revision
// side effects (delegated to the repository) and keeping the list cache in
// step with every mutation.
type PostService struct {
	repo    domain.PostRepository
	cache   cache.Cache
	listTTL time.Duration
}

func NewPostService(repo domain.PostRepository, listCache cache.Cache, listTTL time.Duration) *PostService {
	return &PostService{
		repo:    repo,
		cache:   listCache,
		listTTL: listTTL,
	}
}

// listEntry is the cached projection of a published post.
type listEntry struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Author    string    `json:"author"`
	Tags      string    `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

// ListPublished returns the serialized published-post list, served from the
// cache when warm. The cached value is the final JSON array; handlers write
// it to the wire untouched.
func (s *PostService) ListPublished(ctx context.Context) (json.RawMessage, error) {
	return s.cache.GetOrPopulate(ctx, listCacheKey, s.listTTL, func() ([]byte, error) {
		summaries, err := s.repo.ListPublished(ctx)
		if err != nil {
			return nil, err
		}

		entries := make([]listEntry, 0, len(summaries))
		for _, sum := range summaries {
			entries = append(entries, listEntry{
				ID:        sum.ID,
				Slug:      sum.Slug,
				Title:     sum.Title,
				Summary:   sum.Summary,
				Author:    sum.Author,
				Tags:      sum.Tags,
				Published: sum.Published,
				CreatedAt: sum.CreatedAt,
			})
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize post list: %w", err)
		}
		return data, nil
	})
}

// GetPost resolves a post by slug first, then by id, so both public URL forms
// work through one lookup path.
func (s *PostService) GetPost(ctx context.Context, slugOrID string) (*domain.Post, error) {
	post, err := s.repo.GetBySlug(ctx, slugOrID)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return s.repo.GetByID(ctx, slugOrID)
}

// CreatePostInput carries the validated-to-be fields of a new post. Author
// comes from the authenticated identity, never from the request body.
type CreatePostInput struct {
	Title       string
	Content     string
	Slug        string
	Summary     string
	Author      string
	Tags        string
	Published   *bool
	ScheduledAt *time.Time
}

// CreatePost validates input, derives the slug and summary when absent, and
// persists the post. The list cache is invalidated after the write commits.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.NewValidationError("body", "must not be empty")
	}

	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if slug == "" {
		return nil, domain.NewValidationError("slug", "title yields an empty slug; supply one explicitly")
	}

	summary := in.Summary
	if summary == "" {
		summary = ExtractSummary(in.Content)
	}

	published := true
	if in.Published != nil {
		published = *in.Published
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:          uuid.NewString(),
		Slug:        slug,
		Title:       in.Title,
		Summary:     summary,
		Content:     in.Content,
		Author:      in.Author,
		Tags:        in.Tags,
		Published:   published,
		ScheduledAt: in.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return post, nil
}

// UpdatePost applies a partial update and invalidates the list cache. The
// target may be addressed by slug or by id, like reads.
func (s *PostService) UpdatePost(ctx context.Context, slugOrID string, upd *domain.PostUpdate) (*domain.Post, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return nil, domain.NewValidationError("body", "must not be empty")
	}
	if upd.Slug != nil && *upd.Slug == "" {
		return nil, domain.NewValidationError("slug", "must not be empty")
	}

	current, err := s.GetPost(ctx, slugOrID)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Update(ctx, current.ID, upd)
	if err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return post, nil
}

// DeletePost removes a post and invalidates the list cache. Media referenced
// by the post is never collected; uploads are append-only.
func (s *PostService) DeletePost(ctx context.Context, slugOrID string) error {
	current, err := s.GetPost(ctx, slugOrID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return err
	}

	s.invalidateList(ctx)
	return nil
}

// Revisions lists a post's body history, oldest first.
func (s *PostService) Revisions(ctx context.Context, slugOrID string) ([]*domain.Revision, error) {
	current, err := s.GetPost(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	return s.repo.Revisions(ctx, current.ID)
}

func (s *PostService) invalidateList(ctx context.Context) {
	// a failed invalidation means stale reads for up to a TTL; loud, not fatal
	if err := s.cache.Invalidate(ctx, listCacheKey); err != nil {
		log.Error().Err(err).Msg("failed to invalidate post list cache")
	}
}
