package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/shared/blob"
)

var _ domain.PostRepository = (*BlobPostRepository)(nil)

// BlobPostRepository implements domain.PostRepository on a plain object
// store. Each post is a pair of entries, metadata and body:
//
//	posts/<id>/meta.json
//	posts/<id>/content.html
//	posts/<id>/revisions/<rfc3339nano>
//	slugs/<slug>                       -> post id
//
// The slugs/ prefix is a secondary index kept in step with every write so
// slug lookups stay a single read instead of a listing scan. Metadata is
// written after the body: a body without metadata is the detectable shape of
// an interrupted write and is invisible to all public reads.
type BlobPostRepository struct {
	store blob.Store
}

func NewBlobPostRepository(store blob.Store) *BlobPostRepository {
	return &BlobPostRepository{
		store: store,
	}
}

const (
	metaContentType = "application/json"
	bodyContentType = "text/html"
)

// postMeta is the stored metadata half of a post: everything but the body.
type postMeta struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Author      string     `json:"author"`
	Tags        string     `json:"tags"`
	Published   bool       `json:"published"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func metaKey(id string) string      { return "posts/" + id + "/meta.json" }
func contentKey(id string) string   { return "posts/" + id + "/content.html" }
func revisionsKey(id string) string { return "posts/" + id + "/revisions/" }
func slugKey(slug string) string    { return "slugs/" + slug }

func (r *BlobPostRepository) ListPublished(ctx context.Context) ([]*domain.PostSummary, error) {
	keys, err := r.store.List(ctx, "posts/")
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	summaries := make([]*domain.PostSummary, 0)
	for _, key := range keys {
		if path.Base(key) != "meta.json" {
			continue
		}

		meta, err := r.readMetaAt(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // deleted between list and read
			}
			return nil, err
		}
		if !meta.Published {
			continue
		}

		summaries = append(summaries, &domain.PostSummary{
			ID:        meta.ID,
			Slug:      meta.Slug,
			Title:     meta.Title,
			Summary:   meta.Summary,
			Author:    meta.Author,
			Tags:      meta.Tags,
			Published: meta.Published,
			CreatedAt: meta.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

func (r *BlobPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}

	idBytes, _, err := r.store.Get(ctx, slugKey(slug))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve slug %s: %w", slug, err)
	}

	return r.GetByID(ctx, string(idBytes))
}

func (r *BlobPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}

	meta, err := r.readMetaAt(ctx, metaKey(id))
	if err != nil {
		return nil, err
	}

	content, _, err := r.store.Get(ctx, contentKey(id))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// metadata without a body: the inverse of an interrupted create,
			// surfaced rather than papered over
			return nil, fmt.Errorf("post %s has metadata but no body", id)
		}
		return nil, fmt.Errorf("failed to read post body %s: %w", id, err)
	}

	return metaToPost(meta, string(content)), nil
}

func (r *BlobPostRepository) Create(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	// best-effort uniqueness: concurrent creates of the same slug race, and
	// the last index write wins (single-author deployment assumption)
	if _, _, err := r.store.Get(ctx, slugKey(p.Slug)); err == nil {
		return domain.NewValidationError("slug", fmt.Sprintf("%q is already in use", p.Slug))
	} else if !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("failed to check slug %s: %w", p.Slug, err)
	}

	if err := r.store.Put(ctx, contentKey(p.ID), []byte(p.Content), bodyContentType); err != nil {
		return fmt.Errorf("failed to write post body: %w", err)
	}

	if err := r.writeMeta(ctx, postToMeta(p)); err != nil {
		return err
	}

	if err := r.store.Put(ctx, slugKey(p.Slug), []byte(p.ID), "text/plain"); err != nil {
		return fmt.Errorf("failed to write slug index: %w", err)
	}

	return nil
}

func (r *BlobPostRepository) Update(ctx context.Context, id string, upd *domain.PostUpdate) (*domain.Post, error) {
	if upd == nil {
		return nil, fmt.Errorf("update cannot be nil")
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := mergeUpdate(current, upd)
	merged.UpdatedAt = time.Now().UTC()

	if merged.Slug != current.Slug {
		if _, _, err := r.store.Get(ctx, slugKey(merged.Slug)); err == nil {
			return nil, domain.NewValidationError("slug", fmt.Sprintf("%q is already in use", merged.Slug))
		} else if !errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("failed to check slug %s: %w", merged.Slug, err)
		}
	}

	if merged.Content != current.Content {
		revKey := revisionsKey(id) + merged.UpdatedAt.Format(time.RFC3339Nano)
		if err := r.store.Put(ctx, revKey, []byte(merged.Content), bodyContentType); err != nil {
			return nil, fmt.Errorf("failed to append revision: %w", err)
		}

		if err := r.store.Put(ctx, contentKey(id), []byte(merged.Content), bodyContentType); err != nil {
			return nil, fmt.Errorf("failed to write post body: %w", err)
		}
	}

	if err := r.writeMeta(ctx, postToMeta(merged)); err != nil {
		return nil, err
	}

	if merged.Slug != current.Slug {
		if err := r.store.Put(ctx, slugKey(merged.Slug), []byte(id), "text/plain"); err != nil {
			return nil, fmt.Errorf("failed to write slug index: %w", err)
		}
		if err := r.store.Delete(ctx, slugKey(current.Slug)); err != nil && !errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("failed to drop old slug index: %w", err)
		}
	}

	return merged, nil
}

func (r *BlobPostRepository) Delete(ctx context.Context, id string) error {
	meta, err := r.readMetaAt(ctx, metaKey(id))
	if err != nil {
		return err
	}

	// metadata goes first so public reads stop resolving the post before the
	// remaining entries disappear
	if err := r.store.Delete(ctx, metaKey(id)); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete post metadata: %w", err)
	}

	if err := r.store.Delete(ctx, slugKey(meta.Slug)); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("failed to delete slug index: %w", err)
	}

	if err := r.store.Delete(ctx, contentKey(id)); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("failed to delete post body: %w", err)
	}

	revKeys, err := r.store.List(ctx, revisionsKey(id))
	if err != nil {
		return fmt.Errorf("failed to list revisions: %w", err)
	}
	for _, key := range revKeys {
		if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("failed to delete revision %s: %w", key, err)
		}
	}

	return nil
}

func (r *BlobPostRepository) Revisions(ctx context.Context, postID string) ([]*domain.Revision, error) {
	keys, err := r.store.List(ctx, revisionsKey(postID))
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	revisions := make([]*domain.Revision, 0, len(keys))
	for _, key := range keys {
		content, _, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read revision %s: %w", key, err)
		}

		createdAt, err := time.Parse(time.RFC3339Nano, path.Base(key))
		if err != nil {
			return nil, fmt.Errorf("malformed revision key %s: %w", key, err)
		}

		revisions = append(revisions, &domain.Revision{
			PostID:    postID,
			Content:   string(content),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].CreatedAt.Before(revisions[j].CreatedAt)
	})

	return revisions, nil
}

func (r *BlobPostRepository) readMetaAt(ctx context.Context, key string) (*postMeta, error) {
	data, _, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read post metadata %s: %w", key, err)
	}

	meta := &postMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("failed to decode post metadata %s: %w", key, err)
	}

	return meta, nil
}

func (r *BlobPostRepository) writeMeta(ctx context.Context, meta *postMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode post metadata: %w", err)
	}

	if err := r.store.Put(ctx, metaKey(meta.ID), data, metaContentType); err != nil {
		return fmt.Errorf("failed to write post metadata: %w", err)
	}

	return nil
}

func postToMeta(p *domain.Post) *postMeta {
	return &postMeta{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Author:      p.Author,
		Tags:        p.Tags,
		Published:   p.Published,
		ScheduledAt: p.ScheduledAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func metaToPost(meta *postMeta, content string) *domain.Post {
	return &domain.Post{
		ID:          meta.ID,
		Slug:        meta.Slug,
		Title:       meta.Title,
		Summary:     meta.Summary,
		Content:     content,
		Author:      meta.Author,
		Tags:        meta.Tags,
		Published:   meta.Published,
		ScheduledAt: meta.ScheduledAt,
		CreatedAt:   meta.CreatedAt,
		UpdatedAt:   meta.UpdatedAt,
	}
}
