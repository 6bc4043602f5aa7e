package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/shared/blob"
	"github.com/inkwell-blog/inkwell/shared/db/sqlite"
)

// Both repository implementations satisfy the same contract; every test in
// this file runs against each of them.
func testRepositories(t *testing.T) map[string]domain.PostRepository {
	t.Helper()

	sqlDB, err := sqlite.Open(&sqlite.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return map[string]domain.PostRepository{
		"sqlite": NewSQLitePostRepository(sqlDB),
		"blob":   NewBlobPostRepository(blob.NewMemStore()),
	}
}

func newTestPost(id, slug string) *domain.Post {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Post{
		ID:        id,
		Slug:      slug,
		Title:     "Test Post",
		Summary:   "S",
		Content:   "<p>body</p>",
		Author:    "author@example.com",
		Tags:      "go,blog",
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPostRepository_CreateAndGet(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			post := newTestPost("p1", "test-post")

			if err := repo.Create(ctx, post); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			byID, err := repo.GetByID(ctx, "p1")
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			if byID.Title != post.Title || byID.Content != post.Content || byID.Slug != post.Slug {
				t.Errorf("GetByID returned %+v, want %+v", byID, post)
			}
			if !byID.Published {
				t.Error("post lost its published flag")
			}
			if !byID.CreatedAt.Equal(byID.UpdatedAt) {
				t.Errorf("fresh post has created_at %v != updated_at %v", byID.CreatedAt, byID.UpdatedAt)
			}

			bySlug, err := repo.GetBySlug(ctx, "test-post")
			if err != nil {
				t.Fatalf("GetBySlug failed: %v", err)
			}
			if bySlug.ID != "p1" {
				t.Errorf("GetBySlug returned post %s, want p1", bySlug.ID)
			}
		})
	}
}

func TestPostRepository_GetMissing(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("GetByID got %v, want ErrNotFound", err)
			}
			if _, err := repo.GetBySlug(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("GetBySlug got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestPostRepository_DuplicateSlugRejected(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := repo.Create(ctx, newTestPost("p1", "same-slug")); err != nil {
				t.Fatalf("first Create failed: %v", err)
			}

			err := repo.Create(ctx, newTestPost("p2", "same-slug"))
			if !domain.IsValidation(err) {
				t.Errorf("second Create got %v, want ValidationError", err)
			}
		})
	}
}

func TestPostRepository_ListPublished(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			older := newTestPost("p1", "older")
			older.CreatedAt = older.CreatedAt.Add(-time.Hour)
			older.UpdatedAt = older.CreatedAt

			newer := newTestPost("p2", "newer")

			draft := newTestPost("p3", "draft")
			draft.Published = false

			for _, p := range []*domain.Post{older, newer, draft} {
				if err := repo.Create(ctx, p); err != nil {
					t.Fatalf("Create %s failed: %v", p.ID, err)
				}
			}

			summaries, err := repo.ListPublished(ctx)
			if err != nil {
				t.Fatalf("ListPublished failed: %v", err)
			}

			if len(summaries) != 2 {
				t.Fatalf("got %d summaries, want 2", len(summaries))
			}
			if summaries[0].ID != "p2" || summaries[1].ID != "p1" {
				t.Errorf("got order [%s %s], want [p2 p1]", summaries[0].ID, summaries[1].ID)
			}
		})
	}
}

func TestPostRepository_UpdatePreservesUnspecifiedFields(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			post := newTestPost("p1", "keep-slug")
			if err := repo.Create(ctx, post); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			updated, err := repo.Update(ctx, "p1", &domain.PostUpdate{Title: strPtr("New Title")})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}

			if updated.Title != "New Title" {
				t.Errorf("got title %q, want New Title", updated.Title)
			}
			if updated.Summary != "S" {
				t.Errorf("summary changed to %q, want S", updated.Summary)
			}
			if updated.Slug != "keep-slug" {
				t.Errorf("slug changed to %q", updated.Slug)
			}
			if !updated.CreatedAt.Equal(post.CreatedAt) {
				t.Errorf("created_at changed from %v to %v", post.CreatedAt, updated.CreatedAt)
			}
			if !updated.UpdatedAt.After(post.UpdatedAt) {
				t.Errorf("updated_at did not advance: %v", updated.UpdatedAt)
			}
		})
	}
}

func TestPostRepository_UpdateMissing(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Update(context.Background(), "nope", &domain.PostUpdate{Title: strPtr("T")})
			if !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestPostRepository_UpdateAppendsRevisionOnBodyChange(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := repo.Create(ctx, newTestPost("p1", "rev-post")); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			// metadata-only update: no revision
			if _, err := repo.Update(ctx, "p1", &domain.PostUpdate{Title: strPtr("T2")}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}

			revs, err := repo.Revisions(ctx, "p1")
			if err != nil {
				t.Fatalf("Revisions failed: %v", err)
			}
			if len(revs) != 0 {
				t.Fatalf("got %d revisions after metadata update, want 0", len(revs))
			}

			if _, err := repo.Update(ctx, "p1", &domain.PostUpdate{Content: strPtr("<p>v2</p>")}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if _, err := repo.Update(ctx, "p1", &domain.PostUpdate{Content: strPtr("<p>v3</p>")}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}

			revs, err = repo.Revisions(ctx, "p1")
			if err != nil {
				t.Fatalf("Revisions failed: %v", err)
			}
			if len(revs) != 2 {
				t.Fatalf("got %d revisions, want 2", len(revs))
			}
			if revs[0].Content != "<p>v2</p>" || revs[1].Content != "<p>v3</p>" {
				t.Errorf("revisions out of order: [%q %q]", revs[0].Content, revs[1].Content)
			}
		})
	}
}

func TestPostRepository_UpdateSlugMovesLookup(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := repo.Create(ctx, newTestPost("p1", "old-slug")); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			if _, err := repo.Update(ctx, "p1", &domain.PostUpdate{Slug: strPtr("new-slug")}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}

			if _, err := repo.GetBySlug(ctx, "new-slug"); err != nil {
				t.Errorf("GetBySlug(new-slug) failed: %v", err)
			}
			if _, err := repo.GetBySlug(ctx, "old-slug"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("GetBySlug(old-slug) got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestPostRepository_UnpublishViaUpdate(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := repo.Create(ctx, newTestPost("p1", "to-hide")); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			if _, err := repo.Update(ctx, "p1", &domain.PostUpdate{Published: boolPtr(false)}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}

			summaries, err := repo.ListPublished(ctx)
			if err != nil {
				t.Fatalf("ListPublished failed: %v", err)
			}
			if len(summaries) != 0 {
				t.Errorf("unpublished post still listed: %v", summaries)
			}
		})
	}
}

func TestPostRepository_DeleteIsTerminal(t *testing.T) {
	for name, repo := range testRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := repo.Create(ctx, newTestPost("p1", "doomed")); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			if err := repo.Delete(ctx, "p1"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}

			if _, err := repo.GetByID(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("GetByID after delete got %v, want ErrNotFound", err)
			}
			if _, err := repo.GetBySlug(ctx, "doomed"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("GetBySlug after delete got %v, want ErrNotFound", err)
			}

			// repeated delete never reports a second success
			if err := repo.Delete(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("second Delete got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSlugViolationDetection(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"slug collision", errors.New("constraint failed: UNIQUE constraint failed: posts.slug (2067)"), true},
		{"other unique index", errors.New("constraint failed: UNIQUE constraint failed: posts.id (1555)"), false},
		{"not null", errors.New("constraint failed: NOT NULL constraint failed: posts.title (1299)"), false},
		{"foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isSlugViolation(tc.err); got != tc.want {
				t.Errorf("isSlugViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
