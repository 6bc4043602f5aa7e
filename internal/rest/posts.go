package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/api"
	"github.com/inkwell-blog/inkwell/blog/application"
	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/internal/middleware"
)

// GetPosts serves the published-post list. The body comes pre-serialized
// from the list cache.
func (h *Handler) GetPosts(c *gin.Context) {
	list, err := h.posts.ListPublished(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", list)
}

// GetPost serves a full post by slug or id. With ?render=html the response
// additionally carries the body rendered to HTML.
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("slugOrId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := api.FromDomain(post)
	if c.Query("render") == "html" {
		rendered, err := h.renderer.Render(post.Content)
		if err != nil {
			abortWithError(c, err)
			return
		}
		out.ContentHTML = rendered
	}

	c.JSON(http.StatusOK, out)
}

// CreatePost creates a post from the request body. The author is the
// authenticated identity, never a body field.
func (h *Handler) CreatePost(c *gin.Context) {
	proto := &api.PostProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		badRequest(c, "malformed request body: "+err.Error())
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), application.CreatePostInput{
		Title:       proto.Title,
		Content:     proto.Content,
		Slug:        proto.Slug,
		Summary:     proto.Summary,
		Author:      middleware.Identity(c),
		Tags:        proto.Tags,
		Published:   proto.Published,
		ScheduledAt: proto.ScheduledAt,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FromDomain(post))
}

// UpdatePost applies a partial update to a post by id.
func (h *Handler) UpdatePost(c *gin.Context) {
	patch := &api.PostPatch{}
	if err := c.ShouldBindJSON(patch); err != nil {
		badRequest(c, "malformed request body: "+err.Error())
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), c.Param("slugOrId"), &domain.PostUpdate{
		Title:       patch.Title,
		Content:     patch.Content,
		Slug:        patch.Slug,
		Summary:     patch.Summary,
		Tags:        patch.Tags,
		Published:   patch.Published,
		ScheduledAt: patch.ScheduledAt,
		Author:      middleware.Identity(c),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FromDomain(post))
}

// DeletePost removes a post by id.
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.posts.DeletePost(c.Request.Context(), c.Param("slugOrId")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetRevisions lists a post's body history, oldest first.
func (h *Handler) GetRevisions(c *gin.Context) {
	revisions, err := h.posts.Revisions(c.Request.Context(), c.Param("slugOrId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]*api.Revision, 0, len(revisions))
	for _, rev := range revisions {
		out = append(out, api.RevisionFromDomain(rev))
	}

	c.JSON(http.StatusOK, out)
}
