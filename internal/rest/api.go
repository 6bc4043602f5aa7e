package rest

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/blog/application"
	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/internal/middleware"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	posts    *application.PostService
	media    domain.MediaStore
	renderer application.Renderer
}

func NewHandler(posts *application.PostService, media domain.MediaStore, renderer application.Renderer) *Handler {
	return &Handler{
		posts:    posts,
		media:    media,
		renderer: renderer,
	}
}

// NewRouter builds the gin engine: CORS (including OPTIONS preflight),
// request logging, panic recovery, and the route table. identityHeader names
// the header the upstream proxy injects for admin routes.
func NewRouter(h *Handler, identityHeader string) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger())
	engine.Use(gin.CustomRecovery(middleware.HandlePanics()))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", identityHeader}
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	requireIdentity := middleware.RequireIdentity(identityHeader)

	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/posts", h.GetPosts)
		apiGroup.GET("/post/:slugOrId", h.GetPost)

		apiGroup.POST("/post", requireIdentity, h.CreatePost)
		apiGroup.PUT("/post/:slugOrId", requireIdentity, h.UpdatePost)
		apiGroup.DELETE("/post/:slugOrId", requireIdentity, h.DeletePost)
		apiGroup.GET("/post/:slugOrId/revisions", requireIdentity, h.GetRevisions)

		apiGroup.POST("/admin/upload", requireIdentity, h.Upload)
	}

	engine.GET("/media/*key", h.GetMedia)

	return engine
}
