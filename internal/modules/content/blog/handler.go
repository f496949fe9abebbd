package blog

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/middleware"
	"github.com/kautilyalaw/core/internal/modules/markdown"
	"github.com/kautilyalaw/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handler handles blog HTTP requests.
type Handler struct {
	svc *Service
	rdb *redis.Client
}

func NewHandler(svc *Service, rdb *redis.Client) *Handler {
	return &Handler{svc: svc, rdb: rdb}
}

// RegisterRoutes mounts public reads and admin mutations.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/blogs", h.list)
	public.GET("/blogs/:id", h.get)
	public.GET("/blogs/:id/structure", h.structure)

	admin.POST("/blogs", h.create)
	admin.PUT("/blogs/:id", h.update)
	admin.DELETE("/blogs/:id", h.delete)
}

// list GET /blogs
func (h *Handler) list(c *gin.Context) {
	blogs, err := h.svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]blogResponse, len(blogs))
	for i := range blogs {
		// Listings carry raw content only; HTML renders on the detail read.
		items[i] = toResponse(&blogs[i], "")
	}
	response.OK(c, items)
}

// get GET /blogs/:id
func (h *Handler) get(c *gin.Context) {
	blog, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if blog == nil {
		response.NotFoundMsg(c, "Blog not found.")
		return
	}
	response.OK(c, toResponse(blog, markdown.Render(blog.Content)))
}

// structure GET /blogs/:id/structure
func (h *Handler) structure(c *gin.Context) {
	blog, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if blog == nil {
		response.NotFoundMsg(c, "Blog not found.")
		return
	}
	response.OK(c, gin.H{
		"title":    blog.Title,
		"headings": markdown.ExtractHeadings(blog.Content),
	})
}

// create POST /admin/blogs  [admin]
func (h *Handler) create(c *gin.Context) {
	var dto BlogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	blog, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errTitleRequired) {
			response.UnprocessableEntity(c, "Title is required.")
			return
		}
		response.InternalError(c, err)
		return
	}

	h.purgeCache(c)
	response.Created(c, toResponse(blog, ""))
}

// update PUT /admin/blogs/:id  [admin]
func (h *Handler) update(c *gin.Context) {
	var dto BlogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	blog, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, errTitleRequired) {
			response.UnprocessableEntity(c, "Title is required.")
			return
		}
		response.InternalError(c, err)
		return
	}
	if blog == nil {
		response.NotFoundMsg(c, "Blog not found.")
		return
	}

	h.purgeCache(c)
	response.OK(c, toResponse(blog, ""))
}

// delete DELETE /admin/blogs/:id  [admin]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "Blog not found.")
			return
		}
		response.InternalError(c, err)
		return
	}

	h.purgeCache(c)
	response.NoContent(c)
}

func (h *Handler) purgeCache(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	_, _ = middleware.PurgeHTTPCache(c, h.rdb)
}
