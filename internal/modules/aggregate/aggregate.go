// Package aggregate assembles the landing payload the public site renders
// above the fold: newest courses, newest blogs, and catalog counts in one
// request.
package aggregate

import (
	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/modules/content/blog"
	"github.com/kautilyalaw/core/internal/modules/content/course"
	"github.com/kautilyalaw/core/internal/pkg/response"
)

type Handler struct {
	courses *course.Service
	blogs   *blog.Service
}

func NewHandler(courses *course.Service, blogs *blog.Service) *Handler {
	return &Handler{courses: courses, blogs: blogs}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/aggregate", h.aggregate)
	rg.GET("/aggregate/stat", h.stat)
}

type aggregateData struct {
	Courses []models.CourseModel `json:"courses"`
	Blogs   []models.BlogModel   `json:"blogs"`
	Count   catalogCount         `json:"count"`
}

type catalogCount struct {
	Courses int64 `json:"courses"`
	Blogs   int64 `json:"blogs"`
}

// aggregate GET /aggregate
func (h *Handler) aggregate(c *gin.Context) {
	ctx := c.Request.Context()

	courses, err := h.courses.Latest(ctx, 6)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	blogs, err := h.blogs.Latest(ctx, 3)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	courseCount, err := h.courses.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	blogCount, err := h.blogs.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	if courses == nil {
		courses = []models.CourseModel{}
	}
	if blogs == nil {
		blogs = []models.BlogModel{}
	}
	response.OK(c, aggregateData{
		Courses: courses,
		Blogs:   blogs,
		Count:   catalogCount{Courses: courseCount, Blogs: blogCount},
	})
}

// stat GET /aggregate/stat
func (h *Handler) stat(c *gin.Context) {
	ctx := c.Request.Context()

	courseCount, err := h.courses.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	blogCount, err := h.blogs.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, catalogCount{Courses: courseCount, Blogs: blogCount})
}
