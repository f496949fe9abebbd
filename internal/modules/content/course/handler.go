package course

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/middleware"
	"github.com/kautilyalaw/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handler handles course HTTP requests.
type Handler struct {
	svc *Service
	rdb *redis.Client
}

func NewHandler(svc *Service, rdb *redis.Client) *Handler {
	return &Handler{svc: svc, rdb: rdb}
}

// RegisterRoutes mounts public reads and admin mutations.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/courses", h.list)
	public.GET("/courses/:id", h.get)

	admin.POST("/courses", h.create)
	admin.PUT("/courses/:id", h.update)
	admin.DELETE("/courses/:id", h.delete)
}

// list GET /courses
func (h *Handler) list(c *gin.Context) {
	courses, err := h.svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]courseResponse, len(courses))
	for i := range courses {
		items[i] = toResponse(&courses[i])
	}
	response.OK(c, items)
}

// get GET /courses/:id
func (h *Handler) get(c *gin.Context) {
	course, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if course == nil {
		response.NotFoundMsg(c, "Course not found.")
		return
	}
	response.OK(c, toResponse(course))
}

// create POST /admin/courses  [admin]
func (h *Handler) create(c *gin.Context) {
	var dto CourseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	course, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errTitleRequired) {
			response.UnprocessableEntity(c, "Title is required.")
			return
		}
		response.InternalError(c, err)
		return
	}

	h.purgeCache(c)
	response.Created(c, toResponse(course))
}

// update PUT /admin/courses/:id  [admin]
func (h *Handler) update(c *gin.Context) {
	var dto CourseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	course, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, errTitleRequired) {
			response.UnprocessableEntity(c, "Title is required.")
			return
		}
		response.InternalError(c, err)
		return
	}
	if course == nil {
		response.NotFoundMsg(c, "Course not found.")
		return
	}

	h.purgeCache(c)
	response.OK(c, toResponse(course))
}

// delete DELETE /admin/courses/:id  [admin]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "Course not found.")
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
