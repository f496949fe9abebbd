package file

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/config"
	"github.com/kautilyalaw/core/internal/pkg/pagination"
	"github.com/kautilyalaw/core/internal/pkg/response"
)

// Handler exposes upload, delete, and orphan management for admins.
type Handler struct {
	svc *Service
	cfg config.StorageConfig
}

func NewHandler(svc *Service, cfg config.StorageConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mws ...gin.HandlerFunc) {
	g := rg.Group("/objects", mws...)

	g.POST("/upload", h.upload)
	g.DELETE("", h.delete)

	g.GET("/orphans/list", h.listOrphans)
	g.GET("/orphans/count", h.countOrphans)
	g.POST("/orphans/cleanup", h.cleanupOrphans)
	g.DELETE("/orphans/batch", h.batchDeleteOrphans)
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	if err := ValidateUpload(fileHeader.Filename, fileHeader.Size, h.cfg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer src.Close()

	payload, err := io.ReadAll(src)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// The multipart header size is client-supplied; re-check the real bytes.
	if err := ValidateUpload(fileHeader.Filename, int64(len(payload)), h.cfg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), fileHeader.Filename, payload,
		fileHeader.Header.Get("Content-Type"), h.cfg.KeyTemplate)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) delete(c *gin.Context) {
	var dto deleteObjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		// Also accept query params so the admin UI can fire-and-forget.
		dto.Path = c.Query("path")
		dto.URL = c.Query("url")
	}
	if err := h.svc.Delete(c.Request.Context(), dto.Path, dto.URL); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) listOrphans(c *gin.Context) {
	refs, page, err := h.svc.ListOrphans(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]gin.H, 0, len(refs))
	for _, ref := range refs {
		items = append(items, gin.H{
			"id":       ref.ID,
			"fileName": ref.FileName,
			"fileUrl":  ref.FileURL,
			"path":     ref.Path,
			"storage":  ref.Storage,
			"created":  ref.CreatedAt,
		})
	}
	response.Paged(c, items, page)
}

func (h *Handler) countOrphans(c *gin.Context) {
	count, err := h.svc.CountOrphans(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"count": count})
}

func (h *Handler) cleanupOrphans(c *gin.Context) {
	maxAge := DefaultOrphanMaxAge
	if raw := strings.TrimSpace(c.Query("maxAgeMinutes")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			maxAge = time.Duration(v) * time.Minute
		}
	}

	deleted, err := h.svc.CleanupOrphans(c.Request.Context(), maxAge)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}

func (h *Handler) batchDeleteOrphans(c *gin.Context) {
	var dto batchOrphanDeleteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deleted, err := h.svc.DeleteByIDs(c.Request.Context(), dto.IDs, dto.All)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}
