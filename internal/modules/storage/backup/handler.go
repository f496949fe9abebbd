package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mws ...gin.HandlerFunc) {
	g := rg.Group("/backups", mws...)

	g.GET("", h.list)
	g.GET("/new", h.createAndDownload)
	g.GET("/:filename", h.download)
	g.POST("", h.uploadAndRestore)
	g.POST("/upload-to-store", h.uploadToStore)
	g.PATCH("/:filename", h.rollback)
	g.DELETE("", h.delete)
}

// list GET /backups
func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.svc.List())
}

// createAndDownload GET /backups/new
func (h *Handler) createAndDownload(c *gin.Context) {
	artifact, err := h.svc.WriteLocal(time.Now())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Data(http.StatusOK, "application/zip", artifact.Buffer.Bytes())
}

// download GET /backups/:filename
func (h *Handler) download(c *gin.Context) {
	data, err := h.svc.Read(c.Param("filename"))
	if err != nil {
		response.NotFound(c)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, c.Param("filename")))
	c.Data(http.StatusOK, "application/zip", data)
}

// uploadAndRestore POST /backups
func (h *Handler) uploadAndRestore(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		response.BadRequest(c, "invalid zip archive")
		return
	}
	if err := h.svc.Restore(zr); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "restore successful"})
}

// rollback PATCH /backups/:filename
func (h *Handler) rollback(c *gin.Context) {
	data, err := h.svc.Read(c.Param("filename"))
	if err != nil {
		response.NotFound(c)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		response.BadRequest(c, "invalid zip archive")
		return
	}
	if err := h.svc.Restore(zr); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "rollback successful"})
}

// uploadToStore POST /backups/upload-to-store
func (h *Handler) uploadToStore(c *gin.Context) {
	artifact, err := h.svc.UploadToStore(c.Request.Context(), "")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"filename": artifact.Filename})
}

// delete DELETE /backups?files=a.zip,b.zip
func (h *Handler) delete(c *gin.Context) {
	files := strings.TrimSpace(c.Query("files"))
	if files == "" {
		var body struct {
			Files string `json:"files"`
		}
		_ = c.ShouldBindJSON(&body)
		files = strings.TrimSpace(body.Files)
	}
	if files == "" {
		response.BadRequest(c, "files is required")
		return
	}
	h.svc.Delete(strings.Split(files, ","))
	response.NoContent(c)
}
