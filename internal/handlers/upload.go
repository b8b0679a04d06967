package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadHandler stores product images on local disk and returns their URLs.
type UploadHandler struct {
	dir string
}

// NewUploadHandler builds an UploadHandler writing into dir.
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// Upload accepts multipart images under the "images" field and saves each
// under a random name, keeping the original extension.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no images provided"})
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store images"})
		return
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedImageExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}

		name := uuid.NewString() + ext
		if err := c.SaveUploadedFile(file, filepath.Join(h.dir, name)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store images"})
			return
		}
		urls = append(urls, "/uploads/"+name)
	}

	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}
