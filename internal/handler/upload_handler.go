package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/service"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

type uploadService interface {
	Upload(uploadType string, upload service.Upload) (*dto.UploadedFile, error)
	UploadMultiple(uploadType string, uploads []service.Upload) ([]dto.UploadedFile, error)
	Delete(uploadType, filename string) error
	Download(uploadType, fragment string) (*service.UploadDownload, error)
}

// UploadHandler exposes course media upload endpoints.
type UploadHandler struct {
	uploads uploadService
	logger  *zap.Logger
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads uploadService, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{uploads: uploads, logger: logger}
}

// Upload godoc
// @Summary Upload a file
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param type formData string false "Upload type directory, defaults to general"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "No file uploaded"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "unable to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	stored, err := h.uploads.Upload(c.PostForm("type"), toUpload(header, file))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "File uploaded successfully", gin.H{"url": stored.URL, "file": stored})
}

// UploadMultiple godoc
// @Summary Upload several files
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files (max 10)"
// @Param type formData string false "Upload type directory, defaults to general"
// @Success 200 {object} response.Envelope
// @Router /upload/multiple [post]
func (h *UploadHandler) UploadMultiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "No files uploaded"))
		return
	}

	headers := form.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "unable to read upload"))
			return
		}
		defer file.Close() //nolint:errcheck
		uploads = append(uploads, toUpload(header, file))
	}

	stored, err := h.uploads.UploadMultiple(c.PostForm("type"), uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Files uploaded successfully", gin.H{"files": stored, "count": len(stored)})
}

// Delete godoc
// @Summary Delete an uploaded file
// @Tags Uploads
// @Security BearerAuth
// @Param filename path string true "Stored filename"
// @Param type query string false "Upload type directory"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /upload/{filename} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.uploads.Delete(c.Query("type"), c.Param("filename")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "File deleted successfully", nil)
}

// Download godoc
// @Summary Download a file by partial name
// @Tags Uploads
// @Produce octet-stream
// @Security BearerAuth
// @Param type query string false "Upload type directory"
// @Param name query string true "Case-insensitive fragment of the stored name"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /upload/download [get]
func (h *UploadHandler) Download(c *gin.Context) {
	download, err := h.uploads.Download(c.Query("type"), c.Query("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		h.logger.Error("stat upload", zap.String("filename", download.Filename), zap.Error(err))
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to read file"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), download.MimeType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
	})
}

func toUpload(header *multipart.FileHeader, file multipart.File) service.Upload {
	return service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Content:  file,
	}
}
