package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
	"github.com/noah-isme/eduvillage-api/pkg/storage"
)

// DefaultUploadType is used when the client omits the upload type.
const DefaultUploadType = "general"

var uploadTypePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type uploadStorage interface {
	SaveStream(filename string, r io.Reader) (int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	Find(dir, fragment string) (string, error)
}

// Upload is a single incoming file.
type Upload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// UploadDownload is an opened stored file ready for streaming.
type UploadDownload struct {
	File     *os.File
	Filename string
	MimeType string
}

// UploadServiceConfig bounds what the upload service accepts.
type UploadServiceConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
	MaxFiles          int
	PublicPrefix      string
}

// UploadService stores course media on local disk.
type UploadService struct {
	storage    uploadStorage
	logger     *zap.Logger
	cfg        UploadServiceConfig
	extensions map[string]struct{}
	now        func() time.Time
}

// NewUploadService constructs the service with defaults for unset limits.
func NewUploadService(store uploadStorage, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 100 * 1024 * 1024
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 10
	}
	if cfg.PublicPrefix == "" {
		cfg.PublicPrefix = "/uploads"
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"jpeg", "jpg", "png", "gif", "pdf", "mp4", "avi", "mov", "doc", "docx", "txt"}
	}
	extensions := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		extensions["."+strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")] = struct{}{}
	}
	return &UploadService{storage: store, logger: logger, cfg: cfg, extensions: extensions, now: time.Now}
}

// Upload validates and stores one file under the given type directory.
func (s *UploadService) Upload(uploadType string, upload Upload) (*dto.UploadedFile, error) {
	dir, err := normalizeUploadType(uploadType)
	if err != nil {
		return nil, err
	}
	return s.store(dir, upload)
}

// UploadMultiple stores every file or none of them.
func (s *UploadService) UploadMultiple(uploadType string, uploads []Upload) ([]dto.UploadedFile, error) {
	dir, err := normalizeUploadType(uploadType)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "No files uploaded")
	}
	if len(uploads) > s.cfg.MaxFiles {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d files per request", s.cfg.MaxFiles))
	}
	for _, upload := range uploads {
		if err := s.validate(upload); err != nil {
			return nil, err
		}
	}

	stored := make([]dto.UploadedFile, 0, len(uploads))
	for _, upload := range uploads {
		file, err := s.store(dir, upload)
		if err != nil {
			for _, done := range stored {
				_ = s.storage.Delete(path.Join(done.Type, done.Filename))
			}
			return nil, err
		}
		stored = append(stored, *file)
	}
	return stored, nil
}

// Delete removes a stored file from a type directory.
func (s *UploadService) Delete(uploadType, filename string) error {
	dir, err := normalizeUploadType(uploadType)
	if err != nil {
		return err
	}
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == "/" || name != filename {
		return appErrors.Clone(appErrors.ErrValidation, "invalid filename")
	}
	if err := s.storage.Delete(path.Join(dir, name)); err != nil {
		return s.classify(err, "failed to delete file")
	}
	s.logger.Info("upload deleted", zap.String("type", dir), zap.String("filename", name))
	return nil
}

// Download opens the first file in the type directory whose name contains fragment.
func (s *UploadService) Download(uploadType, fragment string) (*UploadDownload, error) {
	dir, err := normalizeUploadType(uploadType)
	if err != nil {
		return nil, err
	}
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Missing name query parameter")
	}
	rel, err := s.storage.Find(dir, fragment)
	if err != nil {
		return nil, s.classify(err, "failed to look up file")
	}
	file, err := s.storage.Open(rel)
	if err != nil {
		return nil, s.classify(err, "failed to open file")
	}
	return &UploadDownload{File: file, Filename: path.Base(rel), MimeType: mimeFromExtension(rel)}, nil
}

func (s *UploadService) store(dir string, upload Upload) (*dto.UploadedFile, error) {
	if err := s.validate(upload); err != nil {
		return nil, err
	}
	mimeType, err := detectMime(upload)
	if err != nil {
		return nil, err
	}
	filename := s.generateFilename(upload.Filename)
	rel := path.Join(dir, filename)

	written, err := s.storage.SaveStream(rel, io.LimitReader(upload.Content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, s.classify(err, "failed to persist file")
	}
	if written > s.cfg.MaxFileSize {
		_ = s.storage.Delete(rel)
		return nil, s.tooLarge()
	}

	return &dto.UploadedFile{
		Filename:     filename,
		OriginalName: upload.Filename,
		Type:         dir,
		MimeType:     mimeType,
		Size:         written,
		URL:          s.cfg.PublicPrefix + "/" + rel,
	}, nil
}

func (s *UploadService) validate(upload Upload) error {
	if upload.Content == nil {
		return appErrors.Clone(appErrors.ErrValidation, "No file uploaded")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return s.tooLarge()
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := s.extensions[ext]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, "Invalid file type. Allowed types: images, videos, PDFs, documents")
	}
	return nil
}

func (s *UploadService) tooLarge() error {
	return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
}

func (s *UploadService) classify(err error, message string) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return appErrors.Clone(appErrors.ErrNotFound, "File not found")
	case errors.Is(err, storage.ErrOutsideRoot):
		return appErrors.Clone(appErrors.ErrValidation, "invalid file path")
	default:
		return internalError(err, message)
	}
}

func (s *UploadService) generateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	name := sanitizeName(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s-%d-%s%s", name, s.now().UnixNano(), randomSuffix(), ext)
}

func normalizeUploadType(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultUploadType, nil
	}
	if !uploadTypePattern.MatchString(raw) {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid upload type")
	}
	return raw, nil
}

func detectMime(upload Upload) (string, error) {
	if upload.MimeType != "" {
		return upload.MimeType, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", internalError(err, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", internalError(err, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return http.DetectContentType(header[:n]), nil
}

func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func mimeFromExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
