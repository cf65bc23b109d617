package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kavyadav/adminhub-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the sniffed content type is not
	// permitted. Client-supplied headers are never trusted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrTooManyDocuments indicates a student edit exceeded the document cap.
	ErrTooManyDocuments = errors.New("too many documents")
)

// FileStorage abstracts the upload destination. Stored files are referenced
// by the relative path Upload returns.
type FileStorage interface {
	Upload(ctx context.Context, dir, name string, reader io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// UploadService validates and stores user-facing uploads.
type UploadService interface {
	SaveAvatar(ctx context.Context, file *multipart.FileHeader) (string, error)
	SaveStudentPhoto(ctx context.Context, file *multipart.FileHeader) (string, error)
	SaveStudentDocuments(ctx context.Context, files []*multipart.FileHeader, existing int) ([]string, error)
}

type uploadService struct {
	storage      FileStorage
	avatarMax    int64
	documentMax  int64
	maxDocuments int
	logger       zerolog.Logger
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, avatarMaxMB, documentMaxMB, maxDocuments int, logger zerolog.Logger) UploadService {
	if avatarMaxMB <= 0 {
		avatarMaxMB = 5
	}
	if documentMaxMB <= 0 {
		documentMaxMB = 10
	}
	if maxDocuments <= 0 {
		maxDocuments = 10
	}
	return &uploadService{
		storage:      storage,
		avatarMax:    int64(avatarMaxMB) * 1024 * 1024,
		documentMax:  int64(documentMaxMB) * 1024 * 1024,
		maxDocuments: maxDocuments,
		logger:       logger.With().Str("component", "upload_service").Logger(),
	}
}

// SaveAvatar stores a profile image under uploads/avatars.
func (s *uploadService) SaveAvatar(ctx context.Context, file *multipart.FileHeader) (string, error) {
	return s.saveImage(ctx, file, "avatars", s.avatarMax)
}

// SaveStudentPhoto stores a student photo under uploads/students.
func (s *uploadService) SaveStudentPhoto(ctx context.Context, file *multipart.FileHeader) (string, error) {
	return s.saveImage(ctx, file, "students", s.documentMax)
}

// SaveStudentDocuments stores up to the configured number of documents,
// counting the ones a record already carries.
func (s *uploadService) SaveStudentDocuments(ctx context.Context, files []*multipart.FileHeader, existing int) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if existing+len(files) > s.maxDocuments {
		observability.UploadsRejected().WithLabelValues("count").Inc()
		return nil, ErrTooManyDocuments
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		content, _, err := s.readUpload(file, s.documentMax)
		if err != nil {
			return nil, err
		}
		path, err := s.store(ctx, "students", file.Filename, content)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *uploadService) saveImage(ctx context.Context, file *multipart.FileHeader, dir string, maxSize int64) (string, error) {
	content, detected, err := s.readUpload(file, maxSize)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		observability.UploadsRejected().WithLabelValues("type").Inc()
		return "", ErrUploadTypeNotAllowed
	}
	return s.store(ctx, dir, file.Filename, content)
}

func (s *uploadService) readUpload(file *multipart.FileHeader, maxSize int64) ([]byte, *mimetype.MIME, error) {
	if file == nil {
		return nil, nil, errors.New("file is required")
	}
	if file.Size > maxSize {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return nil, nil, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, nil, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxSize+1)); err != nil {
		return nil, nil, err
	}
	if int64(buf.Len()) > maxSize {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return nil, nil, ErrUploadTooLarge
	}

	return buf.Bytes(), mimetype.Detect(buf.Bytes()), nil
}

func (s *uploadService) store(ctx context.Context, dir, originalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path, err := s.storage.Upload(ctx, dir, name, bytes.NewReader(content))
	if err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("failed to store upload")
		return "", err
	}
	return path, nil
}
