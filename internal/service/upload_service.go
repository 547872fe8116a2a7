package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/coursehub-api/internal/observability"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// FileStorage abstracts upload destinations (Cloudinary or the local disk).
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ImageService validates and stores profile images and course thumbnails.
type ImageService interface {
	Store(ctx context.Context, file *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, url string)
}

type imageService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewImageService constructs an image service.
func NewImageService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) ImageService {
	if maxSizeMB <= 0 {
		maxSizeMB = 2
	}
	return &imageService{
		storage: storage,
		logger:  logger.With().Str("component", "image_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/coursehub-api/internal/service/upload"),
	}
}

// Store checks size and sniffed content type before handing the bytes to storage.
func (s *imageService) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ctx, span := s.tracer.Start(ctx, "upload.image")
	defer span.End()

	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return "", ErrUploadRequired
	}
	span.SetAttributes(attribute.Int64("upload.request_size", file.Size))

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return "", err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	ext, ok := allowedImageTypes[detected.String()]
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !ok {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return "", ErrUploadTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, sanitizeFileName(file.Filename, ext), bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "stored")
	return url, nil
}

// Remove deletes a replaced image. Failures are logged, never returned.
func (s *imageService) Remove(ctx context.Context, url string) {
	if strings.TrimSpace(url) == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		observability.Logger(ctx, s.logger).Warn().Err(err).Str("url", url).Msg("failed to remove previous image")
	}
}

func sanitizeFileName(name, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "image"
	}
	return base + ext
}
