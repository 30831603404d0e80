package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/feconecta/feconecta-api/internal/observability"
	"github.com/feconecta/feconecta-api/internal/session"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the media type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadedMedia describes a stored media asset ready to attach to a post.
type UploadedMedia struct {
	URL       string `json:"url"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// UploadService validates and stores media attachments. Only image, video
// and audio payloads are accepted; everything else is rejected before it
// reaches storage.
type UploadService struct {
	storage  FileStorage
	sessions *session.Manager
	logger   zerolog.Logger
	maxSize  int64
	tracer   trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, sessions *session.Manager, maxSizeMB int, logger zerolog.Logger) *UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	return &UploadService{
		storage:  storage,
		sessions: sessions,
		logger:   logger.With().Str("component", "upload_service").Logger(),
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/feconecta/feconecta-api/internal/service/upload"),
	}
}

// Upload sniffs, validates and stores one media payload.
func (s *UploadService) Upload(ctx context.Context, name string, reader io.Reader) (UploadedMedia, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	if s.sessions.Current() == nil {
		span.SetStatus(codes.Error, "not logged in")
		return UploadedMedia{}, ErrNotLoggedIn
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(reader, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return UploadedMedia{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return UploadedMedia{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	kind := mediaKind(mime.String())
	span.SetAttributes(
		attribute.String("upload.detected_mime", mime.String()),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)
	if kind == "" {
		observability.UploadsRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return UploadedMedia{}, ErrUploadTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadsRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return UploadedMedia{}, err
	}

	observability.Uploads().WithLabelValues(kind).Inc()
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().Str("kind", kind).Int("size_bytes", buf.Len()).Msg("media stored")

	return UploadedMedia{
		URL:       url,
		Kind:      kind,
		SizeBytes: int64(buf.Len()),
		MimeType:  mime.String(),
	}, nil
}

func mediaKind(mime string) string {
	lower := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(lower, "image/"):
		return "image"
	case strings.HasPrefix(lower, "video/"):
		return "video"
	case strings.HasPrefix(lower, "audio/"):
		return "audio"
	default:
		return ""
	}
}
