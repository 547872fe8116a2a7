package cloudinary

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

const deliveryHost = "res.cloudinary.com"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores profile images and course thumbnails on Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the image to Cloudinary and returns a secure URL.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       strings.Trim(s.folder, "/"),
		PublicID:     buildPublicID(name),
		ResourceType: "image",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// Delete removes a previously uploaded asset. URLs not served by Cloudinary
// (placeholders, local files) are ignored.
func (s *Service) Delete(ctx context.Context, assetURL string) error {
	publicID, ok := PublicIDFromURL(assetURL)
	if !ok {
		return nil
	}

	if _, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"}); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	s.logger.Info().Str("public_id", publicID).Msg("file removed from cloudinary")
	return nil
}

// PublicIDFromURL extracts the public id (folder included) from a delivery URL.
func PublicIDFromURL(assetURL string) (string, bool) {
	parsed, err := url.Parse(assetURL)
	if err != nil || parsed.Host != deliveryHost {
		return "", false
	}

	_, rest, found := strings.Cut(parsed.Path, "/upload/")
	if !found || rest == "" {
		return "", false
	}

	segments := strings.Split(rest, "/")
	if first := segments[0]; len(first) > 1 && first[0] == 'v' && isDigits(first[1:]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return "", false
	}

	publicID := path.Join(segments...)
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	return publicID, publicID != ""
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "image"
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}
