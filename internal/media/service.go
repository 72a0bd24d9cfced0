package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/storage/gcs"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 * 1024 * 1024

var allowedMimeTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// Service hands out signed upload URLs for product imagery.
type Service interface {
	PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error)
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
}

// PresignOutput contains the data the admin client needs to PUT the object
// and register it afterwards.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	PublicURL    string    `json:"public_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type service struct {
	signer    gcs.SignedURLIssuer
	uploadTTL time.Duration
}

// NewService constructs a media service backed by the provided signer.
func NewService(signer gcs.SignedURLIssuer, uploadTTL time.Duration) (Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("gcs signer required")
	}
	if uploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	return &service{signer: signer, uploadTTL: uploadTTL}, nil
}

// PresignUpload validates the upload request and signs a one-off PUT URL.
func (s *service) PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be <= %d bytes", maxUploadBytes))
	}

	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if !isAllowedMime(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for product imagery")
	}

	objectKey := buildObjectKey(uuid.New(), fileName)

	signedURL, err := s.signer.SignedUploadURL(objectKey, mimeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    objectKey,
		SignedPUTURL: signedURL,
		PublicURL:    s.signer.ObjectURL(objectKey),
		ContentType:  mimeType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

func isAllowedMime(mimeType string) bool {
	for _, candidate := range allowedMimeTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func buildObjectKey(id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("products/%s/%s", id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
