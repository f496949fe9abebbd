package object

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kautilyalaw/core/internal/config"
)

// cloudinaryStore uploads through Cloudinary's unsigned upload endpoint.
// The unsigned API returns only a delivery URL; there is no delete call, so
// dropped references orphan their binaries.
type cloudinaryStore struct {
	client       *resty.Client
	cloudName    string
	uploadPreset string
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newCloudinaryStore(opts config.CloudinaryOptions) (*cloudinaryStore, error) {
	cloudName := strings.TrimSpace(opts.CloudName)
	preset := strings.TrimSpace(opts.UploadPreset)
	if cloudName == "" || preset == "" {
		return nil, fmt.Errorf("incomplete cloudinary config: cloud_name and upload_preset are required")
	}

	client := resty.New().
		SetBaseURL("https://api.cloudinary.com/v1_1/"+cloudName).
		SetTimeout(45 * time.Second)

	return &cloudinaryStore{
		client:       client,
		cloudName:    cloudName,
		uploadPreset: preset,
	}, nil
}

func (s *cloudinaryStore) Upload(ctx context.Context, key string, payload []byte, contentType string) (Ref, error) {
	name := baseName(normalizeObjectKey(key))
	if name == "" {
		name = "upload"
	}

	var result cloudinaryUploadResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(payload)).
		SetFormData(map[string]string{"upload_preset": s.uploadPreset}).
		SetResult(&result).
		SetError(&result).
		Post("/image/upload")
	if err != nil {
		return Ref{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.IsError() || result.SecureURL == "" {
		msg := strings.TrimSpace(result.Error.Message)
		if msg == "" {
			msg = resp.Status()
		}
		return Ref{}, fmt.Errorf("cloudinary upload failed: %s", msg)
	}

	// Path stays empty: an unsigned upload cannot be deleted later.
	return Ref{URL: result.SecureURL, Name: name}, nil
}

func (s *cloudinaryStore) Delete(ctx context.Context, path string) error {
	return ErrDeleteUnsupported
}

func (s *cloudinaryStore) Driver() string  { return "cloudinary" }
func (s *cloudinaryStore) CanDelete() bool { return false }
