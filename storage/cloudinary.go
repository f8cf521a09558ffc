package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig selects the cloud and upload preset. With an API key and
// secret uploads are signed; otherwise the preset must allow unsigned
// uploads.
type CloudinaryConfig struct {
	Cloud     string
	Preset    string
	Folder    string
	APIKey    string
	APISecret string
	// UploadPrefix overrides https://api.cloudinary.com.
	UploadPrefix string
}

// CloudinaryStore uploads invites to Cloudinary. The image is sent as a
// base64 data URL.
type CloudinaryStore struct {
	cfg    CloudinaryConfig
	upload *uploader.API
	now    func() time.Time
}

// NewCloudinaryStore creates a CloudinaryStore from cfg.
func NewCloudinaryStore(cfg CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.Cloud, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if cfg.UploadPrefix != "" {
		cld.Upload.Config.API.UploadPrefix = cfg.UploadPrefix
	}
	return &CloudinaryStore{cfg: cfg, upload: &cld.Upload, now: time.Now}, nil
}

func (s *CloudinaryStore) Name() string { return BackendCloudinary }

func (s *CloudinaryStore) signed() bool {
	return s.cfg.APIKey != "" && s.cfg.APISecret != ""
}

// Persist uploads data and returns the secure URL Cloudinary assigns.
func (s *CloudinaryStore) Persist(ctx context.Context, data []byte, nameHint string) (string, error) {
	params := uploader.UploadParams{
		PublicID:     UniqueName(nameHint, s.now()),
		Folder:       s.cfg.Folder,
		ResourceType: "image",
	}

	var (
		res *uploader.UploadResult
		err error
	)
	if s.signed() {
		params.UploadPreset = s.cfg.Preset
		res, err = s.upload.Upload(ctx, DataURL(MimePNG, data), params)
	} else {
		res, err = s.upload.UnsignedUpload(ctx, DataURL(MimePNG, data), s.cfg.Preset, params)
	}
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("upload: response has no secure_url")
	}
	return res.SecureURL, nil
}
