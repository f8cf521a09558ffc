package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Backend names accepted by FromConfig.
const (
	BackendNone       = "none"
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
	BackendCloudinary = "cloudinary"
)

// Config selects and configures a backend.
type Config struct {
	Type string

	LocalPath string
	LocalURL  string

	S3Bucket    string
	S3Prefix    string
	S3PublicURL string

	Cloudinary CloudinaryConfig
}

// Disabled is a Persister that always fails, leaving callers with the inline
// image.
type Disabled struct{}

func (Disabled) Name() string { return BackendNone }

func (Disabled) Persist(context.Context, []byte, string) (string, error) {
	return "", ErrDisabled
}

// FromConfig builds the backend named by cfg.Type. An empty type selects the
// filesystem backend.
func FromConfig(ctx context.Context, cfg Config) (Persister, error) {
	fields := logrus.Fields{"storageType": cfg.Type}
	var p Persister

	switch cfg.Type {
	case BackendFilesystem, "":
		if cfg.LocalPath == "" {
			cfg.LocalPath = "data/invites"
		}
		if cfg.LocalURL == "" {
			cfg.LocalURL = "/invites"
		}
		fields["storageType"] = BackendFilesystem
		fields["basePath"] = cfg.LocalPath
		p = NewFilesystemStore(cfg.LocalPath, cfg.LocalURL)
	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("storage: S3_BUCKET_NAME must be set for s3 storage")
		}
		fields["bucketName"] = cfg.S3Bucket
		s, err := NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		p = s
	case BackendCloudinary:
		cc := cfg.Cloudinary
		if cc.Cloud == "" {
			return nil, fmt.Errorf("storage: CLOUDINARY_CLOUD_NAME must be set for cloudinary storage")
		}
		if cc.Preset == "" && (cc.APIKey == "" || cc.APISecret == "") {
			return nil, fmt.Errorf("storage: cloudinary storage needs CLOUDINARY_UPLOAD_PRESET or CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
		fields["cloudName"] = cc.Cloud
		s, err := NewCloudinaryStore(cc)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		fields["signed"] = s.signed()
		p = s
	case BackendNone:
		p = Disabled{}
	default:
		return nil, fmt.Errorf("storage: unknown storage type %q", cfg.Type)
	}

	logrus.WithFields(fields).Info("Use storage")
	return p, nil
}
