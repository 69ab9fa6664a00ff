package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/onthebell/onthebell-api/internal/config"
	"github.com/onthebell/onthebell-api/internal/pkg/cloudinary"
)

const (
	DriverCloudinary = "cloudinary"
	DriverS3         = "s3"
)

var ErrNotConfigured = errors.New("storage not configured")

// Object describes a stored file
type Object struct {
	Key         string `bson:"key" json:"key"`
	URL         string `bson:"url" json:"-"`
	Driver      string `bson:"driver" json:"driver"`
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`
}

// Store is a private document store
type Store interface {
	// Put stores the content under folder and returns the stored object
	Put(ctx context.Context, folder string, r io.Reader, contentType string) (*Object, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	Driver() string
}

// New builds the store selected by cfg.StorageDriver
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case DriverCloudinary, "":
		svc, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
		}
		return NewCloudinaryStore(svc), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// CloudinaryStore stores documents as raw Cloudinary assets
type CloudinaryStore struct {
	svc *cloudinary.Service
}

func NewCloudinaryStore(svc *cloudinary.Service) *CloudinaryStore {
	return &CloudinaryStore{svc: svc}
}

func (s *CloudinaryStore) Put(ctx context.Context, folder string, r io.Reader, contentType string) (*Object, error) {
	res, err := s.svc.UploadDocument(ctx, r, folder)
	if err != nil {
		return nil, err
	}
	return &Object{
		Key:         res.PublicID,
		URL:         res.URL,
		Driver:      DriverCloudinary,
		ContentType: contentType,
		Size:        res.FileSize,
	}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	return s.svc.Delete(ctx, key, cloudinary.ResourceRaw)
}

func (s *CloudinaryStore) Driver() string { return DriverCloudinary }
