package storage

import (
	"context"
	"fmt"
	"os"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/config"
	"video-uploader/pkg/file"

	"go.uber.org/zap"
)

// URLBuilder turns object keys into public URLs. Exactly one scheme is active:
// the CloudFront distribution when set, the direct S3 endpoint otherwise.
type URLBuilder struct {
	Distribution string
	Bucket       string
	Region       string
}

func NewURLBuilder(cfg config.StorageConfig) URLBuilder {
	return URLBuilder{
		Distribution: cfg.CFDistribution,
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
	}
}

func (b URLBuilder) URL(key string) string {
	if b.Distribution != "" {
		return fmt.Sprintf("%s/%s", b.Distribution, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.Bucket, b.Region, key)
}

// Publisher uploads finished local files to object storage.
type Publisher struct {
	store repositories.ObjectStorage
	urls  URLBuilder
	log   *zap.Logger
}

func NewPublisher(store repositories.ObjectStorage, urls URLBuilder, log *zap.Logger) *Publisher {
	return &Publisher{store: store, urls: urls, log: log}
}

func (p *Publisher) Publish(ctx context.Context, localPath, key, mediaType string) (*entities.PublishedLocation, error) {
	checksum, err := file.CalculateFileHash(localPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", localPath, err)
	}

	err = p.store.PutObject(ctx, repositories.PutObjectInput{
		Key:         key,
		Body:        f,
		Size:        info.Size(),
		ContentType: mediaType,
		Metadata:    map[string]string{"sha256": checksum},
	})
	if err != nil {
		p.log.Warn("object upload failed",
			zap.String("key", key),
			zap.String("aws_code", APIErrorCode(err)),
			zap.Error(err))
		return nil, err
	}

	p.log.Info("object published", zap.String("key", key), zap.Int64("size", info.Size()))
	return &entities.PublishedLocation{Key: key, URL: p.urls.URL(key)}, nil
}

// Unpublish removes a previously published object.
func (p *Publisher) Unpublish(ctx context.Context, key string) error {
	return p.store.DeleteObject(ctx, key)
}
