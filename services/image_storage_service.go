package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	appconfig "github.com/skku-sw-25f-capstone6/HealthyScanner-backend/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ImageStorage stores raw image bytes and returns a stable public URL.
type ImageStorage interface {
	Upload(ctx context.Context, data []byte, contentType, keyPrefix string) (string, error)
}

type S3ImageStorage struct {
	client *s3.Client
	bucket string
	cdnURL string
}

func NewS3ImageStorage(ctx context.Context, s appconfig.Settings) (*S3ImageStorage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.S3Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}
	return &S3ImageStorage{
		client: s3.NewFromConfig(cfg),
		bucket: s.S3Bucket,
		cdnURL: s.CloudFrontURL,
	}, nil
}

func (st *S3ImageStorage) Upload(ctx context.Context, data []byte, contentType, keyPrefix string) (string, error) {
	key := fmt.Sprintf("%s/%d%s", keyPrefix, time.Now().UnixNano(), extensionFor(contentType))

	_, err := st.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", st.cdnURL, key), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		return "." + parts[1]
	}
	return ".jpg"
}
