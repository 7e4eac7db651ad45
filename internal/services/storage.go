package services

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/hanbit-dev/authportal-backend/internal/config"
)

const presignTTL = 15 * time.Minute

// Storage wraps the S3-compatible object store behind the demo browser.
// It only ever hands out presigned URLs; object bytes never flow through
// this process except for deletes.
type Storage struct {
	client *s3.S3
	bucket string
}

// ObjectInfo is one listing entry, with a presigned GET URL attached.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}

func NewStorage(cfg *config.Config) (*Storage, error) {
	if cfg.StorageEndpoint == "" || cfg.StorageAccessKey == "" || cfg.StorageSecretKey == "" || cfg.StorageBucket == "" {
		return nil, fmt.Errorf("object storage not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.StorageRegion),
		Endpoint:         aws.String(cfg.StorageEndpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials: credentials.NewStaticCredentials(
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %v", err)
	}

	return &Storage{
		client: s3.New(sess),
		bucket: cfg.StorageBucket,
	}, nil
}

// ListObjects lists up to maxKeys objects under prefix, each with a
// presigned GET URL.
func (s *Storage) ListObjects(prefix string, maxKeys int64) ([]ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if maxKeys > 0 {
		input.MaxKeys = aws.Int64(maxKeys)
	}

	out, err := s.client.ListObjectsV2(input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %v", err)
	}

	objects := make([]ObjectInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		url, err := s.GetPresignedURL(aws.StringValue(obj.Key))
		if err != nil {
			return nil, err
		}
		objects = append(objects, ObjectInfo{
			Key:          aws.StringValue(obj.Key),
			Size:         aws.Int64Value(obj.Size),
			LastModified: aws.TimeValue(obj.LastModified),
			URL:          url,
		})
	}
	return objects, nil
}

// GetPresignedURL returns a time-limited download URL for a key.
func (s *Storage) GetPresignedURL(key string) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign GET for %s: %v", key, err)
	}
	return url, nil
}

// PutPresignedURL returns a time-limited upload URL for a key. The
// client uploads directly against the store with this URL.
func (s *Storage) PutPresignedURL(key, contentType string) (string, error) {
	req, _ := s.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	url, err := req.Presign(presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign PUT for %s: %v", key, err)
	}
	return url, nil
}

// DeleteObject removes a key from the bucket.
func (s *Storage) DeleteObject(key string) error {
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v", key, err)
	}
	return nil
}
