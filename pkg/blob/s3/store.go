// Package s3 provides an S3-backed byte store implementation.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jababox/jababox/pkg/blob"
)

// markerName is the object written under a container or subcontainer
// prefix so that Check* probes can distinguish an empty container from
// a missing one. S3 has no real directories.
const markerName = ".container"

// Config holds configuration for the S3 byte store.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// KeyPrefix is prepended to all object keys (e.g., "payloads/").
	// Should end with "/" if non-empty.
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`

	// ForcePathStyle forces path-style addressing (required for Localstack/MinIO).
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// Store is an S3-backed implementation of blob.Store.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	closed    bool
	mu        sync.RWMutex
}

// New creates an S3 byte store with an existing client.
func New(client *s3.Client, config Config) *Store {
	return &Store{
		client:    client,
		bucket:    config.Bucket,
		keyPrefix: config.KeyPrefix,
	}
}

// NewFromConfig creates an S3 byte store by creating an S3 client from config.
// This is the preferred constructor when you don't have an existing S3 client.
func NewFromConfig(ctx context.Context, config Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)

	if config.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}

	if config.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	return New(client, config), nil
}

func (s *Store) containerMarker(accountID string) string {
	return s.keyPrefix + accountID + "/" + markerName
}

func (s *Store) subcontainerPrefix(accountID, directoryID string) string {
	return s.keyPrefix + accountID + "/" + directoryID + "/"
}

func (s *Store) subcontainerMarker(accountID, directoryID string) string {
	return s.subcontainerPrefix(accountID, directoryID) + markerName
}

func (s *Store) blobKey(accountID, directoryID, fileID string) string {
	return s.subcontainerPrefix(accountID, directoryID) + fileID
}

func (s *Store) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return blob.ErrStoreClosed
	}
	return nil
}

func (s *Store) putMarker(ctx context.Context, key string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("s3 put marker: %w", err)
	}
	return nil
}

func (s *Store) headObject(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return blob.ErrNotFound
		}
		return fmt.Errorf("s3 head object: %w", err)
	}
	return nil
}

// CreateContainer writes the account's marker object.
func (s *Store) CreateContainer(ctx context.Context, accountID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.putMarker(ctx, s.containerMarker(accountID))
}

// CheckContainer asserts the account's marker object exists.
func (s *Store) CheckContainer(ctx context.Context, accountID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.headObject(ctx, s.containerMarker(accountID))
}

// CreateSubcontainer writes the directory's marker object.
func (s *Store) CreateSubcontainer(ctx context.Context, accountID, directoryID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.putMarker(ctx, s.subcontainerMarker(accountID, directoryID))
}

// CheckSubcontainer asserts the directory's marker object exists.
func (s *Store) CheckSubcontainer(ctx context.Context, accountID, directoryID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.headObject(ctx, s.subcontainerMarker(accountID, directoryID))
}

// DeleteSubcontainer removes every object under the directory's prefix,
// marker included, using paginated batch deletes.
func (s *Store) DeleteSubcontainer(ctx context.Context, accountID, directoryID string) error {
	if err := s.guard(); err != nil {
		return err
	}

	prefix := s.subcontainerPrefix(accountID, directoryID)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("s3 list objects: %w", err)
		}

		if len(page.Contents) == 0 {
			continue
		}

		// Batch delete (up to 1000 per call)
		objects := make([]types.ObjectIdentifier, len(page.Contents))
		for i, obj := range page.Contents {
			objects[i] = types.ObjectIdentifier{Key: obj.Key}
		}

		_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("s3 delete objects: %w", err)
		}
	}

	return nil
}

// WriteBlob writes a payload object to S3.
func (s *Store) WriteBlob(ctx context.Context, accountID, directoryID, fileID string, data []byte) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.blobKey(accountID, directoryID, fileID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}

	return nil
}

// CheckBlob asserts a payload object exists.
func (s *Store) CheckBlob(ctx context.Context, accountID, directoryID, fileID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.headObject(ctx, s.blobKey(accountID, directoryID, fileID))
}

// ReadBlob reads a complete payload object from S3.
func (s *Store) ReadBlob(ctx context.Context, accountID, directoryID, fileID string) ([]byte, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.blobKey(accountID, directoryID, fileID)),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object body: %w", err)
	}

	return data, nil
}

// DeleteBlob removes a payload object from S3. Deleting an absent
// object is not an error; S3 DeleteObject already behaves that way.
func (s *Store) DeleteBlob(ctx context.Context, accountID, directoryID, fileID string) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.blobKey(accountID, directoryID, fileID)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}

	return nil
}

// HealthCheck verifies the S3 bucket is accessible.
// Performs a HeadBucket call to check connectivity and permissions.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("S3 health check failed: %w", err)
	}

	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// isNotFoundError checks if an error is an S3 not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "404")
}

// Ensure Store implements blob.Store.
var _ blob.Store = (*Store)(nil)
