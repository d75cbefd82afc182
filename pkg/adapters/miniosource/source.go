// Package miniosource reads containers from an S3-compatible bucket with
// ranged GET requests.
package miniosource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/user/insvframe/pkg/ports"
)

// ErrNoBucket is returned by New when no bucket is configured.
var ErrNoBucket = errors.New("miniosource: bucket is required")

// Config contains connection settings for the object store.
type Config struct {
	Endpoint  string // host[:port], without scheme
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string // skips the bucket location lookup when set
}

// Source implements ports.SizedSource on top of a single bucket. Keys are
// object names inside that bucket.
type Source struct {
	client *miniogo.Client
	bucket string
}

// New creates a Source for cfg.Bucket.
func New(cfg Config) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Source{client: client, bucket: cfg.Bucket}, nil
}

// Bucket returns the bucket the source reads from.
func (s *Source) Bucket() string {
	return s.bucket
}

// ReadRange fetches exactly length bytes at offset. Anything shorter is an
// ErrIO.
func (s *Source) ReadRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("%w: %s: invalid range %d+%d", ports.ErrIO, key, offset, length)
	}
	if length == 0 {
		return []byte{}, nil
	}

	opts := miniogo.GetObjectOptions{}
	start, end := byteRange(offset, length)
	if err := opts.SetRange(start, end); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrIO, key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %v", ports.ErrIO, s.bucket, key, err)
	}
	defer obj.Close()

	buf := make([]byte, length)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, fmt.Errorf("%w: read %s/%s at %d+%d: %w", ports.ErrIO, s.bucket, key, offset, length, err)
	}
	return buf, nil
}

// List returns every object name under prefix, sorted.
func (s *Source) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for info := range s.client.ListObjects(ctx, s.bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("%w: list %s/%s: %v", ports.ErrIO, s.bucket, prefix, info.Err)
		}
		keys = append(keys, info.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the object size reported by the store.
func (s *Source) Size(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s/%s: %v", ports.ErrIO, s.bucket, key, err)
	}
	return info.Size, nil
}

// byteRange converts offset and length into the inclusive bounds of an HTTP
// Range header.
func byteRange(offset, length int64) (start, end int64) {
	return offset, offset + length - 1
}

var _ ports.SizedSource = (*Source)(nil)
