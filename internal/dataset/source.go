package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source fetches raw dataset bytes by path.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FSSource reads datasets from a file system such as os.DirFS.
type FSSource struct {
	FS fs.FS
}

// Fetch implements Source.
func (s FSSource) Fetch(_ context.Context, p string) ([]byte, error) {
	data, err := fs.ReadFile(s.FS, strings.TrimPrefix(path.Clean("/"+p), "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// HTTPSource fetches datasets relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns an HTTPSource with a bounded client timeout.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, p)
	if err != nil {
		return nil, fmt.Errorf("building dataset URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: status %d", u, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return data, nil
}

// ObjectSource reads datasets from an S3-compatible bucket.
type ObjectSource struct {
	client *minio.Client
	bucket string
}

// ObjectOptions configures NewObjectSource.
type ObjectOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewObjectSource creates a MinIO client for the dataset bucket.
func NewObjectSource(opts ObjectOptions) (*ObjectSource, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("object source needs a bucket")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object storage client: %w", err)
	}
	return &ObjectSource{client: client, bucket: opts.Bucket}, nil
}

// Fetch implements Source.
func (s *ObjectSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrap(key, err)
	}
	return data, nil
}

// Put uploads a dataset document under key, creating the bucket if needed.
func (s *ObjectSource) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
		}
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: "application/geo+json"})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

func (s *ObjectSource) wrap(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
	}
	return fmt.Errorf("reading s3://%s/%s: %w", s.bucket, key, err)
}
