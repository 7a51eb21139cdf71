package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	a "partyshare/party-api/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const minMultipartSize = 12 << 20

var ErrForeignRef = errors.New("reference is not managed by this store")

// Store persists photo bytes under a key and hands back the reference
// that ends up in the party's photos column
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// LocalStore keeps photos on disk. References are slash separated paths
// relative to the working directory, e.g. public/img/party/abc.png
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory, %w", err)
	}

	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := filepath.Join(s.Dir, key)

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("failed to write photo file, %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("failed to close photo file, %w", err)
	}

	return filepath.ToSlash(p), nil
}

// Delete removes the file behind ref. Files that are already gone are not
// an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	p := filepath.Clean(filepath.FromSlash(ref))
	if filepath.Dir(p) != filepath.Clean(s.Dir) {
		return fmt.Errorf("%w: %s", ErrForeignRef, ref)
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// S3Store uploads photos to a bucket. With a public URL configured the
// reference is the full object URL, otherwise it's the bare key.
type S3Store struct {
	S3        *a.S3Client
	PublicURL string
}

func NewS3Store(c *a.S3Client, publicURL string) *S3Store {
	return &S3Store{S3: c, PublicURL: strings.TrimRight(publicURL, "/")}
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	objectInput := &s3.PutObjectInput{
		Bucket:        s.S3.Bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if size > minMultipartSize {
		uploader := manager.NewUploader(s.S3.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = uploader.Upload(ctx, objectInput)
	} else {
		_, err = s.S3.C.PutObject(ctx, objectInput)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload photo to s3, %w", err)
	}

	return s.ref(key), nil
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key, ok := s.key(ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrForeignRef, ref)
	}

	_, err := s.S3.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.S3.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from s3, %w", err)
	}

	return nil
}

func (s *S3Store) ref(key string) string {
	if s.PublicURL == "" {
		return key
	}

	return s.PublicURL + "/" + key
}

func (s *S3Store) key(ref string) (string, bool) {
	if s.PublicURL == "" {
		return ref, ref != "" && path.Base(ref) == ref
	}

	key, ok := strings.CutPrefix(ref, s.PublicURL+"/")
	return key, ok && key != ""
}
