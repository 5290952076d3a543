package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store stores uploads in an S3 bucket.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := upload.NewS3Store(s3.NewFromConfig(cfg), "advisor-uploads", "avatars/", 10<<20)
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	maxSize   int64
	urlExpiry time.Duration
}

// NewS3Store creates an S3 upload store. prefix namespaces the keys
// ("avatars/"); maxSize of 0 means no limit.
func NewS3Store(client *s3.Client, bucket, prefix string, maxSize int64) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		maxSize:   maxSize,
		urlExpiry: 24 * time.Hour,
	}
}

// WithURLExpiry sets how long presigned URLs stay valid.
func (s *S3Store) WithURLExpiry(d time.Duration) *S3Store {
	s.urlExpiry = d
	return s
}

// Save uploads the content under a fresh random key.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*File, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrTooLarge
	}

	// Buffered so the size cap applies to actual bytes; avatars are
	// small enough that streaming multipart is not worth its weight.
	var buf bytes.Buffer
	reader := r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(&buf, reader)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && written > s.maxSize {
		return nil, ErrTooLarge
	}

	id := newFileID()
	name := sanitizeFilename(filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + id),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload: s3 put: %w", err)
	}

	return &File{
		ID:          id,
		Filename:    name,
		ContentType: contentType,
		Size:        written,
		URL:         s.presign(ctx, id),
	}, nil
}

// Open returns a stored file and its content.
func (s *S3Store) Open(ctx context.Context, id string) (*File, io.ReadCloser, error) {
	if !validFileID(id) {
		return nil, nil, ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + id),
	})
	if err != nil {
		return nil, nil, ErrNotFound
	}

	f := &File{
		ID:          id,
		Filename:    out.Metadata["original-filename"],
		ContentType: "application/octet-stream",
		URL:         s.presign(ctx, id),
	}
	if out.ContentType != nil {
		f.ContentType = *out.ContentType
	}
	if out.ContentLength != nil {
		f.Size = *out.ContentLength
	}
	if f.Filename == "" {
		f.Filename = id
	}
	return f, out.Body, nil
}

// Remove deletes a stored object.
func (s *S3Store) Remove(ctx context.Context, id string) error {
	if !validFileID(id) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + id),
	})
	if err != nil {
		return fmt.Errorf("upload: s3 delete: %w", err)
	}
	return nil
}

// presign builds a direct-access URL; empty on failure, which only
// costs the client the fallback through ServeFile.
func (s *S3Store) presign(ctx context.Context, id string) string {
	presigner := s3.NewPresignClient(s.client)
	out, err := presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.prefix + id),
		},
		s3.WithPresignExpires(s.urlExpiry),
	)
	if err != nil {
		return ""
	}
	return out.URL
}
