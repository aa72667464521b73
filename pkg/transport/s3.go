package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetObjectAPI is the slice of the S3 client S3Fetcher needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads s3://bucket/key URLs. The request body is ignored.
type S3Fetcher struct {
	client  GetObjectAPI
	maxBody int64
}

// NewS3Fetcher creates a fetcher over client.
func NewS3Fetcher(client GetObjectAPI) *S3Fetcher {
	return &S3Fetcher{client: client, maxBody: DefaultMaxBody}
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region string
	// Endpoint overrides the service endpoint (MinIO, localstack).
	// Path-style addressing is used when it is set.
	Endpoint string
}

// NewS3Client builds an anonymous S3 client for public content buckets.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{
		Region:      opts.Region,
		Credentials: aws.AnonymousCredentials{},
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	}
	return s3.New(o)
}

// ErrBadS3URL is wrapped by NetworkError for malformed s3:// URLs.
var ErrBadS3URL = errors.New("s3 URL must be s3://bucket/key")

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", ErrBadS3URL
	}
	return u.Host, key, nil
}

// FetchText implements Fetcher.
func (f *S3Fetcher) FetchText(ctx context.Context, rawURL, _ string) (string, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", &NetworkError{URL: rawURL, Status: httpStatus(err), Err: fmt.Errorf("s3 get object: %w", err)}
	}
	defer out.Body.Close()

	data, err := readCapped(out.Body, f.maxBody)
	if err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}
	return string(data), nil
}

// httpStatus extracts the HTTP status carried by SDK response errors.
func httpStatus(err error) int {
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
