// Package s3 implements blob.Store on an S3 compatible bucket. The object ETag is the
// version token and writes use If-Match / If-None-Match conditional requests.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"PartsKeeper/internal/blob"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// messageMetadataKey stores the change description next to the object.
const messageMetadataKey = "change-description"

// Config holds explicit construction parameters.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; custom endpoint (MinIO, tests)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
	HTTPClient      *http.Client // optional (tests)
}

// Store is a single-bucket S3 store. Keys map to object keys directly.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates an S3 store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	if cfg.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(cfg.HTTPClient))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3 compatible servers do not all accept streaming checksum trailers
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverS3 }

func (s *Store) Get(ctx context.Context, key string) (blob.Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return blob.Object{}, classify("get", key, "", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return blob.Object{}, blob.Transient("get", err)
	}
	return blob.Object{Key: key, Data: data, Version: trimETag(out.ETag)}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, opts blob.PutOptions) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.Message != "" {
		input.Metadata = map[string]string{messageMetadataKey: asciiMetadata(opts.Message)}
	}
	if opts.IfMatch != "" {
		input.IfMatch = aws.String(strconv.Quote(opts.IfMatch))
	} else {
		input.IfNoneMatch = aws.String("*")
	}
	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return "", classify("put", key, opts.IfMatch, err)
	}
	return trimETag(out.ETag), nil
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, "\"")
}

// asciiMetadata keeps user metadata within the US-ASCII range S3 accepts.
func asciiMetadata(s string) string {
	q := strconv.QuoteToASCII(s)
	return q[1 : len(q)-1]
}

func classify(op, key, expected string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return blob.ErrNotFound
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return blob.ErrNotFound
		case "PreconditionFailed", "ConditionalRequestConflict":
			return &blob.ConflictError{Key: key, Expected: expected}
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
			return fmt.Errorf("s3: %s %s: %w: %v", op, key, blob.ErrAuth, err)
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch code := respErr.HTTPStatusCode(); {
		case code == http.StatusNotFound:
			return blob.ErrNotFound
		case code == http.StatusPreconditionFailed || code == http.StatusConflict:
			return &blob.ConflictError{Key: key, Expected: expected}
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return fmt.Errorf("s3: %s %s: %w: %v", op, key, blob.ErrAuth, err)
		case code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout:
			return fmt.Errorf("s3: %s %s: %w", op, key, err)
		}
	}
	return blob.Transient(op, err)
}
