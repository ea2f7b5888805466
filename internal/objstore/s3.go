// Package objstore keeps uploaded documents in S3-compatible storage
// (AWS S3, Supabase Storage, MinIO).
package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cessadesk/cessadesk/internal/store"
)

type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// PublicBaseURL prefixes object paths to build retrievable URLs.
	// Defaults to <Endpoint>/<Bucket>, or the AWS bucket URL without an
	// endpoint.
	PublicBaseURL string
	PathStyle     bool
}

type S3Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

// NewS3Store builds a client from the default AWS chain, overridden by
// any static credentials and endpoint in cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objstore: load aws config: %w", err)
	}

	endpoint := awsCfg.BaseEndpoint
	if cfg.Endpoint != "" {
		endpoint = aws.String(strings.TrimRight(cfg.Endpoint, "/"))
	}
	client := s3.New(s3.Options{
		Region:       awsCfg.Region,
		Credentials:  awsCfg.Credentials,
		HTTPClient:   awsCfg.HTTPClient,
		BaseEndpoint: endpoint,
		UsePathStyle: cfg.PathStyle,
		// S3-compatible servers reject the trailing checksums newer SDKs send
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = defaultBase(aws.ToString(endpoint), awsCfg.Region, cfg.Bucket, cfg.PathStyle)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, publicBase: strings.TrimRight(base, "/")}, nil
}

// defaultBase is the bucket's own URL: under the custom endpoint when one
// is set, otherwise on AWS.
func defaultBase(endpoint, region, bucket string, pathStyle bool) string {
	if endpoint != "" {
		return endpoint + "/" + bucket
	}
	if region == "" {
		region = "us-east-1"
	}
	if pathStyle {
		return "https://s3." + region + ".amazonaws.com/" + bucket
	}
	return "https://" + bucket + ".s3." + region + ".amazonaws.com"
}

func (s *S3Store) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("objstore: put %s: %w", path, err)
	}
	return nil
}

func (s *S3Store) URL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicBase + "/" + strings.Join(segments, "/")
}

func (s *S3Store) Get(ctx context.Context, path string) ([]byte, string, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if missing(err) {
			return nil, "", fmt.Errorf("objstore: get %s: %w", path, store.ErrNotFound)
		}
		return nil, "", fmt.Errorf("objstore: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("objstore: read %s: %w", path, err)
	}
	return data, aws.ToString(resp.ContentType), nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("objstore: delete %s: %w", path, err)
	}
	return nil
}

func missing(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
