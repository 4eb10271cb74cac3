package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
)

// objectAPI is the slice of *s3.Client the gateway needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now = time.Now
)

// S3Gateway stores images in an S3-compatible bucket (AWS S3, MinIO).
type S3Gateway struct {
	client    objectAPI
	bucket    string
	publicURL string
	timeout   time.Duration
}

// NewS3Gateway builds a gateway with static credentials against the
// configured endpoint. Path-style addressing keeps MinIO happy.
func NewS3Gateway(ctx context.Context, c *config.Config) (*S3Gateway, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Gateway(client, c.S3Bucket, c.S3PublicURL, c.StorageTimeout), nil
}

func newS3Gateway(client objectAPI, bucket, publicURL string, timeout time.Duration) *S3Gateway {
	return &S3Gateway{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		timeout:   timeout,
	}
}

func (g *S3Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// EnsureBucket creates the bucket when HeadBucket says it is missing.
func (g *S3Gateway) EnsureBucket(ctx context.Context) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(g.bucket)})
	if err == nil {
		return nil
	}

	var nf *types.NotFound
	if !errors.As(err, &nf) {
		return fmt.Errorf("%w: head bucket %s: %v", common.ErrorDependency, g.bucket, err)
	}

	if _, err := g.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(g.bucket)}); err != nil {
		return fmt.Errorf("%w: create bucket %s: %v", common.ErrorDependency, g.bucket, err)
	}
	return nil
}

func (g *S3Gateway) Upload(ctx context.Context, f File, folder string) UploadResult {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	key := NewStorageKey(folder, f.Name, now())

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(int64(len(f.Data))),
	})
	if err != nil {
		return UploadResult{Err: fmt.Errorf("%w: put %s: %v", common.ErrorDependency, key, err)}
	}

	return UploadResult{URL: g.objectURL(key), Handle: key}
}

func (g *S3Gateway) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return fmt.Errorf("%w: empty storage handle", common.ErrorValidation)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrorDependency, handle, err)
	}
	return nil
}

func (g *S3Gateway) objectURL(key string) string {
	return g.publicURL + "/" + g.bucket + "/" + key
}
