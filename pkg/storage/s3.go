package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/shashiranjanraj/enventory/config"
)

// S3Disk stores objects in an S3 (or S3-compatible) bucket.
type S3Disk struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Disk builds a client from S3_* configuration. A custom S3_ENDPOINT
// supports MinIO and other S3-compatible stores.
func NewS3Disk(ctx context.Context) (*S3Disk, error) {
	bucket := config.Get("S3_BUCKET", "")
	if bucket == "" {
		return nil, errors.New("storage: S3_BUCKET not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Get("S3_REGION", "us-east-1")),
	}
	if key := config.Get("S3_KEY", ""); key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, config.Get("S3_SECRET", ""), ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := config.Get("S3_ENDPOINT", ""); ep != "" {
			o.BaseEndpoint = &ep
			o.UsePathStyle = true
		}
	})

	baseURL := config.Get("S3_URL", "")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}

	return &S3Disk{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *S3Disk) Put(ctx context.Context, path string, contents []byte) error {
	return d.PutStream(ctx, path, bytes.NewReader(contents))
}

func (d *S3Disk) PutStream(ctx context.Context, path string, r io.Reader) error {
	key := strings.TrimLeft(path, "/")
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
		Body:   r,
	})
	return err
}

func (d *S3Disk) Get(ctx context.Context, path string) ([]byte, error) {
	rc, err := d.GetStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *S3Disk) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	key := strings.TrimLeft(path, "/")
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (d *S3Disk) Exists(ctx context.Context, path string) (bool, error) {
	key := strings.TrimLeft(path, "/")
	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *S3Disk) Delete(ctx context.Context, path string) error {
	key := strings.TrimLeft(path, "/")
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	return err
}

func (d *S3Disk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (d *S3Disk) Size(ctx context.Context, path string) (int64, error) {
	key := strings.TrimLeft(path, "/")
	out, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	if err != nil {
		return 0, err
	}
	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}
