package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config configures the S3 backend. Endpoint is only set for
// S3-compatible services such as MinIO.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type S3Store struct {
	client s3iface.S3API
	bucket string
	region string
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET is required for s3 storage")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return newS3Store(s3.New(sess), cfg.Bucket, cfg.Region), nil
}

func newS3Store(client s3iface.S3API, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (*StoredObject, error) {
	out, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: aws.String(s3.ServerSideEncryptionAes256),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", key, err)
	}

	return &StoredObject{
		Key:       key,
		URL:       fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		Bucket:    s.bucket,
		ETag:      strings.Trim(aws.StringValue(out.ETag), `"`),
		VersionID: aws.StringValue(out.VersionId),
	}, nil
}

func (s *S3Store) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return url, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}
