package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	EndpointURL     string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// Client is a thin wrapper around the AWS S3 client scoped to one bucket,
// used for model artifacts and live feed datasets.
type Client struct {
	logger *slog.Logger
	api    *awss3.Client
	dl     *manager.Downloader
	bucket string
}

func New(ctx context.Context, cnfg Config) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cnfg.Region))
	if cnfg.AccessKeyID != "" && cnfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cnfg.AccessKeyID, cnfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cnfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cnfg.EndpointURL)
			o.UsePathStyle = true // MinIO and friends
		}
	})

	return &Client{
		logger: slog.Default().With(slog.String("module", "s3")),
		api:    api,
		dl:     manager.NewDownloader(api),
		bucket: cnfg.Bucket,
	}, nil
}

// Fetch downloads one object into memory.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	c.logger.Debug("fetching object", slog.String("bucket", c.bucket), slog.String("key", key))

	buf := manager.NewWriteAtBuffer(nil)
	_, err := c.dl.Download(ctx, buf, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch s3://%s/%s: %w", c.bucket, key, err)
	}

	return buf.Bytes(), nil
}

// ListKeys returns all object keys under a prefix, excluding "directories".
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := awss3.NewListObjectsV2Paginator(c.api, &awss3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", c.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && !strings.HasSuffix(*obj.Key, "/") {
				keys = append(keys, *obj.Key)
			}
		}
	}

	c.logger.Debug("listed objects", slog.String("prefix", prefix), slog.Int("count", len(keys)))
	return keys, nil
}

// FetchReader is a convenience for callers that decode streams.
func (c *Client) FetchReader(ctx context.Context, key string) (*bytes.Reader, error) {
	data, err := c.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
