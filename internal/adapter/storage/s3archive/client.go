// Package s3archive сохраняет события пользователей в S3-совместимое хранилище (MinIO, AWS S3).
package s3archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/GoArmGo/UserService/internal/config"
	"github.com/GoArmGo/UserService/internal/messaging/payloads"
)

const (
	keyPrefix         = "user-events"
	bucketWaitTimeout = 30 * time.Second
)

// Client архивирует события в бакет.
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	logger     *slog.Logger
}

// NewClient создает клиент по конфигурации и проверяет, что бакет существует.
// Отсутствующий бакет создается.
func NewClient(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	s3cfg := cfg.S3
	if s3cfg.AccessKeyID == "" || s3cfg.SecretAccessKey == "" || s3cfg.BucketName == "" || s3cfg.Endpoint == "" {
		return nil, errors.New("S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and S3_BUCKET_NAME must be set")
	}

	scheme := "http"
	if s3cfg.UseSSL {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, s3cfg.Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s3cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	c := &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: s3cfg.BucketName,
		logger:     logger,
	}

	if err := c.ensureBucket(ctx, s3cfg.Region); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Info("bucket not found, creating", "bucket", c.bucketName)

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	// us-east-1 нельзя указывать как LocationConstraint
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, bucketWaitTimeout); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created", "bucket", c.bucketName)
	return nil
}

// EventKey — ключ объекта для события: user-events/<user_id>/<unix-nanos>-<type>.json
func EventKey(event payloads.UserEvent) string {
	return fmt.Sprintf("%s/%s/%d-%s.json", keyPrefix, event.UserID, event.OccurredAt.UnixNano(), event.Type)
}

// ArchiveUserEvent сохраняет событие как JSON-объект и возвращает его ключ.
// Реализует ports.EventArchive.
func (c *Client) ArchiveUserEvent(ctx context.Context, event payloads.UserEvent) (string, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	key := EventKey(event)
	start := time.Now()
	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, c.bucketName, err)
	}

	c.logger.Info("event archived",
		"bucket", c.bucketName,
		"key", key,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return key, nil
}
