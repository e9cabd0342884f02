package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	sc "github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
	"github.com/google/uuid"
)

const msgExportFailed = "Failed to export ToDo items."

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

// ExportLink points at an uploaded snapshot of a user's items.
type ExportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ItemCount int       `json:"itemCount"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService snapshots a user's items to object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		config:      config,
		log:         log.With("service", "export"),
		now:         time.Now,
	}
}

// ExportKey returns the object key for a new snapshot of userID's items.
func ExportKey(userID string) string {
	return fmt.Sprintf("exports/%s/%v.json", userID, uuid.New())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export uploads the caller's items as JSON and returns a presigned GET link.
func (s *ExportService) Export(ctx context.Context, callerUserID string) result.Result[*ExportLink] {
	if isBlank(callerUserID) {
		return result.Fail[*ExportLink](result.CodeBadRequest, msgCallerRequired)
	}

	var items []*models.ToDoItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		items, err = s.repomanager.ToDoItems(tx).ListByOwner(ctx, callerUserID)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "export list failed", "code", result.CodeListFault, "error", err)
		return result.Fail[*ExportLink](result.CodeListFault, msgListFailed)
	}

	link, err := s.upload(ctx, callerUserID, nonNil(items))
	if err != nil {
		s.log.Error(ctx, "export upload failed", "code", result.CodeExportFault, "error", err)
		return result.Fail[*ExportLink](result.CodeExportFault, msgExportFailed)
	}

	s.log.Info(ctx, "items exported", "user_id", callerUserID, "key", link.Key, "count", link.ItemCount)
	return result.OK(link)
}

func (s *ExportService) upload(ctx context.Context, userID string, items []*models.ToDoItem) (*ExportLink, error) {
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(userID)

	err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	validity := s.config.ExportURLValidityDuration
	req, err := presignGetObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &ExportLink{
		Key:       key,
		URL:       req.URL,
		ItemCount: len(items),
		ExpiresAt: s.now().Add(validity),
	}, nil
}
