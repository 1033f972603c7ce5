// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

// S3Backend keeps each collection as one JSON object in a bucket.
//
// S3 offers no compare-and-swap here, so version checks are serialized by a
// process-local mutex. Run a single server instance against a given prefix.
type S3Backend struct {
	client s3iface.S3API
	bucket string
	prefix string
	mu     sync.Mutex
	now    func() time.Time
}

type s3Object struct {
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by,omitempty"`
	Checksum  string          `json:"checksum"`
	Items     json.RawMessage `json:"items"`
}

func NewS3Backend(cfg config.AWSConfig) (*S3Backend, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)
	}
	if cfg.Endpoint != "" {
		// S3-compatible stores (MinIO, localstack) need path-style addressing.
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3BackendWithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix), nil
}

func NewS3BackendWithClient(client s3iface.S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

func (b *S3Backend) objectKey(name models.CollectionName) string {
	return path.Join(b.prefix, string(name)+".json")
}

func (b *S3Backend) Load(ctx context.Context, name models.CollectionName) (*models.CollectionDocument, error) {
	obj, err := b.get(ctx, name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return emptyDocument(name), nil
	}
	return obj.document(name), nil
}

func (b *S3Backend) Store(ctx context.Context, doc *models.CollectionDocument, expected models.Version) (*models.CollectionDocument, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.get(ctx, doc.Name)
	if err != nil {
		return nil, err
	}

	var currentVersion int64
	if current != nil {
		currentVersion = current.Version
	}
	if err := checkVersion(doc.Name, expected, models.Version(currentVersion)); err != nil {
		return nil, err
	}

	// Marshal compacts embedded raw JSON; checksum the bytes as stored.
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection %s: %w", doc.Name, err)
	}
	obj := s3Object{
		Version:   currentVersion + 1,
		UpdatedAt: b.now().UTC(),
		UpdatedBy: doc.UpdatedBy,
		Checksum:  utils.Checksum(items),
		Items:     items,
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection %s: %w", doc.Name, err)
	}

	_, err = b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.objectKey(doc.Name)),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata: map[string]*string{
			"version": aws.String(strconv.FormatInt(obj.Version, 10)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload collection %s to S3: %w", doc.Name, err)
	}

	return obj.document(doc.Name), nil
}

func (b *S3Backend) get(ctx context.Context, name models.CollectionName) (*s3Object, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(name)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to download collection %s from S3: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	var obj s3Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", name, err)
	}
	if !utils.VerifyChecksum(obj.Items, obj.Checksum) {
		return nil, fmt.Errorf("collection %s: %w", name, ErrCorruptCollection)
	}
	return &obj, nil
}

func (o *s3Object) document(name models.CollectionName) *models.CollectionDocument {
	return &models.CollectionDocument{
		Name:      name,
		Version:   models.Version(o.Version),
		Items:     o.Items,
		UpdatedAt: o.UpdatedAt,
		UpdatedBy: o.UpdatedBy,
	}
}
