// Package archive stores incoming food photos in S3 for later review.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/mealtrace/mealtrace-bot/config"
)

// PhotoArchive keeps a copy of every analyzed photo. Archiving is best
// effort: a failure is logged and never blocks the analysis flow.
type PhotoArchive struct {
	s3cfg *config.S3Config
}

// New creates a PhotoArchive. A nil S3 config disables archiving.
func New(s3cfg *config.S3Config) *PhotoArchive {
	return &PhotoArchive{s3cfg: s3cfg}
}

// Enabled reports whether an archive bucket is configured.
func (a *PhotoArchive) Enabled() bool {
	return a != nil && a.s3cfg != nil
}

// Store uploads the photo under photos/<scope>/<uuid>.jpg and returns the
// object key.
func (a *PhotoArchive) Store(ctx context.Context, scope string, image []byte) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	key := fmt.Sprintf("photos/%s/%s.jpg", scope, uuid.New().String())
	_, err := a.s3cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.s3cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive photo: %w", err)
	}

	log.Printf("Archived photo for scope %s as %s", scope, key)
	return key, nil
}
