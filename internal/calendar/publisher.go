package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// S3API is the subset of the S3 client used by Publisher.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads .ics files so they can be linked from confirmation emails.
type Publisher struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewPublisher creates a Publisher. If bucket is empty, Publish is a no-op.
func NewPublisher(s3Client S3API, bucket string, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if publishing is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.bucket != "" && p.s3Client != nil
}

// ObjectKey is where the calendar file for an appointment is stored.
func ObjectKey(appointmentID string) string {
	return fmt.Sprintf("appointments/%s.ics", appointmentID)
}

// Publish writes ics for appointmentID and returns the s3:// location.
func (p *Publisher) Publish(ctx context.Context, appointmentID, ics string) (string, error) {
	if !p.Enabled() {
		return "", nil
	}
	key := ObjectKey(appointmentID)
	_, err := p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(p.bucket),
		Key:                aws.String(key),
		Body:               strings.NewReader(ics),
		ContentType:        aws.String("text/calendar; charset=utf-8"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", appointmentID+".ics")),
	})
	if err != nil {
		return "", fmt.Errorf("calendar: s3 put %s: %w", key, err)
	}
	p.logger.Info("published calendar file", "appointment_id", appointmentID, "s3_key", key)
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}
