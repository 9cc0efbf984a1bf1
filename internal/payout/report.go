package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Settlement summarises one merchant's credit in a payout cycle.
type Settlement struct {
	MerchantID uuid.UUID   `json:"merchantId"`
	OrderIDs   []uuid.UUID `json:"orderIds"`
	Gross      float64     `json:"gross"`
	Fee        float64     `json:"fee"`
	Net        float64     `json:"net"`
}

// CycleReport is the archived record of a completed payout cycle.
type CycleReport struct {
	CycleID     uuid.UUID    `json:"cycleId"`
	RanAt       time.Time    `json:"ranAt"`
	Settlements []Settlement `json:"settlements"`
}

// ReportSink archives payout cycle reports.
type ReportSink interface {
	Write(ctx context.Context, report *CycleReport) error
}

// s3Sink writes cycle reports to an S3 bucket.
type s3Sink struct {
	client *s3.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Sink creates an S3-backed report sink.
func NewS3Sink(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (ReportSink, error) {
	logger = logger.With().Str("component", "s3-report-sink").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 report sink initialised")

	return &s3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (s *s3Sink) Write(ctx context.Context, report *CycleReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle report: %w", err)
	}

	key := s.prefix + report.RanAt.UTC().Format("2006/01/02/") + report.CycleID.String() + ".json"

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put cycle report to S3")
		return fmt.Errorf("failed to put cycle report to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Info().
		Str("key", key).
		Int("settlements", len(report.Settlements)).
		Msg("cycle report archived to S3")

	return nil
}

// fileSink writes cycle reports to the local file system. It is the fallback
// when S3 is disabled or unreachable.
type fileSink struct {
	dir    string
	logger zerolog.Logger
}

// NewFileSink creates a file-system-backed report sink.
func NewFileSink(dir string, logger zerolog.Logger) ReportSink {
	return &fileSink{
		dir:    dir,
		logger: logger.With().Str("component", "file-report-sink").Logger(),
	}
}

func (s *fileSink) Write(ctx context.Context, report *CycleReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle report: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(s.dir, report.CycleID.String()+".json")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write cycle report")
		return fmt.Errorf("failed to write cycle report: %w", err)
	}

	s.logger.Info().
		Str("path", path).
		Int("settlements", len(report.Settlements)).
		Msg("cycle report written")

	return nil
}
