package services

import (
	"context"
	"fmt"
	"log"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Service hands out presigned URLs for avatar assets. Avatar values in
// user records and presence payloads are keys into this bucket.
type S3Service struct {
	Client *s3.Client
	Bucket string
}

// InitializeS3Client initializes the S3 client
func InitializeS3Client(region string) *s3.Client {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg)
}

// GenerateUploadURL generates a presigned URL for uploading an avatar
func (s *S3Service) GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	key := fmt.Sprintf("avatars/%s-%s", time.Now().Format("20060102150405"), fileName)
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigner := s3.NewPresignClient(s.Client)
	presigned, err := presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", "", err
	}
	return presigned.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading an avatar
func (s *S3Service) GenerateReadURL(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presigner := s3.NewPresignClient(s.Client)
	presigned, err := presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}
