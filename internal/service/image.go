package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pantrypal/backend/config"
)

// ImageService stores recipe photos in S3 and hands back public URLs.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadRecipeImage uploads image data under a unique key and returns the
// public URL.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID uuid.UUID, imageData []byte, contentType string) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("%w: image data is empty", ErrValidation)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("recipe-images/%s/%s", recipeID, uuid.New())

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image for recipe %s: %w", recipeID, err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}
