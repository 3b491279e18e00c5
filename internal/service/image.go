package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

// ImageStore persists decoded recipe images and returns a serveable reference.
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

// DecodeBase64Image parses an inline image payload, either a bare base64
// string or a "data:image/png;base64,..." data URL, and returns the image
// bytes and file extension.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	ext := "png"
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", validationErr("image", "malformed image data URL")
		}
		meta := parts[0]
		encoded = parts[1]

		switch {
		case strings.Contains(meta, "image/jpeg"), strings.Contains(meta, "image/jpg"):
			ext = "jpg"
		case strings.Contains(meta, "image/gif"):
			ext = "gif"
		case strings.Contains(meta, "image/png"):
			ext = "png"
		default:
			return nil, "", validationErr("image", "unsupported image type")
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", validationErr("image", "invalid base64 image payload")
	}
	if len(data) == 0 {
		return nil, "", validationErr("image", "empty image payload")
	}

	return data, ext, nil
}

// S3ImageStore uploads recipe images to S3 and returns the public URL.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	fileName := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName), nil
}

// LocalImageStore writes images to the media directory. Used when no S3
// bucket is configured, and in tests.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{dir: dir}
}

func (s *LocalImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	if err := os.MkdirAll(filepath.Join(s.dir, "recipes"), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	fileName := filepath.Join("recipes", fmt.Sprintf("%s.%s", uuid.New().String(), ext))
	if err := os.WriteFile(filepath.Join(s.dir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return "/media/" + filepath.ToSlash(fileName), nil
}
