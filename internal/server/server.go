package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New connects the backing stores, runs migrations and builds the router.
func New(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Rate limiting is optional; everything else works without it.
		log.Printf("Warning: failed to connect to Redis, rate limiting disabled: %v", err)
		redisClient = nil
	}

	var imageStore service.ImageStore
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		// Stored image URLs point straight at the bucket, so it has to
		// allow public reads.
		if err := s3Config.SetupBucketPolicy(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to apply bucket policy: %w", err)
		}
		imageStore = service.NewS3ImageStore(s3Config)
	} else {
		imageStore = service.NewLocalImageStore(cfg.MediaDir)
	}

	r := router.SetupRouter(db, cfg.JWTSecret, redisClient, imageStore)

	return &Server{
		router: r,
		db:     db,
		http: &http.Server{
			Addr:    ":" + cfg.ServerPort,
			Handler: r,
		},
	}, nil
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
