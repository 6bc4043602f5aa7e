package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkwell-blog/inkwell/blog/application"
	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/blog/persistence"
	"github.com/inkwell-blog/inkwell/internal/config"
	"github.com/inkwell-blog/inkwell/internal/rest"
	"github.com/inkwell-blog/inkwell/shared/blob"
	"github.com/inkwell-blog/inkwell/shared/cache"
	"github.com/inkwell-blog/inkwell/shared/db/sqlite"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob store")
	}

	postRepo, cleanup, err := newPostRepository(cfg, blobStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize record store")
	}
	defer cleanup()

	listCache, err := newListCache(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to cache")
	}

	postService := application.NewPostService(postRepo, listCache, cfg.CacheTTL)
	mediaStore := persistence.NewBlobMediaStore(blobStore)
	renderer := application.NewMarkdownRenderer()

	handler := rest.NewHandler(postService, mediaStore, renderer)
	router := rest.NewRouter(handler, cfg.IdentityHeader)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("record_backend", cfg.RecordBackend).
			Str("blob_backend", cfg.BlobBackend).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return blob.NewS3StoreFromConfig(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	default:
		return blob.NewFSStore(cfg.BlobDir)
	}
}

func newPostRepository(cfg *config.Config, blobStore blob.Store) (domain.PostRepository, func(), error) {
	switch cfg.RecordBackend {
	case config.RecordBackendBlob:
		return persistence.NewBlobPostRepository(blobStore), func() {}, nil
	default:
		sqlDB, err := sqlite.Open(&sqlite.Config{Path: cfg.SQLitePath})
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		}
		return persistence.NewSQLitePostRepository(sqlDB), cleanup, nil
	}
}

func newListCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("No redis address configured, list caching disabled")
		return cache.NewNopCache(), nil
	}
	return cache.NewRedisCacheFromAddr(ctx, cfg.RedisAddr)
}
