package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pantrypal/backend/config"
	"github.com/pantrypal/backend/internal/api"
	"github.com/pantrypal/backend/internal/database"
	"github.com/pantrypal/backend/internal/queue"
	"github.com/pantrypal/backend/internal/repository"
	"github.com/pantrypal/backend/internal/router"
	"github.com/pantrypal/backend/internal/server"
	"github.com/pantrypal/backend/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "pantrypal-api").Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	esClient, err := database.NewElasticsearchClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to elasticsearch")
	}

	publisher, err := queue.NewKafkaPublisher(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to kafka")
	}
	defer publisher.Close()

	s3Config, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure s3")
	}

	recipeRepo := repository.NewRecipeRepository(db)
	cacheService := service.NewCacheService(redisClient, logger)
	searchService := service.NewSearchService(esClient, cfg.ESRecipeIndex, cfg.ESIngredientIndex)
	recipeService := service.NewRecipeService(recipeRepo, cacheService, searchService, publisher, logger)
	tokenService := service.NewTokenService(cfg.JWTSecret)
	imageService := service.NewImageService(s3Config)

	recipeHandler := api.NewRecipeHandler(recipeService, imageService, tokenService)
	ingredientHandler := api.NewIngredientHandler(recipeService)

	engine := router.SetupRouter(recipeHandler, ingredientHandler, logger)
	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ServerHost+":"+cfg.ServerPort).Msg("starting server")
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}
