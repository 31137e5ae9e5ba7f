package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HushmKun/SeekerOfLight/internal/app/server"
	"github.com/HushmKun/SeekerOfLight/internal/config"
	"github.com/HushmKun/SeekerOfLight/internal/delivery/http"
	"github.com/HushmKun/SeekerOfLight/internal/delivery/http/controllers"
	"github.com/HushmKun/SeekerOfLight/internal/service"
	"github.com/HushmKun/SeekerOfLight/internal/service/auth"
	"github.com/HushmKun/SeekerOfLight/internal/service/catalog"
	"github.com/HushmKun/SeekerOfLight/internal/service/progress"
	"github.com/HushmKun/SeekerOfLight/internal/storage/elastic"
	"github.com/HushmKun/SeekerOfLight/internal/storage/minio_storage"
	"github.com/HushmKun/SeekerOfLight/internal/storage/postgres"
	"github.com/HushmKun/SeekerOfLight/internal/storage/redis"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	ctx := context.Background()

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		log.FatalErr("error applying migrations", err)
	}

	// The summary cache is an accelerator. A missing redis degrades to
	// computing summaries per request.
	var summaryCache *redis.SummaryCache
	redisClient, err := redis.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.ErrorErr("error connecting to redis, summary cache disabled", err)
	} else {
		defer redisClient.Close()
		summaryCache = redis.NewSummaryCache(redisClient, cfg.Redis.SummaryTTL)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	index := cfg.ES.Index
	if index == "" {
		index = elastic.LessonIndex
	}
	searchRepo := elastic.NewLessonSearchRepository(esClient, index)
	if err := searchRepo.CreateIndexIfNotExist(ctx); err != nil {
		log.FatalErr("error creating lesson index", err)
	}

	minioStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	mediaStorage, err := minio_storage.NewLessonMediaStorage(minioStorage, cfg.Minio.Bucket, cfg.Minio.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing media bucket", err)
	}

	catalogRepo := postgres.NewCatalogPostgres(pg.Pool)
	progressRepo := postgres.NewProgressPostgres(pg.Pool)
	userRepo := postgres.NewUserPostgres(pg.Pool)

	verifier := auth.NewVerifier(log, cfg.JWT.SecretKey, cfg.JWT.Issuer, userRepo)
	identity := controllers.NewIdentityProvider(log, verifier)

	var progressService *progress.ProgressService
	if summaryCache != nil {
		progressService = progress.NewProgressService(log, catalogRepo, progressRepo, summaryCache)
	} else {
		progressService = progress.NewProgressService(log, catalogRepo, progressRepo, nil)
	}
	catalogService := catalog.NewCatalogService(log, catalogRepo, progressRepo, mediaStorage, searchRepo)
	u := service.Collection{
		CatalogService:  catalogService,
		ProgressService: progressService,
	}

	r := http.InitRoutes(log, u, identity, verifier)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
