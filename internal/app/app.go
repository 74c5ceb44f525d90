package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	config "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/cfg"
	v1Http "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/delivery/v1/http"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/infrastructure/embedding"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/infrastructure/kafka"
	minioInfra "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/infrastructure/minio"
	s3Repo "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/minio"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/pgdb"
	pgdbConv "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/pgdb/converter/generated"
	qdrantRepo "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/qdrant"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/redis"
	redisConv "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/redis/converter/generated"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/usecase"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/clients"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/closer"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/postgres"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App связывает все слои приложения и управляет их жизненным циклом.
type App struct {
	cfg          *config.Config
	logger       logger.Logger
	closer       *closer.Closer
	httpSrv      *v1Http.Server
	outboxWorker *kafka.OutboxWorker
	imagesInfra  *minioInfra.MinioInfrastructure
	shutdownFn   context.CancelFunc
}

// NewApp собирает зависимости приложения: хранилища, инфраструктуру и usecase-слой.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)

	// Контекст фоновых работ (очистка MinIO), отменяется при завершении приложения
	shutdownCtx, shutdownFn := context.WithCancel(context.Background())

	db, err := initPGDB(log, cfg)
	if err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		log.Infof("Postgres pool closed")
		return nil
	})

	prConv := pgdbConv.NewProductConverterImpl()
	outboxConv := pgdbConv.NewOutboxEventConverterImpl()
	infoConv := redisConv.NewProductInfoConverterImpl()

	catalogRepo := pgdb.NewProductRepo(db.Pool, prConv)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, shutdownCtx)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	defer qdrantCancel()
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		if err := qdrantClient.Client.Close(); err != nil {
			return e.Wrap("qdrant close", err)
		}
		log.Infof("Qdrant client closed")
		return nil
	})

	vectorRepo := qdrantRepo.NewVectorRepo(qdrantClient.Client, cfg.Qdrant, log)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		if err := redisClient.Client.Close(); err != nil {
			return e.Wrap("redis close", err)
		}
		log.Infof("Redis client closed")
		return nil
	})

	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, log)

	embeddingService := embedding.NewEmbeddingService(cfg.Embedding, log)

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(initTimeout); err != nil {
		shutdownFn()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		if err := producer.Close(); err != nil {
			return e.Wrap("kafka producer close", err)
		}
		log.Infof("Kafka producer closed")
		return nil
	})

	outboxWorker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)

	productUC := usecase.NewProductUC(
		catalogRepo,
		outboxRepo,
		db.Pool,
		imagesInfra,
		cacheRepo,
		log,
	)
	recommendationUC := usecase.NewRecommendationUC(
		catalogRepo,
		vectorRepo,
		embeddingService,
		cacheRepo,
		log,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(productUC, recommendationUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:          cfg,
		logger:       log,
		closer:       cl,
		httpSrv:      httpSrv,
		outboxWorker: outboxWorker,
		imagesInfra:  imagesInfra,
		shutdownFn:   shutdownFn,
	}, nil
}

// Run запускает HTTP-сервер и outbox-воркер и блокируется до сигнала завершения.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(context.Background())
	a.outboxWorker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	workerCancel()
	a.outboxWorker.Stop()
	a.logger.Infof("Outbox worker stopped")

	if err := a.imagesInfra.WaitForCleanup(shutdownCtx); err != nil {
		a.logger.Warnf("MinIO cleanup error: %v", err)
	} else {
		a.logger.Infof("MinIO cleanup completed")
	}
	a.shutdownFn()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("Resource shutdown error: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(log logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
