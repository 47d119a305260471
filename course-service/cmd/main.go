package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coursehub/course-service/internal/app/courses/config"
	"coursehub/course-service/internal/app/courses/handler"
	"coursehub/course-service/internal/app/courses/infrastructure"
	"coursehub/course-service/internal/app/courses/infrastructure/cache"
	"coursehub/course-service/internal/app/courses/infrastructure/identity"
	"coursehub/course-service/internal/app/courses/infrastructure/messaging"
	"coursehub/course-service/internal/app/courses/processor"
	"coursehub/course-service/internal/app/courses/repository"
	"coursehub/course-service/internal/app/courses/service"
	"coursehub/pkg/logger"
)

const serviceName = "course-service"

func main() {
	if err := config.LoadENV(); err != nil {
		fmt.Printf("Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(serviceName, logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, serviceName, logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	// === MONGODB ===
	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	// === REDIS (опционально) ===
	var courseCache infrastructure.CourseCache
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Str("address", cfg.Redis.Address()).Msg("Redis unavailable, course list cache disabled")
		} else {
			courseCache = redisCache
			defer redisCache.Close()
			logger.Info().Str("address", cfg.Redis.Address()).Dur("ttl", cfg.Redis.TTL).Msg("Connected to Redis")
		}
	}

	// === KAFKA (опционально) ===
	var publisher infrastructure.MessagePublisher
	if cfg.Kafka.Enabled() {
		kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = kafkaProducer
		defer kafkaProducer.Close()
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Initialized Kafka producer")
	}

	verifier, err := newIdentityVerifier(cfg.Auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize identity verifier")
	}

	courseService := service.NewCourseService(courseRepo, courseCache, publisher, cfg.Redis.TTL)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, courseCache, publisher)

	authMiddleware := handler.NewAuthMiddleware(verifier)
	router := handler.SetupRoutes(
		handler.NewCourseHandler(courseService),
		handler.NewEnrollmentHandler(enrollmentService),
		authMiddleware,
		handler.RouterOptions{
			CourseCreatePublic: cfg.Server.CourseCreatePublic,
			AllowOrigins:       cfg.Server.AllowOrigins,
		},
	)
	if cfg.Server.CourseCreatePublic {
		logger.Warn().Msg("POST /api/addcourse is public (COURSE_CREATE_PUBLIC=true)")
	}

	// === RECONCILER (опционально) ===
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	var reconciler *processor.StudentCountReconciler
	if cfg.Reconciler.Schedule != "" {
		reconciler = processor.NewStudentCountReconciler(courseRepo, enrollmentRepo, courseCache)
		if err := reconciler.Start(appCtx, cfg.Reconciler.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start student count reconciler")
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("auth_mode", cfg.Auth.Mode).
			Msg("Starting Course Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Course Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Reconciler останавливается до отключения от MongoDB (defer выше)
	if reconciler != nil {
		stopApp()
		reconciler.Stop()
	}

	logger.Info().Msg("Course Service stopped gracefully")
}

func newIdentityVerifier(cfg config.AuthConfig) (infrastructure.IdentityVerifier, error) {
	if cfg.Mode == config.AuthModeHMAC {
		logger.Warn().Msg("Using HS256 shared-secret tokens, not for production")
		return identity.NewHMACVerifier(cfg.JWTSecret), nil
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		var err error
		projectID, err = identity.ProjectIDFromCredentials(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
	}

	logger.Info().Str("project_id", projectID).Msg("Verifying Firebase ID tokens")
	return identity.NewFirebaseVerifier(projectID), nil
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		client, err = connectOnce(clientOptions)
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectOnce(clientOptions *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
