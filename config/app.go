package config

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"messenger-api/config/common"
	"messenger-api/config/logger"
	"messenger-api/handler"
	"messenger-api/mail"
	"messenger-api/middleware"
	"messenger-api/repository"
	"messenger-api/routes"
	"messenger-api/security"
	"messenger-api/storage"
	"messenger-api/usecase"
)

type AppConfig struct {
	*fiber.App
	*validator.Validate
	*logrus.Logger
	*common.Config
	*security.JWT
	DB        *gorm.DB
	Redis     *redis.Client
	AppLog    *logger.AppLogger
	Publisher mail.Publisher
	Storage   storage.ObjectStore
}

// RunServer wires every dependency from the configuration and serves until
// SIGINT or SIGTERM.
func RunServer(newConfig *common.Config) error {
	jwtService, err := security.NewJWT(newConfig)
	if err != nil {
		return err
	}

	log := NewLogger(newConfig)
	_, logDir := newConfig.GetLogConfig()
	appLog := logger.NewLogger(logDir)
	app := NewFiber(newConfig, log)

	newDB, err := NewDB(newConfig, appLog)
	if err != nil {
		return err
	}
	defer newDB.Close()
	if err := Migrate(newDB.GetDB()); err != nil {
		return fmt.Errorf("run migration: %w", err)
	}

	newRedis, err := NewRedis(newConfig)
	if err != nil {
		return err
	}
	defer newRedis.Close()

	var publisher mail.Publisher
	amqpConfig := newConfig.GetAmqpConfig()
	if amqpConfig.URL != "" {
		amqpPublisher, err := mail.NewAmqpPublisher(amqpConfig.URL, amqpConfig.Queue)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		log.Warn("AMQP_URL is not set, verification codes are only logged")
		publisher = &mail.LogPublisher{Log: appLog}
	}

	var objectStore storage.ObjectStore
	if minioConfig := newConfig.GetMinioConfig(); minioConfig.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(minioConfig)
		if err != nil {
			return err
		}
		objectStore = minioStore
	} else {
		log.Warn("MINIO_ENDPOINT is not set, image upload is disabled")
	}

	_, clientURL := newConfig.GetServerConfig()
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     clientURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Client-Secret",
		AllowCredentials: true,
	}))

	hub, err := App(&AppConfig{
		App:       app,
		Validate:  NewValidator(),
		Logger:    log,
		Config:    newConfig,
		JWT:       jwtService,
		DB:        newDB.GetDB(),
		Redis:     newRedis,
		AppLog:    appLog,
		Publisher: publisher,
		Storage:   objectStore,
	})
	if err != nil {
		return err
	}
	defer hub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port, _ := newConfig.GetServerConfig()
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + port)
	}()
	log.Infof("Listening on :%s", port)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Errorf("Failed to start server: %v", err)
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

// App registers routes on aC.App and returns the realtime hub so the caller
// can close it on shutdown.
func App(aC *AppConfig) (*handler.WebSocketHandler, error) {
	if aC.DB == nil || aC.Redis == nil {
		return nil, errors.New("app requires a database and a redis client")
	}
	if aC.JWT == nil {
		return nil, errors.New("app requires a JWT service")
	}

	newUserRepository := repository.NewUserRepository()
	newContactRepository := repository.NewContactRepository()
	newMessageRepository := repository.NewMessageRepository()

	redisConfig := aC.Config.GetRedisConfig()
	otpConfig := aC.Config.GetOtpConfig()
	otpStore, err := security.NewOtpStore(aC.Redis, redisConfig.Prefix, otpConfig)
	if err != nil {
		return nil, err
	}
	limiter, err := security.NewRateLimiter(aC.Redis, redisConfig.Prefix+":ratelimit", otpConfig.SendLimit, otpConfig.SendWindow)
	if err != nil {
		return nil, err
	}
	otpIssuer := usecase.NewOtpIssuer(otpStore, limiter, aC.Publisher, aC.AppLog)

	wsHandler := handler.NewWebSocketHandler(aC.DB, aC.AppLog, newContactRepository, newUserRepository, aC.JWT)

	newAuthUsecase := usecase.NewAuthUsecase(newUserRepository, aC.Validate, aC.DB, aC.AppLog, aC.JWT, otpIssuer)
	newUserUsecase := usecase.NewUserUsecase(newUserRepository, aC.Validate, aC.DB, aC.AppLog, otpIssuer)
	newContactUsecase := usecase.NewContactUsecase(newContactRepository, newUserRepository, newMessageRepository, aC.Validate, aC.DB, aC.AppLog, wsHandler)
	newMessageUsecase := usecase.NewMessageUsecase(newMessageRepository, newUserRepository, aC.Validate, aC.DB, aC.AppLog, wsHandler, aC.Storage)

	newMiddleware := middleware.NewMiddleware(aC.Config, aC.JWT, aC.Logger, aC.DB, newUserRepository)
	aC.App.Use(middleware.Metrics)

	route := routes.ConfigRoute{
		App:            aC.App,
		Middleware:     newMiddleware,
		AuthHandler:    handler.NewAuthHandler(newAuthUsecase, aC.Logger),
		UserHandler:    handler.NewUserHandler(newUserUsecase, aC.Logger),
		ContactHandler: handler.NewContactHandler(newContactUsecase, aC.Logger),
		MessageHandler: handler.NewMessageHandler(newMessageUsecase, aC.Logger),
		HealthHandler:  handler.NewHealthHandler(aC.DB, aC.Redis),
	}
	route.GetRoute()
	route.GetWebSocketRoute(wsHandler)
	return wsHandler, nil
}
