package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"post-radar/domain/repository"
	"post-radar/infrastructure/cache"
	"post-radar/infrastructure/clients/translator"
	"post-radar/infrastructure/clients/twitter"
	"post-radar/infrastructure/configuration"
	"post-radar/infrastructure/logger"
	"post-radar/infrastructure/notifier"
	"post-radar/infrastructure/persistence"
	"post-radar/infrastructure/pubsub"
	"post-radar/infrastructure/servicebus"
	httpHandler "post-radar/interfaces/http"
	"post-radar/server"
	"post-radar/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	if err := persistence.EnsurePostSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring post schema")
		os.Exit(1)
	}

	memberRepository, trackedAccountRepository, settingsRepository, err := InitiateMemberStore()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Member store initialization failed")
		os.Exit(1)
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - raw snapshots will not be archived")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - raw snapshots will not be archived")
		mongoDb = nil
	} else {
		logger.GetLogger().Info("MongoDB connected successfully")
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - run summaries will not be published")
		pubSubClient = nil
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - run summaries will not be queued")
		azServiceBusClient = nil
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - concurrent runs will not be fenced")
		redisClient = nil
	}

	postRepository := persistence.NewPostRepository(psqlDb)
	runLogRepository := persistence.NewRunLogRepository(psqlDb)

	rawArchive := persistence.NewRawArchive(mongoDb, configuration.C.Database.Mongo.Name)
	runLock := cache.NewRunLock(redisClient)
	runNotifier := notifier.NewRunNotifier(
		pubsub.NewRunPubSub(pubSubClient),
		configuration.C.Pubsub.Topic,
		servicebus.NewRunServiceBus(azServiceBusClient),
		configuration.C.ServiceBus.Queue,
	)

	sourceFactory := twitter.NewSourceFactory(configuration.C.Source.BaseURL)

	fetchUsecase := usecase.NewFetchUsecase(
		postRepository,
		trackedAccountRepository,
		settingsRepository,
		runLogRepository,
		sourceFactory,
		usecase.WithRawArchive(rawArchive),
		usecase.WithRunLocker(runLock),
		usecase.WithRunNotifier(runNotifier),
		usecase.WithFetchLimit(configuration.C.Source.FetchLimit),
	)

	aiTranslator := translator.NewTranslator(settingsRepository)
	translateUsecase := usecase.NewTranslateUsecase(
		postRepository,
		runLogRepository,
		aiTranslator,
		usecase.WithTranslateConcurrency(configuration.C.Translate.Concurrency),
		usecase.WithTranslateNotifier(runNotifier),
	)

	threadUsecase := usecase.NewThreadUsecase(postRepository)

	fetchHandler := httpHandler.NewFetchHandler(fetchUsecase, runLogRepository)
	translateHandler := httpHandler.NewTranslateHandler(translateUsecase, runLogRepository)
	threadHandler := httpHandler.NewThreadHandler(threadUsecase)
	accountHandler := httpHandler.NewAccountHandler(trackedAccountRepository, settingsRepository)

	router := server.InitiateRouter(fetchHandler, translateHandler, threadHandler, accountHandler, memberRepository)

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
			// SSE responses stay open indefinitely, so no write timeout.
			ReadTimeout:  0,
			WriteTimeout: 0,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateMemberStore wires the member-side repositories. Production runs on
// MSSQL; local development uses the MySQL instance managed through gorm.
func InitiateMemberStore() (repository.IMember, repository.ITrackedAccount, repository.ISettings, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" || env == "production" || env == "prod" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, nil, nil, err
		}
		return persistence.NewMemberRepositoryMSSQL(mssql),
			persistence.NewTrackedAccountRepositoryMSSQL(mssql),
			persistence.NewSettingsRepositoryMSSQL(mssql),
			nil
	}

	db, err := persistence.NewNativeDb()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to the local database")
		return nil, nil, nil, err
	}
	return persistence.NewMemberRepository(db),
		persistence.NewTrackedAccountRepository(db),
		persistence.NewSettingsRepository(db),
		nil
}
