package main

import (
	"context"
	"time"

	"crossport/api_schedule/internal/events"
	"crossport/api_schedule/internal/handlers"
	"crossport/api_schedule/internal/store"
	"crossport/api_schedule/pkg/cache"
	"crossport/api_schedule/pkg/clients/dispatcher"
	"crossport/api_schedule/pkg/config"
	"crossport/api_schedule/pkg/database"
	"crossport/api_schedule/pkg/kafka"
	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/middleware"
	"crossport/api_schedule/pkg/monitoring"
	"crossport/api_schedule/pkg/server"
	"crossport/api_schedule/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService("almanac")
	config.LoadEnv(logger)

	port := config.GetEnv("PORT", "18040")

	dbConfig := database.DefaultConfig()
	dbConfig.URL = config.RequireEnv("DATABASE_URL")
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	brokers := config.GetEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"})

	producer, err := kafka.NewProducer(brokers, "almanac", logger)
	if err != nil {
		logger.WithFields(logging.Fields{"error": err.Error()}).Fatal("Failed to create Kafka producer")
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(brokers, "almanac-lifecycle", "almanac", logger)
	if err != nil {
		logger.WithFields(logging.Fields{"error": err.Error()}).Fatal("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	healthChecker := monitoring.NewHealthChecker("almanac", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("almanac", version.Version, version.GitCommit)

	postsTotal, buildDuration, cacheEvents := metricsCollector.CreateSchedulingMetrics()
	scheduleMetrics := &handlers.ScheduleMetrics{
		Posts:         postsTotal,
		BuildDuration: buildDuration,
		CacheEvents:   cacheEvents,
	}

	calendarCache := cache.New(cache.Options{
		TTL:        config.GetEnvDuration("CALENDAR_CACHE_TTL", 5*time.Minute),
		MaxEntries: config.GetEnvInt("CALENDAR_CACHE_MAX_ENTRIES", 256),
	}, cache.Hooks{
		OnHit:   func(string) { scheduleMetrics.IncCache("hit") },
		OnMiss:  func(string) { scheduleMetrics.IncCache("miss") },
		OnEvict: func(string) { scheduleMetrics.IncCache("evict") },
	})

	dispatcherURL := config.GetEnv("DISPATCHER_URL", "http://localhost:18041")
	dispatcherClient := dispatcher.NewClient(dispatcher.Config{
		BaseURL:      dispatcherURL,
		ServiceToken: config.GetEnv("SERVICE_TOKEN", ""),
		Logger:       logger,
	})

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("kafka", monitoring.KafkaHealthCheck(producer.Client()))
	healthChecker.AddCheck("dispatcher", monitoring.HTTPServiceHealthCheck("dispatcher", dispatcherURL+"/health"))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":   dbConfig.URL,
		"DISPATCHER_URL": dispatcherURL,
	}))

	postStore := store.NewPostStore(db, logger)

	lifecycleHandler := events.NewLifecycleHandler(postStore, calendarCache, logger)
	consumer.AddHandler(kafka.TopicPostLifecycle, lifecycleHandler.Handle)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			logger.WithFields(logging.Fields{"error": err.Error()}).Error("Kafka consumer stopped")
		}
	}()

	app := server.SetupServiceRouter(logger, "almanac", healthChecker, metricsCollector)

	scheduleHandler := handlers.NewScheduleHandler(
		postStore,
		dispatcherClient,
		producer,
		calendarCache,
		logger,
		scheduleMetrics,
	)

	api := app.Group("/")
	if token := config.GetEnv("SERVICE_TOKEN", ""); token != "" {
		api.Use(middleware.ServiceAuthMiddleware(token))
	}
	api.POST("/schedule", scheduleHandler.Create)
	api.GET("/schedule", scheduleHandler.List)
	api.DELETE("/schedule/:id", scheduleHandler.Cancel)
	api.GET("/schedule/calendar", scheduleHandler.Calendar)

	serverConfig := server.DefaultConfig("almanac", port)
	if err := server.Start(serverConfig, app, logger); err != nil {
		logger.Fatal(err.Error())
	}
}
