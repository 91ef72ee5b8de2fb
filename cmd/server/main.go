package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"transit/internal/app"
	"transit/internal/config"
	"transit/internal/events"
	"transit/internal/handler"
	"transit/internal/maps"
	internalRedis "transit/internal/redis"
	"transit/internal/repository/postgres"
	"transit/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, dispatcher, publisher := wireServer(db, redisClient, nrApp, cfg)
	if publisher != nil {
		defer publisher.Close()
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	dispatcher.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server, the
// dispatcher (for shutdown) and the Kafka publisher (may be nil).
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.Dispatcher, *events.KafkaPublisher) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	clientRepo := postgres.NewClientRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	transitRepo := postgres.NewTransitRepository(db)
	addressRepo := postgres.NewAddressRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	carTypeRepo := postgres.NewCarTypeRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	feeRepo := postgres.NewFeeRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)

	// Geocoding provider is optional; without it only pre-resolved
	// addresses work.
	var geocoder service.Geocoder
	if cfg.Maps.APIKey != "" {
		provider, err := maps.NewGeocodingService(cfg.Maps.APIKey)
		if err != nil {
			log.Printf("failed to initialize geocoding provider: %v", err)
		} else {
			geocoder = provider
		}
	}

	// Notification stream is optional; without brokers sends are only logged.
	var publisher *events.KafkaPublisher
	var notificationPublisher service.NotificationPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		notificationPublisher = publisher
		log.Printf("Kafka notifications enabled: topic=%s", cfg.Kafka.Topic)
	}

	// Initialize services.
	locks := service.NewTransitLockSet()
	notificationService := service.NewNotificationService(notificationPublisher)
	geocodingService := service.NewGeocodingService(addressRepo, geocoder, cacheStore, cfg.Maps.ResolverTimeout)
	geoSearchService := service.NewGeoSearchService(positionRepo)
	eligibilityService := service.NewEligibilityService()
	feeService := service.NewFeeService(feeRepo, transitRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	awardsLedger := service.NewLoggingAwardsLedger()
	driverService := service.NewDriverService(driverRepo, positionRepo)
	sessionService := service.NewSessionService(sessionRepo, driverRepo)
	carTypeService := service.NewCarTypeService(carTypeRepo)

	transitService := service.NewTransitService(
		db, transitRepo, driverRepo, clientRepo, addressRepo,
		geocodingService, feeService, invoiceService, awardsLedger,
		notificationService, locks,
	)
	dispatcher := service.NewDispatcher(
		cfg.Dispatch, transitRepo, driverRepo, sessionRepo, carTypeRepo,
		geocodingService, geoSearchService, eligibilityService,
		notificationService, lockStore, locks,
	)
	transitService.SetDispatcher(dispatcher)

	// Initialize handlers.
	transitHandler := handler.NewTransitHandler(transitService, invoiceService, transitRepo)
	driverHandler := handler.NewDriverHandler(driverService, sessionService, feeService)
	clientHandler := handler.NewClientHandler(clientRepo)
	carTypeHandler := handler.NewCarTypeHandler(carTypeService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TransitHandler: transitHandler,
		DriverHandler:  driverHandler,
		ClientHandler:  clientHandler,
		CarTypeHandler: carTypeHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, dispatcher, publisher
}
