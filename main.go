package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"fitstudio/config"
	"fitstudio/cron"
	"fitstudio/database"
	coachRepo "fitstudio/database/repository/coach"
	contractRepo "fitstudio/database/repository/contract"
	customerRepo "fitstudio/database/repository/customer"
	ledgerlogRepo "fitstudio/database/repository/ledgerlog"
	seatRepo "fitstudio/database/repository/seat"
	traineeRepo "fitstudio/database/repository/trainee"
	triggerRepo "fitstudio/database/repository/trigger"
	"fitstudio/handlers"
	"fitstudio/middleware"
	"fitstudio/routes"
	"fitstudio/services/ledger"
	"fitstudio/services/notification"
	"fitstudio/services/scheduling"
	"fitstudio/services/trigger"
	"fitstudio/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	seats := seatRepo.NewMongoSeatRepo()
	trainees := traineeRepo.NewMongoTraineeRepo()
	contracts := contractRepo.NewMongoContractRepo()
	ledgerLog := ledgerlogRepo.NewMongoLedgerLogRepo()
	triggers := triggerRepo.NewMongoTriggerRepo()
	coaches := coachRepo.NewMongoCoachRepo()
	customers := customerRepo.NewMongoCustomerRepo()

	// services.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueue,
	})
	defer asynqClient.Close()

	dispatcher := notification.NewDefaultDispatcher(asynqClient, logger)
	briefs := notification.NewCoachBriefCache(utils.GetCacheClient(), coaches)

	ledgerService := &ledger.DefaultService{
		Contracts: contracts,
		Trainees:  trainees,
		Log:       ledgerLog,
		Logger:    logger,
	}

	engine := scheduling.NewDefaultEngine(
		seats,
		ledgerService,
		dispatcher,
		utils.NewRedisLocker(utils.GetLockClient()),
		&scheduling.RedisReportInvalidator{},
		logger,
	)

	resolver := &scheduling.DefaultResolver{
		Trainees: trainees,
		Seats:    seats,
	}

	triggerService := &trigger.DefaultService{
		Triggers: triggers,
		Engine:   engine,
		Resolver: resolver,
		Logger:   logger,
	}

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Auth:     handlers.NewAuthHandler(coaches, customers, logger),
		Schedule: handlers.NewScheduleHandler(engine, resolver, logger),
		Lesson:   handlers.NewLessonHandler(ledgerService, logger),
		Trigger:  handlers.NewTriggerHandler(triggerService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// background workers.
	cron.InitNotifyWorker(briefs, coaches, customers)
	cron.InitTriggerSweeper(triggerService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("forced shutdown: %v", err)
	}
	logger.Sugar().Info("Server stopped")
}
