// File: solobuddy/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solobuddy/config"
	"solobuddy/cron"
	"solobuddy/database"
	"solobuddy/database/repository"
	"solobuddy/handlers"
	"solobuddy/middleware"
	"solobuddy/routes"
	"solobuddy/services/booking"
	"solobuddy/services/guide"
	ai "solobuddy/services/intelligence"
	"solobuddy/services/notification"
	"solobuddy/services/review"
	"solobuddy/services/tasks"
	"solobuddy/services/tour"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const aiContextTTL = 30 * time.Minute

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	utils.StartHealthMonitor(appCtx, time.Minute,
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	// repositories.
	guideRepo := repository.NewMongoGuideRepo()
	tourRepo := repository.NewMongoTourRepo()
	reviewRepo := repository.NewMongoReviewRepo()
	schedulerRepo := repository.NewMongoSchedulerRepo()
	if err := repository.EnsureAllIndexes(guideRepo, tourRepo, reviewRepo, schedulerRepo); err != nil {
		logger.Fatal("main: failed to create indexes", zap.Error(err))
	}

	// background tasks.
	asynqClient := asynq.NewClient(cron.RedisOpt())
	defer asynqClient.Close()
	taskScheduler := tasks.NewAsynqScheduler(asynqClient)

	// services.
	currency := config.AppConfig.Currency
	guideService := guide.NewGuideService(
		guideRepo,
		schedulerRepo,
		guide.NewRedisIdentityCache(utils.GetAuthCacheClient()),
		currency,
		logger,
	)
	tourService := tour.NewTourService(tourRepo, currency, logger)
	reviewService := review.NewReviewService(reviewRepo, schedulerRepo, guideRepo, logger)

	payments := booking.NewStripeGateway(
		config.AppConfig.StripeKey,
		config.AppConfig.StripeWebhookSecret,
		config.AppConfig.FrontendURL,
	)
	bookingService := booking.NewBookingService(schedulerRepo, guideRepo, tourRepo, payments, taskScheduler, booking.Options{
		Currency:    currency,
		SessionTTL:  config.AppConfig.PaymentSessionTTL,
		ReaperGrace: config.AppConfig.ReaperGrace,
	}, logger)

	notificationService, err := notification.NewDefaultNotificationService(
		schedulerRepo,
		notification.NewLogMailer(config.AppConfig.MailFrom, logger),
		logger,
	)
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}
	worker := cron.InitBookingWorker(bookingService, notificationService, logger)

	gemini, err := ai.NewGeminiClient(appCtx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Fatal("main: failed to initialize Gemini client", zap.Error(err))
	}
	defer gemini.Close()
	aiService := ai.NewAIService(
		gemini,
		ai.NewRedisContextStore(utils.GetCacheClient(), aiContextTTL),
		guideService,
		logger,
	)

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	guideHandler := handlers.NewGuideHandler(guideService)
	tourHandler := handlers.NewTourHandler(tourService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	aiHandler := handlers.NewAIHandler(aiService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		GuideIdentity: guideService,

		// Booking endpoints.
		CreateBooking:       bookingHandler.CreateBooking,
		ListBookings:        bookingHandler.ListBookings,
		GetBooking:          bookingHandler.GetBooking,
		UpdateBookingStatus: bookingHandler.UpdateStatus,
		StripeWebhook:       bookingHandler.StripeWebhook,

		// Tour guide endpoints.
		UpdateAvailability: guideHandler.UpdateAvailability,
		SetWorkDays:        guideHandler.SetWorkDays,
		UpdateGuideProfile: guideHandler.UpdateProfile,
		GetGuide:           guideHandler.GetGuide,
		SearchGuides:       guideHandler.Search,

		// Tour endpoints.
		CreateTour:     tourHandler.Create,
		UpdateTour:     tourHandler.Update,
		DeleteTour:     tourHandler.Delete,
		GetTour:        tourHandler.Get,
		ListGuideTours: tourHandler.ListByGuide,

		// Review endpoints.
		CreateReview:     reviewHandler.Create,
		ListGuideReviews: reviewHandler.ListByGuide,

		// AI endpoints.
		AIAnswer: aiHandler.Answer,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	stopApp()
	if err := database.CloseDB(ctx); err != nil {
		logger.Error("main: failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
