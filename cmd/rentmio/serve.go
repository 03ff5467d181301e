package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/app"
	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/controllers"
	"github.com/mhsenam/rentmio/internal/middleware"
	"github.com/mhsenam/rentmio/internal/migrations"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/routes"
	"github.com/mhsenam/rentmio/internal/search"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/storage"
	"github.com/mhsenam/rentmio/internal/utils"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and its scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")
			return serve(cmd.Context(), skipMigrate)
		},
	}
	cmd.Flags().Bool("skip-migrate", false, "Do not apply pending migrations at startup")
	return cmd
}

func serve(ctx context.Context, skipMigrate bool) error {
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize app")
	}
	defer application.Close()

	if !skipMigrate {
		if _, err := migrations.Apply(ctx, application.DB); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	// Repositories
	propRepo := repositories.NewPropertyRepository(application.DB)
	profileRepo := repositories.NewProfileRepository(application.DB)
	identityRepo := repositories.NewIdentityRepository(application.DB)
	tokenRepo := repositories.NewTokenRepository(application.DB)
	favoriteRepo := repositories.NewFavoriteRepository(application.DB)
	conversationRepo := repositories.NewConversationRepository(application.DB)
	messageRepo := repositories.NewMessageRepository(application.DB)
	bookingRepo := repositories.NewBookingRepository(application.DB)
	reviewRepo := repositories.NewReviewRepository(application.DB)
	catalogRepo := repositories.NewCatalogRepository(application.DB)

	// Services
	optimizer := storage.NewImageOptimizer()
	notifier := services.NewNotifier(cfg)
	jwtService := services.NewJWTService(cfg, tokenRepo)
	searcher := search.NewSearcher(propRepo, application.TextIndex, application.Cache)

	authService := services.NewAuthService(cfg, identityRepo, profileRepo, tokenRepo, jwtService,
		services.NewGoogleVerifier(cfg.GoogleClientID), notifier, application.Blobs, optimizer)
	propertyService := services.NewPropertyService(propRepo, profileRepo, application.Blobs, optimizer,
		application.Events, searcher, application.Cache)
	favoriteService := services.NewFavoriteService(favoriteRepo, propRepo)
	conversationService := services.NewConversationService(conversationRepo, messageRepo, profileRepo, propRepo, notifier)
	bookingService := services.NewBookingService(bookingRepo, propRepo, profileRepo, notifier)
	reviewService := services.NewReviewService(reviewRepo, propRepo, profileRepo, application.Events)
	catalogService := services.NewCatalogService(catalogRepo, application.Cache)
	tokenCleanupService := services.NewTokenCleanupService(tokenRepo)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(ctx, identityRepo, propRepo, catalogRepo); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
		catalogService.Invalidate(ctx)
	}

	if application.Consumer != nil {
		if err := application.Consumer.Start(ctx); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to start property event consumer")
		}
	}

	// Controllers
	healthController := controllers.NewHealthController(application.DB)
	authController := controllers.NewAuthController(authService)
	propertyController := controllers.NewPropertyController(propertyService)
	favoriteController := controllers.NewFavoriteController(favoriteService)
	conversationController := controllers.NewConversationController(conversationService)
	bookingController := controllers.NewBookingController(bookingService)
	reviewController := controllers.NewReviewController(reviewService)
	catalogController := controllers.NewCatalogController(catalogService)

	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.PathPrefix(routes.Media + "/").Handler(
		http.StripPrefix(routes.Media+"/", http.FileServer(http.Dir(application.Blobs.Root()))),
	).Methods(http.MethodGet)
	router.HandleFunc(routes.AuthSignUp, authController.SignUpHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthLogin, authController.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthGoogle, authController.GoogleSignInHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthRefresh, authController.RefreshHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthLogout, authController.LogoutHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthPasswordReset, authController.PasswordResetHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthPasswordResetConfirm, authController.PasswordResetConfirmHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Properties, propertyController.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertiesFeatured, propertyController.FeaturedHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.CatalogCategories, catalogController.CategoriesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.CatalogExperiences, catalogController.ExperiencesHandler).Methods(http.MethodGet)

	// Optional auth: anonymous callers get an unauthenticated session
	optional := router.NewRoute().Subrouter()
	optional.Use(middleware.OptionalAuthMiddleware(cfg.RSAPublicKey))
	optional.HandleFunc(routes.Session, authController.SessionHandler).Methods(http.MethodGet)

	// Secured routes
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	secured.HandleFunc(routes.Profile, authController.GetProfileHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Profile, authController.UpdateProfileHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.PropertiesMine, propertyController.ListMineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Properties, propertyController.CreatePropertyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Property, propertyController.UpdatePropertyHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.Property, propertyController.DeletePropertyHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.PropertyReviews, reviewController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Favorites, favoriteController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Favorite, favoriteController.StatusHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Favorite, favoriteController.AddHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Favorite, favoriteController.RemoveHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.Conversations, conversationController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Conversations, conversationController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ConversationMessages, conversationController.ListMessagesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ConversationMessages, conversationController.SendMessageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ConversationRead, conversationController.MarkReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingQuote, bookingController.QuoteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Bookings, bookingController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingsMine, bookingController.ListMineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingsHost, bookingController.ListHostingHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingConfirm, bookingController.ConfirmHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingDecline, bookingController.DeclineHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingCancel, bookingController.CancelHandler).Methods(http.MethodPost)

	// {id} routes last so "featured" and "mine" are not read as ids
	router.HandleFunc(routes.Property, propertyController.GetPropertyHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyReviews, reviewController.ListHandler).Methods(http.MethodGet)

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(constants.PendingImagesSweepCronSpec, func() {
		if _, err := propertyService.SweepPendingImages(context.Background()); err != nil {
			utils.Logger.WithError(err).Error("Pending image sweep failed")
		}
	}); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule pending image sweep")
	}
	if _, err := c.AddFunc(constants.TokenCleanupCronSpec, func() {
		utils.Logger.Info("Running daily token cleanup job...")
		if err := tokenCleanupService.CleanupDaily(context.Background()); err != nil {
			utils.Logger.WithError(err).Error("Token cleanup failed")
		}
	}); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule daily token cleanup")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	addr := ":" + cfg.AppPort
	utils.Logger.Infof("%s is running on port %s", cfg.AppName, cfg.AppPort)
	return http.ListenAndServe(addr, co.Handler(router))
}
