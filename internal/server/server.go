// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "fittlyfans/docs" // swagger docs
	"fittlyfans/internal/bootstrap"
	"fittlyfans/internal/cache"
	"fittlyfans/internal/config"
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/realtime"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/service"
	"fittlyfans/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// bodySlack is added on top of the largest upload so multipart framing fits.
const bodySlack = 1 << 20

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens *middleware.TokenManager
	media  *storage.MediaStore
	hub    *realtime.Hub

	authService         *service.AuthService
	userService         *service.UserService
	profileService      *service.ProfileService
	experienceService   *service.ExperienceService
	exerciseService     *service.ExerciseService
	routineService      *service.RoutineService
	contentService      *service.ContentService
	commentService      *service.CommentService
	subscriptionService *service.SubscriptionService
	paymentService      *service.PaymentService
	conversationService *service.ConversationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	srv, err := NewServerWithDeps(cfg, rt.DB, rt.Redis)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return srv, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and cross-instance fanout
// are then skipped.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	media, err := storage.NewMediaStore(cfg.UploadDir, cfg.MaxVideoUploadBytes(), cfg.MaxImageUploadBytes())
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	trainerRepo := repository.NewTrainerRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	contentRepo := repository.NewContentRepository(db)

	store := cache.NewStore(redisClient)
	hub := realtime.NewHub(realtime.NewFanout(redisClient))

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("fittlyfans-api"),
		tokens:         middleware.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpirySeconds)*time.Second),
		media:          media,
		hub:            hub,
	}

	server.authService = service.NewAuthService(userRepo)
	server.userService = service.NewUserService(userRepo, store)
	server.profileService = service.NewProfileService(subscriberRepo, trainerRepo, store)
	server.experienceService = service.NewExperienceService(repository.NewExperienceRepository(db))
	server.exerciseService = service.NewExerciseService(exerciseRepo, media, store)
	server.routineService = service.NewRoutineService(routineRepo, repository.NewRoutineExerciseRepository(db), exerciseRepo)
	server.contentService = service.NewContentService(contentRepo, media, storage.NewImageProcessor())
	server.commentService = service.NewCommentService(repository.NewCommentRepository(db), contentRepo)
	server.subscriptionService = service.NewSubscriptionService(repository.NewSubscriptionRepository(db), userRepo)
	server.paymentService = service.NewPaymentService(repository.NewPaymentRepository(db))
	server.conversationService = service.NewConversationService(
		repository.NewConversationRepository(db),
		repository.NewMessageRepository(db),
		userRepo,
		hub,
	)

	return server, nil
}

// bodyLimit is the request ceiling handed to fiber.
func (s *Server) bodyLimit() int {
	limit := s.config.MaxVideoUploadBytes()
	if img := s.config.MaxImageUploadBytes(); img > limit {
		limit = img
	}
	return int(limit) + bodySlack
}

// newApp builds the fiber app with the shared error handler.
func (s *Server) newApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "FittlyFans API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				if fe.Code == fiber.StatusRequestEntityTooLarge {
					return models.RespondWithError(c, fe.Code, models.NewValidationError("request body too large"))
				}
				if fe.Code < fiber.StatusInternalServerError {
					return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
				}
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Uploaded media is embedded by the web client from another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/uploads", s.media.Root(), fiber.Static{MaxAge: 3600})

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	protected := api.Group("", s.AuthRequired())
	protected.Get("/auth/me", s.Me)

	users := protected.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	subscribers := protected.Group("/subscribers")
	subscribers.Post("/", s.CreateSubscriber)
	subscribers.Get("/", s.GetSubscribers)
	subscribers.Get("/:id", s.GetSubscriber)
	subscribers.Put("/:id", s.UpdateSubscriber)

	trainers := protected.Group("/trainers")
	trainers.Post("/", s.CreateTrainer)
	trainers.Get("/", s.GetTrainers)
	// Specific routes before generic /:id
	trainers.Get("/search", s.SearchTrainers)
	trainers.Get("/:id", s.GetTrainer)
	trainers.Put("/:id", s.UpdateTrainer)

	experiences := protected.Group("/experiences")
	experiences.Post("/", s.CreateExperience)
	experiences.Get("/", s.GetExperiences)
	experiences.Get("/search", s.SearchExperiences)
	experiences.Get("/:id", s.GetExperience)
	experiences.Put("/:id", s.UpdateExperience)
	experiences.Delete("/:id", s.DeleteExperience)

	exercises := protected.Group("/exercises")
	exercises.Post("/", s.CreateExercise)
	exercises.Get("/", s.GetExercises)
	exercises.Get("/search", s.SearchExercises)
	exercises.Get("/muscle-group/:group", s.GetExercisesByMuscleGroup)
	exercises.Get("/type/:type", s.GetExercisesByType)
	exercises.Post("/:id/video", s.UploadExerciseVideo)
	exercises.Get("/:id", s.GetExercise)
	exercises.Put("/:id", s.UpdateExercise)
	exercises.Delete("/:id", s.DeleteExercise)

	routines := protected.Group("/routines")
	routines.Post("/", s.CreateRoutine)
	routines.Get("/search", s.SearchRoutines)
	routines.Get("/trainer/:trainerId", s.GetRoutinesByTrainer)
	routines.Get("/difficulty/:level", s.GetRoutinesByDifficulty)
	routines.Get("/:id/exercises", s.GetRoutineExercises)
	routines.Post("/:id/exercises", s.AddRoutineExercise)
	// "order" must be registered before the :exerciseId wildcard
	routines.Put("/:id/exercises/order", s.ReorderRoutineExercises)
	routines.Put("/:id/exercises/:exerciseId", s.UpdateRoutineExercise)
	routines.Delete("/:id/exercises/:exerciseId", s.RemoveRoutineExercise)
	routines.Get("/:id", s.GetRoutine)
	routines.Put("/:id", s.UpdateRoutine)
	routines.Delete("/:id", s.DeleteRoutine)

	content := protected.Group("/content")
	content.Post("/", s.CreateContent)
	content.Get("/search", s.SearchContent)
	content.Get("/user/:userId", s.GetContentByUser)
	content.Get("/type/:type", s.GetContentByType)
	content.Post("/:id/image", s.UploadContentImage)
	content.Get("/:id", s.GetContent)
	content.Put("/:id", s.UpdateContent)
	content.Delete("/:id", s.DeleteContent)

	comments := protected.Group("/comments")
	comments.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Get("/content/:contentId", s.GetCommentsByContent)
	comments.Get("/user/:userId", s.GetCommentsByUser)
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.Post("/", s.Follow)
	subscriptions.Delete("/", s.Unfollow)
	subscriptions.Get("/check/mutual", s.CheckMutual)
	subscriptions.Get("/check", s.CheckFollowing)
	subscriptions.Get("/:userId/followers/count", s.CountFollowers)
	subscriptions.Get("/:userId/followers", s.GetFollowers)
	subscriptions.Get("/:userId/following/count", s.CountFollowing)
	subscriptions.Get("/:userId/following", s.GetFollowing)

	payments := protected.Group("/payments")
	payments.Post("/", s.CreatePayment)
	payments.Get("/mine", s.GetMyPayments)
	payments.Get("/stats", s.GetPaymentStats)
	payments.Get("/status/:status", s.GetPaymentsByStatus)
	payments.Get("/:id", s.GetPayment)
	payments.Put("/:id", s.UpdatePaymentStatus)

	conversations := protected.Group("/conversations")
	conversations.Post("/", s.CreateConversation)
	conversations.Get("/subscriber/:id", s.GetSubscriberConversations)
	conversations.Get("/trainer/:id", s.GetTrainerConversations)
	conversations.Get("/:id/messages", s.GetMessages)
	conversations.Put("/:id/read", s.MarkConversationRead)
	conversations.Put("/:id/state", s.UpdateConversationState)
	conversations.Get("/:id", s.GetConversation)
	conversations.Delete("/:id", s.DeleteConversation)

	messages := protected.Group("/messages")
	messages.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/unread", s.GetUnreadCount)
	messages.Delete("/:id", s.DeleteMessage)

	ws := protected.Group("/ws")
	ws.Get("/conversations/:id", s.ConversationStreamUpgrade, s.ConversationStream())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a nil
// client reports "disabled" without failing readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.Authenticate(s.tokens, s.userService.ResolvePrincipal)
}

// App builds the fully wired fiber app without listening.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		s.app = s.newApp()
		s.SetupMiddleware(s.app)
		s.SetupRoutes(s.app)
	}
	return s.app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	go func() {
		if err := s.hub.Run(s.shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			middleware.Logger.Error("conversation fanout stopped", slog.String("error", err.Error()))
		}
	}()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down websocket hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
