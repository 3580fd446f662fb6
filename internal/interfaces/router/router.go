package router

import (
	"context"
	"net/http"
	"time"

	authsvc "tidechain-backend/internal/application/auth"
	emailsvc "tidechain-backend/internal/application/emails"
	healthsvc "tidechain-backend/internal/application/health"
	projectsvc "tidechain-backend/internal/application/projects"
	txsvc "tidechain-backend/internal/application/transactions"
	"tidechain-backend/internal/config"
	"tidechain-backend/internal/infrastructure/database"
	"tidechain-backend/internal/infrastructure/metrics"
	authhandler "tidechain-backend/internal/interfaces/handlers/auth"
	calchandler "tidechain-backend/internal/interfaces/handlers/calculator"
	healthhandler "tidechain-backend/internal/interfaces/handlers/health"
	projecthandler "tidechain-backend/internal/interfaces/handlers/projects"
	txhandler "tidechain-backend/internal/interfaces/handlers/transactions"
	"tidechain-backend/internal/middleware"
	"tidechain-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App is the wired HTTP application and the resources it owns.
type App struct {
	Fiber         *fiber.App
	DB            *gorm.DB
	Redis         *redis.Client
	Notifications *emailsvc.Notifications
}

// Close waits for pending emails and releases the Redis and DB pools.
func (a *App) Close() {
	a.Notifications.Wait()
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// CreateApp opens storage, seeds the admin account and mounts every route.
func CreateApp(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(opt)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	users := &database.UserRepository{DB: db}
	projectRepo := &database.ProjectRepository{DB: db}
	txRepo := &database.TransactionRepository{DB: db}
	tokens := authsvc.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	var notifications *emailsvc.Notifications
	if cfg.SendinblueAPIKey != "" {
		notifications = &emailsvc.Notifications{
			Sender:  &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom},
			Users:   users,
			BaseURL: cfg.PublicAPIURL,
		}
	}

	auth := &authsvc.Service{Users: users, Tokens: tokens}
	projects := projectsvc.NewService(projectRepo, m)
	purchases := txsvc.NewService(txRepo, projectRepo, m)
	purchases.EnforceInventory = cfg.EnforceInventory
	if notifications != nil {
		auth.Welcomer = notifications
		purchases.Notifier = notifications
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := auth.EnsureAdmin(seedCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             healthsvc.GormPinger{DB: db},
		HealthAdminKey: cfg.HealthAdminKey,
		Options:        healthsvc.Options{FrontendURL: cfg.FrontendURL},
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	requireAuth := middleware.RequireAuth(tokens, m)
	can := func(permission string) fiber.Handler {
		return middleware.AuthorizePermission(permission, m)
	}

	api := app.Group("/api/v1")

	ah := &authhandler.Handlers{Service: auth}
	api.Post("/auth/register", ah.Register)
	api.Post("/auth/login", ah.Login)
	api.Get("/auth/me", requireAuth, ah.Me)

	ph := &projecthandler.Handlers{Service: projects}
	api.Post("/projects", requireAuth, can(constants.CreateProject), ph.Create)
	api.Get("/projects/my", requireAuth, can(constants.ViewOwnProjects), ph.My)
	api.Get("/projects/verified", requireAuth, can(constants.ViewVerifiedProjects), ph.Verified)
	api.Get("/admin/projects", requireAuth, can(constants.ViewAllProjects), ph.List)
	api.Get("/admin/projects/:id", requireAuth, can(constants.ViewAllProjects), ph.Get)
	api.Put("/admin/projects/:id/status", requireAuth, can(constants.UpdateProject), ph.UpdateStatus)

	th := &txhandler.Handlers{Service: purchases}
	api.Post("/transactions", requireAuth, can(constants.PurchaseCredits), th.Purchase)
	api.Get("/transactions/my", requireAuth, can(constants.ViewOwnTransactions), th.My)
	api.Get("/transactions/:id/certificate", th.Certificate)
	api.Get("/transactions/:id/certificate.pdf", th.CertificatePDF)

	ch := &calchandler.Handlers{Metrics: m}
	api.Post("/calculator/emissions", ch.Emissions)

	log.Info().
		Str("env", cfg.Env).
		Str("db_driver", cfg.DatabaseDriver).
		Bool("redis", rdb != nil).
		Bool("emails", notifications != nil).
		Bool("enforce_inventory", cfg.EnforceInventory).
		Msg("application wired")

	return &App{Fiber: app, DB: db, Redis: rdb, Notifications: notifications}, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
