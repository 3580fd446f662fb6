package bootstrap

import (
	"tidechain-backend/internal/config"
	"tidechain-backend/internal/interfaces/router"
	"tidechain-backend/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless deployments (the api handler
// imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Env, cfg.LogLevel)
	app, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	return app.Fiber, nil
}
