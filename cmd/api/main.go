package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/skulz/skubackend/internal/pkg/logger"
	"github.com/skulz/skubackend/internal/server"
)

// @title SkuBackend API
// @version 1.0
// @description Multi-tenant school administration backend: staff accounts, student onboarding, enrollment, attendance and transport.

// @contact.name API Support
// @contact.email support@skubackend.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	// A .env file is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file found, relying on process environment")
	}

	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
