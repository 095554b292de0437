package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/nazrin/tadikahub/internal/pkg/logger"
	"github.com/nazrin/tadikahub/internal/server"
)

// @title TadikaHub API
// @version 1.0
// @description Registration and invoicing backend for childcare centres

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	// A missing .env file is fine, environment variables still apply.
	_ = godotenv.Load()

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
