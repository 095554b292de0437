package bootstrap

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/nazrin/tadikahub/internal/app/controllers"
	"github.com/nazrin/tadikahub/internal/app/models"
	appRepos "github.com/nazrin/tadikahub/internal/app/repositories"
	appRoutes "github.com/nazrin/tadikahub/internal/app/routes"
	appServices "github.com/nazrin/tadikahub/internal/app/services"
	"github.com/nazrin/tadikahub/internal/config"
	appMiddleware "github.com/nazrin/tadikahub/internal/middleware"
	pkgAuth "github.com/nazrin/tadikahub/internal/pkg/auth"
	"github.com/nazrin/tadikahub/internal/pkg/filestorage"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            appServices.AuthService
	RegistrationService    appServices.RegistrationService
	InvoiceService         appServices.InvoiceService
	AuthController         *appControllers.AuthController
	RegistrationController *appControllers.RegistrationController
	DocumentController     *appControllers.DocumentController
	InvoiceController      *appControllers.InvoiceController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	FileStorage            *filestorage.LocalStorage
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.Repos, err = appRepos.NewRepositories(cfg.Registration.DataDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize registration store")
		return nil, fmt.Errorf("failed to initialize registration store: %w", err)
	}

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Registration.UploadDir, cfg.Registration.MaxUploadSize)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.Auth.JWTSecret,
		AccessTokenExp: cfg.TokenExpiration(),
		TokenIssuer:    cfg.Auth.Issuer,
	})

	reviewer := models.Reviewer{
		Username:     cfg.Auth.ReviewerUsername,
		DisplayName:  cfg.Auth.ReviewerDisplayName,
		PasswordHash: cfg.Auth.ReviewerPasswordHash,
		RoleType:     models.RoleAdmin,
	}

	deps.AuthService = appServices.NewAuthService(reviewer, deps.JWTService)
	deps.RegistrationService = appServices.NewRegistrationService(deps.Repos.RegistrationRepository, deps.FileStorage)
	deps.InvoiceService = appServices.NewInvoiceService(cfg.Invoice)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.Logger)
	deps.RegistrationController = appControllers.NewRegistrationController(deps.RegistrationService, deps.Logger)
	deps.DocumentController = appControllers.NewDocumentController(deps.RegistrationService, deps.Logger)
	deps.InvoiceController = appControllers.NewInvoiceController(deps.InvoiceService, deps.Logger)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(appMiddleware.CORS())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.RegistrationController,
		deps.DocumentController,
		deps.InvoiceController,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
