package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/profrate/internal/app/auth"
	appControllers "github.com/yigit/profrate/internal/app/controllers"
	appMigrations "github.com/yigit/profrate/internal/app/migrations"
	appRepos "github.com/yigit/profrate/internal/app/repositories"
	appRoutes "github.com/yigit/profrate/internal/app/routes"
	appServices "github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/config"
	"github.com/yigit/profrate/internal/db"
	appMiddleware "github.com/yigit/profrate/internal/middleware"
	pkgAuth "github.com/yigit/profrate/internal/pkg/auth"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store             appRepos.Store
	Services          *appServices.Services
	JWTService        *pkgAuth.JWTService
	Sessions          *appAuth.SessionManager
	AuthMiddleware    *appMiddleware.AuthMiddleware
	AuthController    *appControllers.AuthController
	RatingController  *appControllers.RatingController
	CatalogController *appControllers.CatalogController
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(config.ResolvePath(configPath))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := SetupLogger(cfg)
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupLogger configures the global logger from cfg and returns it
func SetupLogger(cfg *config.Config) zerolog.Logger {
	return logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
}

// SetupDatabase opens the configured database and applies migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.Migrate(database.DB, database.Dialect); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes services, session handling and controllers
// on top of store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}

	hasher := pkgAuth.NewPasswordHasher(cfg.Auth.BcryptCost)
	deps.Services = appServices.NewServices(store, hasher, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    cfg.SessionMaxAge(),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.Sessions = appAuth.NewSessionManager(appAuth.SessionConfig{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.SessionMaxAge(),
		Secure:     cfg.Session.Secure,
	}, deps.JWTService, store.Repositories().Tokens, store.Repositories().Users)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Sessions)

	deps.AuthController = appControllers.NewAuthController(deps.Services.Auth, deps.Sessions, lgr)
	deps.RatingController = appControllers.NewRatingController(deps.Services.Ratings, lgr)
	deps.CatalogController = appControllers.NewCatalogController(deps.Services.Catalog)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := appRoutes.NewEngine()
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.RatingController,
		deps.CatalogController,
		deps.AuthMiddleware,
	)
	return router
}

// ParseDuration parses value, falling back to def when it is empty or invalid
func ParseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
