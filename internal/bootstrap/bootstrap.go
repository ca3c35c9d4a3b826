package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/skulz/skubackend/internal/app/controllers"
	appMigrations "github.com/skulz/skubackend/internal/app/migrations"
	appRepos "github.com/skulz/skubackend/internal/app/repositories"
	appRoutes "github.com/skulz/skubackend/internal/app/routes"
	appServices "github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/config"
	"github.com/skulz/skubackend/internal/db"
	appMiddleware "github.com/skulz/skubackend/internal/middleware"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	pkgAuth "github.com/skulz/skubackend/internal/pkg/auth"
	"github.com/skulz/skubackend/internal/pkg/filestorage"
	"github.com/skulz/skubackend/internal/pkg/logger"
	"github.com/skulz/skubackend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService       appServices.AuthService
	TenantService     appServices.TenantService
	SchoolService     appServices.SchoolService
	StudentService    appServices.StudentService
	ParentService     appServices.ParentService
	AcademicsService  appServices.AcademicsService
	TransportService  appServices.TransportService
	AttendanceService appServices.AttendanceService
	OnboardingService appServices.OnboardingService
	RecordService     appServices.RecordService

	Controllers appRoutes.Controllers

	AuthMiddleware   *appMiddleware.AuthMiddleware
	TenantMiddleware *appMiddleware.TenantMiddleware

	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Logger      zerolog.Logger
}

// referenceChecker adapts the parent, subject, grade and bus repositories
// to the school-scoped payload reference checks run before staging an
// onboarding request or enrolling a student.
type referenceChecker struct {
	parents  *appRepos.ParentRepository
	subjects *appRepos.SubjectRepository
	grades   *appRepos.GradeRepository
	buses    *appRepos.BusRepository
}

func (r referenceChecker) ParentsExist(ctx context.Context, schoolID int64, ids []int64) (bool, error) {
	return r.parents.ExistAll(ctx, schoolID, ids)
}

func (r referenceChecker) SubjectsExist(ctx context.Context, schoolID int64, ids []int64) (bool, error) {
	return r.subjects.ExistAll(ctx, schoolID, ids)
}

func (r referenceChecker) GradeExists(ctx context.Context, schoolID, gradeID int64) (bool, error) {
	if _, err := r.grades.GetByID(ctx, schoolID, gradeID); err != nil {
		if errors.Is(err, apperrors.ErrGradeNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r referenceChecker) BusExists(ctx context.Context, schoolID, busID int64) (bool, error) {
	if _, err := r.buses.GetByID(ctx, schoolID, busID); err != nil {
		if errors.Is(err, apperrors.ErrBusNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
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

// SetupDatabase establishes the database connection, runs migrations and
// seeds the baseline tenant data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Pool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		if err := seed.EnsureBaseline(context.Background(), database, lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to seed baseline data, proceeding anyway...")
		}
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services,
// controllers and the request middleware.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenExp(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.TenantService = appServices.NewTenantService(
		deps.Repos.SessionRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.SchoolRepository,
	)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.SchoolRepository,
		deps.Repos.SessionRepository,
		deps.TenantService,
		deps.JWTService,
		cfg.AccessTokenExp(),
	)

	refs := referenceChecker{
		parents:  deps.Repos.ParentRepository,
		subjects: deps.Repos.SubjectRepository,
		grades:   deps.Repos.GradeRepository,
		buses:    deps.Repos.BusRepository,
	}

	deps.SchoolService = appServices.NewSchoolService(deps.Repos.SchoolRepository)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.ParentRepository,
		deps.Repos.SubjectRepository,
		deps.Repos.GradeRepository,
		deps.Repos.BusRepository,
		deps.Repos.AddressRepository,
		refs,
		deps.FileStorage,
	)
	deps.ParentService = appServices.NewParentService(deps.Repos.ParentRepository, deps.Repos.AddressRepository)
	deps.AcademicsService = appServices.NewAcademicsService(deps.Repos.GradeRepository, deps.Repos.SubjectRepository)
	deps.TransportService = appServices.NewTransportService(deps.Repos.RouteRepository, deps.Repos.BusRepository)
	deps.AttendanceService = appServices.NewAttendanceService(deps.Repos.AttendanceRepository, deps.Repos.StudentRepository)
	deps.OnboardingService = appServices.NewOnboardingService(
		deps.Repos.OnboardingRepository,
		refs,
		deps.FileStorage,
		cfg.Onboarding.StrictRejectionReason,
	)
	deps.RecordService = appServices.NewRecordService(
		deps.Repos.RecordRepository,
		deps.Repos.StudentRepository,
		deps.Repos.OnboardingRepository,
		deps.FileStorage,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(
		deps.JWTService,
		deps.Repos.UserRepository,
		deps.Repos.SessionRepository,
	)
	deps.TenantMiddleware = appMiddleware.NewTenantMiddleware(deps.TenantService)

	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(
			deps.AuthService,
			deps.TenantService,
			deps.Repos.MembershipRepository,
			deps.Repos.SchoolRepository,
		),
		School:     appControllers.NewSchoolController(deps.SchoolService),
		Student:    appControllers.NewStudentController(deps.StudentService),
		Parent:     appControllers.NewParentController(deps.ParentService),
		Academics:  appControllers.NewAcademicsController(deps.AcademicsService),
		Transport:  appControllers.NewTransportController(deps.TransportService),
		Attendance: appControllers.NewAttendanceController(deps.AttendanceService),
		Onboarding: appControllers.NewOnboardingController(deps.OnboardingService),
		Record:     appControllers.NewRecordController(deps.RecordService),
	}

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

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.TenantMiddleware)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
