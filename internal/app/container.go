package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nekogravitycat/coaching-backend/internal/api"
	"github.com/nekogravitycat/coaching-backend/internal/appointment"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/availability"
	"github.com/nekogravitycat/coaching-backend/internal/blog"
	"github.com/nekogravitycat/coaching-backend/internal/file"
	"github.com/nekogravitycat/coaching-backend/internal/metrics"
	"github.com/nekogravitycat/coaching-backend/internal/offering"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/storage"
	"github.com/nekogravitycat/coaching-backend/internal/session"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *slog.Logger

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	SessionRequireFutureStart bool

	UploadDir      string
	UploadMaxBytes int64

	AuthRatePerMinute int
	AuthRateBurst     int

	MetricsEnabled bool
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	AuthLimiter *api.RateLimiter
}

// Close stops background workers owned by the container.
func (c *Container) Close() {
	c.AuthLimiter.Stop()
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	clk := clock.System()

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	var (
		collector *metrics.Collector
		gatherer  prometheus.Gatherer
		recorder  session.Recorder
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.NewCollector(reg)
		gatherer, recorder = reg, collector
	}

	// File Module
	fileService := file.NewService(file.NewPgxRepository(cfg.DBPool), store, clk, cfg.UploadMaxBytes)

	// User Module
	userService := user.NewService(user.NewPgxRepository(cfg.DBPool), passwordHasher, clk)

	// Availability Module
	availabilityService := availability.NewService(availability.NewPgxRepository(cfg.DBPool), userService, clk)

	// Session Module
	sessionService := session.NewService(
		session.NewPgxRepository(cfg.DBPool),
		availabilityService,
		userService,
		clk,
		session.Options{
			RequireFutureStart: cfg.SessionRequireFutureStart,
			Recorder:           recorder,
		},
	)

	// Offering Module
	offeringService := offering.NewService(offering.NewPgxRepository(cfg.DBPool), fileService)

	// Appointment Module
	appointmentService := appointment.NewService(appointment.NewPgxRepository(cfg.DBPool), offeringService, clk)

	// Blog Module
	blogService := blog.NewService(blog.NewPgxRepository(cfg.DBPool), fileService)

	authLimiter := api.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              cfg.Logger,
		Clock:               clk,
		UserService:         userService,
		AvailabilityService: availabilityService,
		SessionService:      sessionService,
		OfferingService:     offeringService,
		AppointmentService:  appointmentService,
		BlogService:         blogService,
		FileService:         fileService,
		JWTManager:          jwtManager,
		AuthLimiter:         authLimiter,
		Metrics:             collector,
		Gatherer:            gatherer,
	})

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		AuthLimiter: authLimiter,
	}, nil
}
