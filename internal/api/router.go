package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nekogravitycat/coaching-backend/internal/appointment"
	appointmentHttp "github.com/nekogravitycat/coaching-backend/internal/appointment/http"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/coaching-backend/internal/availability/http"
	"github.com/nekogravitycat/coaching-backend/internal/blog"
	blogHttp "github.com/nekogravitycat/coaching-backend/internal/blog/http"
	"github.com/nekogravitycat/coaching-backend/internal/file"
	fileHttp "github.com/nekogravitycat/coaching-backend/internal/file/http"
	"github.com/nekogravitycat/coaching-backend/internal/metrics"
	"github.com/nekogravitycat/coaching-backend/internal/offering"
	offeringHttp "github.com/nekogravitycat/coaching-backend/internal/offering/http"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/session"
	sessionHttp "github.com/nekogravitycat/coaching-backend/internal/session/http"
	"github.com/nekogravitycat/coaching-backend/internal/user"
	userHttp "github.com/nekogravitycat/coaching-backend/internal/user/http"
)

// Config carries everything NewRouter needs to mount the API.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger
	Clock        clock.Clock

	UserService         user.Service
	AvailabilityService availability.Service
	SessionService      session.Service
	OfferingService     offering.Service
	AppointmentService  appointment.Service
	BlogService         blog.Service
	FileService         file.Service
	JWTManager          *auth.JWTManager

	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter *RateLimiter
	// Metrics and Gatherer enable request metrics and GET /metrics when both are set.
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8081", // Swagger
}

func corsConfig(cfg Config) cors.Config {
	c := cors.DefaultConfig()
	if cfg.IsProduction {
		c.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		c.AllowOrigins = devOrigins
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	c.ExposeHeaders = []string{"Retry-After"}
	return c
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// NewRouter assembles global middleware and registers every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	// cors.New panics on an empty origin list; production without
	// PROD_ORIGINS simply serves no cross-origin clients.
	if corsCfg := corsConfig(cfg); len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil && cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	sysAdminMiddleware := RequireSystemAdmin(cfg.UserService)
	coachMiddleware := RequireRole(cfg.UserService, user.RoleCoach)
	var authLimiter gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		authLimiter = cfg.AuthLimiter.Middleware()
	}

	fileHandler := fileHttp.NewHandler(cfg.FileService)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService, cfg.UserService)
	sessionHandler := sessionHttp.NewHandler(cfg.SessionService, cfg.UserService, clk)
	offeringHandler := offeringHttp.NewHandler(cfg.OfferingService, fileHandler)
	appointmentHandler := appointmentHttp.NewHandler(cfg.AppointmentService, cfg.UserService)
	blogHandler := blogHttp.NewHandler(cfg.BlogService, fileHandler)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, sysAdminMiddleware, authLimiter)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware, coachMiddleware)
		sessionHttp.RegisterRoutes(v1, sessionHandler, authMiddleware)
		offeringHttp.RegisterRoutes(v1, offeringHandler, authMiddleware, sysAdminMiddleware)
		appointmentHttp.RegisterRoutes(v1, appointmentHandler, authMiddleware, sysAdminMiddleware)
		blogHttp.RegisterRoutes(v1, blogHandler, authMiddleware, sysAdminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)
	}

	return r
}
