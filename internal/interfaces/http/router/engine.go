package router

import (
	jwtauth "github.com/erp/credit/internal/infrastructure/auth"
	"github.com/erp/credit/internal/infrastructure/config"
	"github.com/erp/credit/internal/infrastructure/logger"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/erp/credit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIVersion is the prefix version of every API route
const APIVersion = "v1"

// Probe paths, mounted outside the API group
const (
	LivePath  = "/health"
	ReadyPath = "/ready"
)

// EngineConfig holds what NewEngine needs
type EngineConfig struct {
	Config *config.Config
	Logger *zap.Logger
	// JWT nil means actors come from request headers
	JWT           *jwtauth.JWTService
	MeterProvider *telemetry.MeterProvider
	Handlers      Handlers
}

// NewEngine builds the gin engine with the full middleware chain, the
// probes and every API route.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.Config.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Config.Telemetry.Enabled
	if name := cfg.Config.Telemetry.ServiceName; name != "" {
		tracing.ServiceName = name
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(tracing),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.MeterProvider, log),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.CORS(middleware.CORSConfigFrom(cfg.Config.HTTP)),
		middleware.BodyLimit(cfg.Config.HTTP.MaxBodySize),
	)

	engine.GET(LivePath, cfg.Handlers.System.Live)
	engine.GET(ReadyPath, cfg.Handlers.System.Ready)

	auth := middleware.Auth(middleware.AuthConfig{
		JWTService: cfg.JWT,
		SkipPaths:  []string{"/api/" + APIVersion + SystemInfoPath},
		Logger:     log,
	})
	r := NewRouter(engine,
		WithAPIVersion(APIVersion),
		WithAPIMiddleware(auth, middleware.SpanAttributes()),
	)
	r.Register(registrars(DomainGroups(cfg.Handlers))...)
	r.Setup()

	return engine, nil
}

func registrars(groups []*DomainGroup) []RouteRegistrar {
	out := make([]RouteRegistrar, len(groups))
	for i, g := range groups {
		out[i] = g
	}
	return out
}
