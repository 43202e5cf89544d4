package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/KasumiMercury/gauchoride-api/internal/config"
	"github.com/KasumiMercury/gauchoride-api/internal/health"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/metrics"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/middleware"
	"github.com/KasumiMercury/gauchoride-api/internal/reqlog"
	"github.com/KasumiMercury/gauchoride-api/internal/sysinfo"
)

const tracerName = "github.com/KasumiMercury/gauchoride-api/internal/api"

type Server struct {
	systemInfo  *SystemInfoHandler
	proxy       *FrontendProxyHandler
	checker     *health.Checker
	reqLogger   *reqlog.Logger
	httpMetrics *metrics.HTTPMetrics
	corsOrigins []string
	srv         *http.Server
}

type Deps struct {
	SystemInfo  *sysinfo.Provider
	Checker     *health.Checker
	ReqLogger   *reqlog.Logger
	HTTPMetrics *metrics.HTTPMetrics // optional
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	proxy, err := NewFrontendProxyHandler(cfg.FrontendProxyURL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		systemInfo:  NewSystemInfoHandler(deps.SystemInfo),
		proxy:       proxy,
		checker:     deps.Checker,
		reqLogger:   deps.ReqLogger,
		httpMetrics: deps.HTTPMetrics,
		corsOrigins: cfg.CORSAllowedOrigins,
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.HTTP(middleware.HTTPConfig{
		SkipPaths:      []string{"/health/live", "/health/ready"},
		Module:         logging.ModuleAPI,
		ModuleResolver: resolveModule,
		TracerName:     tracerName,
		Metrics:        s.httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryHTTP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Probes bypass the request log.
	r.Get("/health/live", s.checker.LiveHandler)
	r.Get("/health/ready", s.checker.ReadyHandler)
	grpcHealthPath, grpcHealthHandler := grpchealth.NewHandler(health.NewGRPCChecker(s.checker))
	r.Handle(grpcHealthPath+"*", grpcHealthHandler)

	routes := s.reqLogger.Routes(r)
	routes.Get("/api/systemInfo", getSystemInfo, s.systemInfo.GetSystemInfo)
	routes.Get("/*", proxyFrontend, s.proxy.Proxy)

	return r
}

// resolveModule tags frontend page loads apart from API calls.
func resolveModule(r *http.Request) logging.Module {
	if isAPIPath(r.URL.Path) {
		return logging.ModuleAPI
	}
	return logging.ModuleFrontend
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe blocks until the server stops; a graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
