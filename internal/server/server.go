// Package server assembles the HTTP API from its repositories and services.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/peony/config"
	"github.com/Ramsey-B/peony/internal/handlers"
	"github.com/Ramsey-B/peony/pkg/health"
	"github.com/Ramsey-B/peony/pkg/middleware"
	"github.com/Ramsey-B/peony/pkg/shop"
)

// Handlers are the route groups the server mounts under /api.
type Handlers struct {
	Shop    *handlers.ShopHandler
	Users   *handlers.UserHandler
	Account *handlers.AccountHandler
}

type Server struct {
	cfg    *config.Config
	echo   *echo.Echo
	logger ectologger.Logger
	http   *http.Server
}

// New builds the echo instance. A nil verifier trusts the X-User-ID header.
func New(cfg *config.Config, logger ectologger.Logger, verifier middleware.TokenVerifier, checker *health.Checker, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowCredentials: true,
	}))
	e.Use(middleware.Context(cfg.SupportedLocales, cfg.DefaultLocale, cfg.SessionCookieName))
	if verifier != nil {
		e.Use(middleware.Authentication(logger, verifier))
	} else {
		e.Use(middleware.TestAuth())
	}
	e.Use(middleware.Logger(logger))

	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	authed := api.Group("", middleware.RequireUser())
	h.Shop.RegisterRoutes(api)
	h.Users.RegisterRoutes(api, authed)
	h.Account.RegisterRoutes(authed)

	return &Server{
		cfg:    cfg,
		echo:   e,
		logger: logger,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           e,
			ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
			WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
			IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
			ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}
}

// QueryConfig is the storefront paging configuration.
func QueryConfig(cfg *config.Config) shop.QueryConfig {
	return shop.QueryConfig{DefaultPerPage: cfg.ShopDefaultPerPage, MaxPerPage: cfg.ShopMaxPerPage}
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start listens in the background. Listen failures after startup are logged.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.echo.StartServer(s.http); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server stopped")
		}
	}()
	s.logger.WithContext(ctx).Infof("Listening on %s", s.http.Addr)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
