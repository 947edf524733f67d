package server

import (
	"context"
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/ryotarai/fwctl/pkg/firewall"
	"github.com/ryotarai/fwctl/pkg/utils"
	"log"
	"net/http"
	"sync"
)

// Server exposes a Firewall over a JSON HTTP API.
type Server struct {
	echo     *echo.Echo
	firewall firewall.Firewall
	logger   zerolog.Logger

	// serializes requests that change the firewall configuration
	mutex sync.Mutex
}

func New(logger zerolog.Logger, fw firewall.Firewall) *Server {
	s := &Server{
		echo:     echo.New(),
		firewall: fw,
		logger:   logger.With().Str("component", "server").Logger(),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.StdLogger = log.New(&utils.LoggerWriter{
		Logger: s.logger.With().Str("from", "http").Logger(),
		Level:  zerolog.WarnLevel,
	}, "", 0)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.logger.Info()
			if v.Error != nil {
				ev = s.logger.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	api.GET("/status", s.Status)
	api.POST("/toggle", s.Toggle)
	api.GET("/rules", s.Rules)
	api.POST("/rules", s.AddRule)
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Msgf("Listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
