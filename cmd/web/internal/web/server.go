package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Brambles-cat/VoteValidator/internal/metadata"
)

// BatchFetcher resolves a batch of video URLs into ordered per-URL results.
// *metadata.Fetcher satisfies it.
type BatchFetcher interface {
	FetchAll(ctx context.Context, urls []string) []metadata.Result
}

type Webserver struct {
	*echo.Echo
	fetcher BatchFetcher
}

func NewWebserver(fetcher BatchFetcher) (*Webserver, error) {
	e := echo.New()

	webserver := &Webserver{
		Echo:    e,
		fetcher: fetcher,
	}

	webserver.registerRoutes()
	webserver.setupMiddleware()

	return webserver, nil
}

func (s *Webserver) setupMiddleware() {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit("1M"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))
}

func (s *Webserver) registerRoutes() {
	s.POST("/fetch", s.handleFetch)

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})
}

// handleFetch accepts an ordered JSON array of URL strings and responds with
// one result per URL, in order: a normalized record or {"Invalid": reason}.
func (s *Webserver) handleFetch(c echo.Context) error {
	var urls []string
	if err := c.Bind(&urls); err != nil {
		return c.String(http.StatusBadRequest, "invalid json")
	}

	results := s.fetcher.FetchAll(c.Request().Context(), urls)
	return c.JSON(http.StatusOK, results)
}
