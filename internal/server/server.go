package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/webchat/config"
	"github.com/mohammad-safakhou/webchat/internal/chat"
	"github.com/mohammad-safakhou/webchat/internal/ratelimit"
	"github.com/mohammad-safakhou/webchat/internal/scrape"
	"github.com/mohammad-safakhou/webchat/provider"
)

// Run wires the pipeline and serves until the listener fails.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = newHTTPErrorHandler(baseLogger)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if cfg.RateLimit.Enabled {
		rdb, err := ratelimit.Conn(context.Background(), cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to quota store: %w", err)
		}
		limiter := ratelimit.New(ratelimit.NewRedisStore(rdb), cfg.RateLimit, nil)
		e.Use(RateLimit(limiter, cfg.RateLimit, baseLogger))
	}

	scraper, err := scrape.NewScraper(cfg.Scrape, nil)
	if err != nil {
		return err
	}
	llm, err := provider.NewProvider(provider.Groq, cfg.LLM)
	if err != nil {
		return err
	}
	svc := chat.NewService(scraper, llm, nil)

	api := e.Group("/api")
	ch := &ChatHandler{Service: svc, Logger: baseLogger}
	ch.Register(api)

	return e.Start(cfg.Server.Address)
}

// newHTTPErrorHandler renders every error as the uniform JSON body and
// logs one line per failure.
func newHTTPErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
}
