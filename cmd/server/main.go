package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeevamani007/data-analysis-sub000/internal/api"
	"github.com/jeevamani007/data-analysis-sub000/internal/config"
	"github.com/jeevamani007/data-analysis-sub000/internal/history"
	"github.com/jeevamani007/data-analysis-sub000/internal/metrics"
	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/remote"
	"github.com/jeevamani007/data-analysis-sub000/internal/view"
	"github.com/jeevamani007/data-analysis-sub000/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		fmt.Printf("Failed to register metrics: %v\n", err)
		os.Exit(1)
	}

	// Run history is optional: the dashboard works without it.
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			fmt.Printf("Warning: run history disabled: %v\n", err)
		} else {
			defer store.Close()
		}
	}

	client := remote.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Timeout)

	var historian pipeline.Historian
	var reader api.HistoryReader
	if store != nil {
		historian = store
		reader = store
	}
	manager := pipeline.NewManager(client, historian, cfg.Runs.MaxRuns)

	// Background cleanup of abandoned runs.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Runs.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			manager.CleanupOldRuns(time.Duration(cfg.Runs.TimeoutMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics" ||
				strings.HasPrefix(path, "/static/") ||
				strings.HasSuffix(path, "/keepalive")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Request().URL.Path, "/msgpack")
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.SetupMiddleware(e)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Pipeline: manager,
		Renderer: view.NewRenderer(),
		History:  reader,
		Version:  Version,
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := web.RegisterStaticRoutes(e); err != nil {
		fmt.Printf("Failed to register static routes: %v\n", err)
		os.Exit(1)
	}

	s := &http.Server{
		Addr:         cfg.ServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	historyState := "disabled"
	if store != nil {
		historyState = cfg.History.Path
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Account Analysis Dashboard                      ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.ServerAddr())
	fmt.Printf("║  Analysis:  %-46s║\n", cfg.Analysis.BaseURL)
	fmt.Printf("║  History:   %-46s║\n", historyState)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)

	e.Logger.Fatal(e.StartServer(s))
}
