package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/markuplens/markuplens/internal/adapter/github"
	"github.com/markuplens/markuplens/internal/adapter/markup"
	"github.com/markuplens/markuplens/internal/adapter/store"
	"github.com/markuplens/markuplens/internal/analysis"
	"github.com/markuplens/markuplens/internal/handler"
	"github.com/markuplens/markuplens/internal/mcp"
	"github.com/markuplens/markuplens/internal/middleware"
	"github.com/markuplens/markuplens/internal/port"
	"github.com/markuplens/markuplens/internal/service"
	"github.com/markuplens/markuplens/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting MarkupLens",
		"port", cfg.Port,
		"github_api", cfg.GitHubAPIURL,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Storage ──────────────────────────────────────────────────────────
	var (
		historyStore port.Store
		auditWriter  middleware.AuditWriter
		auditStore   handler.AuditStore
	)
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		historyStore, auditWriter, auditStore = pgStore, pgStore, pgStore
	} else {
		memStore := store.NewMemoryStore()
		slog.Warn("DATABASE_URL not set, keeping history in memory only")
		historyStore, auditWriter, auditStore = memStore, memStore, memStore
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	githubClient := github.NewClient(github.ClientConfig{
		BaseURL:           cfg.GitHubAPIURL,
		Token:             cfg.GitHubToken,
		RequestsPerMinute: cfg.GitHubRequestsPerMinute,
		MaxFileSize:       cfg.ScanMaxFileSize,
	})
	parser := markup.NewParser()

	// ── Analysis Engine ──────────────────────────────────────────────────
	analyzer := analysis.NewAnalyzer(parser, analysis.SemanticElements)

	// ── Services ─────────────────────────────────────────────────────────
	scanService := service.NewScanService(githubClient, analyzer, historyStore, service.ScanOptions{
		Workers:  cfg.ScanWorkers,
		MaxRepos: cfg.ScanMaxRepos,
	})
	insightService := service.NewInsightService(historyStore)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(auditWriter))

	// ── Public Routes ────────────────────────────────────────────────────

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	api := app.Group("/api/v1", middleware.TokenAuth(cfg.APIToken))

	jobTracker := handler.NewJobTracker()

	scanHandler := handler.NewScanHandler(scanService, jobTracker, auditWriter)
	scanHandler.Register(api)

	jobsHandler := handler.NewJobsHandler(jobTracker)
	jobsHandler.Register(api)

	insightsHandler := handler.NewInsightsHandler(insightService)
	insightsHandler.Register(api)

	auditHandler := handler.NewAuditHandler(auditStore)
	auditHandler.Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(scanService, insightService, auditWriter, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
