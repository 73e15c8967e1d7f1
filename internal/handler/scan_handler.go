package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/middleware"
	"github.com/markuplens/markuplens/internal/service"
)

// ScanHandler handles scan endpoints.
type ScanHandler struct {
	scans   *service.ScanService
	tracker *JobTracker
	audit   middleware.AuditWriter
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scans *service.ScanService, tracker *JobTracker, audit middleware.AuditWriter) *ScanHandler {
	return &ScanHandler{scans: scans, tracker: tracker, audit: audit}
}

// Register sets up scan routes.
func (h *ScanHandler) Register(router fiber.Router) {
	router.Post("/scans", h.StartScan)
}

// StartScan accepts a scan request and returns 202 immediately. The scan
// runs in background; progress is available through the jobs endpoints.
func (h *ScanHandler) StartScan(c fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	username := strings.TrimSpace(body.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username is required"})
	}

	jobID := uuid.New().String()
	h.tracker.CreateJob(jobID, username)

	// Run the scan in background — NO HTTP connection held
	go h.runScanJob(jobID, username)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":   jobID,
		"username": username,
		"message":  "scan started",
	})
}

// runScanJob runs one scan in background, reporting progress to the tracker.
func (h *ScanHandler) runScanJob(jobID, username string) {
	ctx := context.Background()

	h.writeAudit(domain.AuditActionScanStart, jobID, map[string]interface{}{
		"username": username,
	})

	session, err := h.scans.ScanUser(ctx, username, func(repository string, done, total int) {
		h.tracker.UpdateProgress(jobID, repository, done, total)
	})
	if err != nil {
		slog.Error("scan job failed", "job_id", jobID, "username", username, "error", err)
		h.tracker.Fail(jobID, err.Error())
		return
	}

	h.tracker.Complete(jobID, session.ID)
	h.writeAudit(domain.AuditActionScanComplete, session.ID, map[string]interface{}{
		"username":     username,
		"repositories": session.TotalRepositories,
		"html_files":   session.TotalHTMLFiles,
	})
}

func (h *ScanHandler) writeAudit(action, resourceID string, details map[string]interface{}) {
	if h.audit == nil {
		return
	}
	detailsJSON, _ := json.Marshal(details)
	if err := h.audit.WriteAudit(action, "scan", resourceID, string(detailsJSON), "", ""); err != nil {
		slog.Error("failed to write audit log", "error", err)
	}
}
