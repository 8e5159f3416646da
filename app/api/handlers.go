package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pedrinsang/classboard/app/tasks"
)

func NewHandler(scheduler tasks.TaskSchedulerInterface, cache HealthChecker, storeBackend, version string) *Handler {
	return &Handler{
		scheduler: scheduler,
		cache:     cache,
		store:     storeBackend,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"store":     h.store,
	}

	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.Stats(),
	})
}

func (h *Handler) APIRunJob(c *gin.Context) {
	taskType, err := tasks.ParseTaskType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown job type"})
		return
	}

	err = h.scheduler.Trigger(taskType)
	switch {
	case err == nil:
		slog.Info("Job triggered via API", "type", string(taskType))
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Job queued",
			"type":    taskType,
		})
	case errors.Is(err, tasks.ErrTaskRunning):
		c.JSON(http.StatusConflict, gin.H{"error": "Job is already queued or running"})
	default:
		slog.Error("Failed to trigger job", "type", string(taskType), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue job"})
	}
}
