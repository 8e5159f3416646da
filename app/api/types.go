package api

import (
	"context"

	"github.com/pedrinsang/classboard/app/tasks"
)

type HealthChecker interface {
	Health(ctx context.Context) map[string]interface{}
}

type Handler struct {
	scheduler tasks.TaskSchedulerInterface
	cache     HealthChecker
	store     string
	version   string
}
