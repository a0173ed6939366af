package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCatalogRefresh = "catalog.refresh"

const TaskInsightsCleanup = "insights.cleanup"

type CatalogRefreshPayload struct {
	Reason string `json:"reason"`
}

type InsightsCleanupPayload struct {
	RetentionDays int `json:"retentionDays"`
}

func NewCatalogRefreshTask(payload CatalogRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRefresh, data), nil
}

func ParseCatalogRefreshPayload(task *asynq.Task) (CatalogRefreshPayload, error) {
	var payload CatalogRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CatalogRefreshPayload{}, err
	}
	return payload, nil
}

func NewInsightsCleanupTask(payload InsightsCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInsightsCleanup, data), nil
}

func ParseInsightsCleanupPayload(task *asynq.Task) (InsightsCleanupPayload, error) {
	var payload InsightsCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return InsightsCleanupPayload{}, err
	}
	return payload, nil
}
