package service

import (
	"context"
	"time"

	"taskboard-api/internal/models"
)

const recentActivityLimit = 5

// DashboardMetrics summarizes the task population by status.
type DashboardMetrics struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"in_progress"`
}

// ActivityItem is one system-wide history entry joined with the task title
// and the acting user's name. Both joins are nullable: the task may have
// been deleted since, and system events carry no user.
type ActivityItem struct {
	TaskID    uint                 `json:"task_id"`
	TaskTitle *string              `json:"task_title"`
	Action    models.HistoryAction `json:"action"`
	UserName  *string              `json:"user_name"`
	Timestamp time.Time            `json:"timestamp"`
}

// DashboardSnapshot is the full dashboard payload.
type DashboardSnapshot struct {
	Metrics        DashboardMetrics `json:"metrics"`
	RecentActivity []ActivityItem   `json:"recent_activity"`
}

// Dashboard computes task counts and the most recent history entries
// system-wide.
func (s *TaskService) Dashboard(ctx context.Context) (*DashboardSnapshot, error) {
	db := s.db.WithContext(ctx)

	var metrics DashboardMetrics
	if err := db.Model(&models.Task{}).Count(&metrics.Total).Error; err != nil {
		return nil, &StorageError{Err: err}
	}
	if err := db.Model(&models.Task{}).Where("status = ?", models.StatusDone).Count(&metrics.Completed).Error; err != nil {
		return nil, &StorageError{Err: err}
	}
	if err := db.Model(&models.Task{}).Where("status = ?", models.StatusInProgress).Count(&metrics.InProgress).Error; err != nil {
		return nil, &StorageError{Err: err}
	}

	activity := make([]ActivityItem, 0, recentActivityLimit)
	err := db.Model(&models.TaskHistory{}).
		Select("task_history.task_id, tasks.title AS task_title, task_history.action, users.name AS user_name, task_history.timestamp").
		Joins("LEFT JOIN tasks ON tasks.id = task_history.task_id").
		Joins("LEFT JOIN users ON users.id = task_history.user_id").
		Order("task_history.timestamp DESC").Order("task_history.id DESC").
		Limit(recentActivityLimit).
		Scan(&activity).Error
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	return &DashboardSnapshot{Metrics: metrics, RecentActivity: activity}, nil
}
