package models

import "time"

// HistoryAction represents the kind of event a history entry records
type HistoryAction string

const (
	ActionCreated       HistoryAction = "created"
	ActionUpdated       HistoryAction = "updated"
	ActionStatusChanged HistoryAction = "status_changed"
	ActionCompleted     HistoryAction = "completed"
	ActionDeleted       HistoryAction = "deleted"
)

// TaskHistory is an append-only audit record of one task-affecting event.
// Rows are never updated or deleted; entries for deleted tasks keep
// referencing the removed task id.
type TaskHistory struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TaskID uint `json:"task_id" gorm:"column:task_id;index"`
	// UserID is nil for system-initiated events.
	UserID     *uint         `json:"user_id" gorm:"column:user_id"`
	Action     HistoryAction `json:"action" gorm:"not null"`
	FromStatus *TaskStatus   `json:"from_status" gorm:"column:from_status"`
	ToStatus   *TaskStatus   `json:"to_status" gorm:"column:to_status"`
	Timestamp  time.Time     `json:"timestamp" gorm:"not null"`
	Note       *string       `json:"note"`
	// UserName is filled from the users table on reads and never stored.
	UserName *string `json:"user_name" gorm:"-"`
}

// TableName specifies the table name for TaskHistory Model
func (TaskHistory) TableName() string {
	return "task_history"
}
