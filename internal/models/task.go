package models

import "time"

// TaskStatus represents the lifecycle status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Ordinal returns the sort weight of a priority (Low=1 < Medium=2 < High=3).
// Unknown priorities sort below Low.
func (p TaskPriority) Ordinal() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Task represents a task in the system
type Task struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:'To Do'"`
	Priority    TaskPriority `json:"priority" gorm:"not null"`
	AssigneeID  uint         `json:"assignee_id" gorm:"column:assignee_id;index"`
	// AssigneeName is filled from the users table on reads and never stored.
	AssigneeName string    `json:"assignee_name" gorm:"-"`
	DueDate      *string   `json:"due_date" gorm:"column:due_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
