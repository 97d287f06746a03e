// Package history derives the audit entries a task mutation must append.
// It is pure: callers describe what changed and receive the ordered list of
// rows to insert, which keeps the completion-detection rule testable without
// touching storage.
package history

import (
	"time"

	"taskboard-api/internal/models"
)

// Changes describes the applied outcome of a task update.
type Changes struct {
	// StatusChanged is true only when the update moved the status to a
	// different value than before; setting the same status again does not
	// count as a transition.
	StatusChanged bool
	From          models.TaskStatus
	To            models.TaskStatus
}

func note(s string) *string { return &s }

// Created returns the single entry appended when a task is created.
func Created(taskID uint) []models.TaskHistory {
	to := models.StatusTodo
	return []models.TaskHistory{{
		TaskID:    taskID,
		Action:    models.ActionCreated,
		ToStatus:  &to,
		Timestamp: time.Now().UTC(),
		Note:      note("Task created"),
	}}
}

// Updated returns the entries appended for an applied update: exactly one
// status_changed or updated entry, plus one completed entry when the status
// moved from a non-Done value to Done. Moving away from Done never yields a
// completed entry.
func Updated(taskID uint, ch Changes) []models.TaskHistory {
	ts := time.Now().UTC()

	entry := models.TaskHistory{
		TaskID:    taskID,
		Action:    models.ActionUpdated,
		Timestamp: ts,
		Note:      note("Task updated"),
	}
	if ch.StatusChanged {
		from, to := ch.From, ch.To
		entry.Action = models.ActionStatusChanged
		entry.FromStatus = &from
		entry.ToStatus = &to
	}
	entries := []models.TaskHistory{entry}

	if ch.StatusChanged && ch.From != models.StatusDone && ch.To == models.StatusDone {
		from, to := ch.From, ch.To
		entries = append(entries, models.TaskHistory{
			TaskID:     taskID,
			Action:     models.ActionCompleted,
			FromStatus: &from,
			ToStatus:   &to,
			Timestamp:  ts,
			Note:       note("Task completed"),
		})
	}

	return entries
}

// Deleted returns the single entry appended when a task is removed. The
// entry keeps referencing the removed task id for audit purposes.
func Deleted(taskID uint) []models.TaskHistory {
	return []models.TaskHistory{{
		TaskID:    taskID,
		Action:    models.ActionDeleted,
		Timestamp: time.Now().UTC(),
		Note:      note("Task deleted"),
	}}
}
