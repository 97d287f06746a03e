package service

import (
	"context"
	"errors"
	"strings"

	"taskboard-api/internal/history"
	"taskboard-api/internal/models"

	"gorm.io/gorm"
)

// ActivityPublisher receives every recorded history entry after it has been
// committed, for live feeds. Implementations must not block.
type ActivityPublisher interface {
	Publish(entry models.TaskHistory)
}

// TaskService validates and applies task mutations, recording history as a
// side effect, and serves read-only task projections.
type TaskService struct {
	db       *gorm.DB
	activity ActivityPublisher
}

// NewTaskService returns a TaskService bound to the given store. activity
// may be nil when no live feed is attached.
func NewTaskService(db *gorm.DB, activity ActivityPublisher) *TaskService {
	return &TaskService{db: db, activity: activity}
}

// CreateTaskInput carries the fields accepted when creating a task. Empty
// description and due date are normalized to absent. Any caller-supplied
// status is ignored; tasks always start as To Do.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	AssigneeID  uint
	DueDate     string
}

// UpdateTaskInput carries a partial update. Nil pointers are untouched
// fields; a pointer to the empty string clears description or due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *uint
	DueDate     *string
}

// ListTasksOptions selects and orders the task list projection.
type ListTasksOptions struct {
	// Filter restricts to one status value; "All" or any non-status value
	// applies no restriction.
	Filter string
	// Search matches case-insensitively against the title substring and is
	// ignored when shorter than 3 characters.
	Search string
	// Sort is "created_at" (default) or "priority" (ordinal Low<Medium<High).
	Sort string
	// Order is "asc" or "desc" (default).
	Order string
}

// TaskDetail is a task joined with its full history, newest entries first.
type TaskDetail struct {
	models.Task
	History []models.TaskHistory `json:"history"`
}

// Create validates the input, inserts the task with status To Do, and
// appends the created history entry in the same transaction.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	desc, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}
	due, err := normalizeDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if err := validatePriority(in.Priority); err != nil {
		return nil, err
	}

	assignee, err := s.lookupAssignee(ctx, in.AssigneeID)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		Title:       in.Title,
		Description: desc,
		Status:      models.StatusTodo,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		DueDate:     due,
	}

	var entries []models.TaskHistory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		entries = history.Created(task.ID)
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	task.AssigneeName = assignee.Name
	s.publish(entries)
	return &task, nil
}

// Update applies a partial update. Untouched fields keep their values; an
// update with no supplied field is a no-op that records nothing. Exactly one
// updated or status_changed history entry is appended per effective update,
// plus one completed entry when the status moves from non-Done to Done.
func (s *TaskService) Update(ctx context.Context, id uint, in UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "task", ID: id}
		}
		return nil, &StorageError{Err: err}
	}

	prevStatus := task.Status
	supplied := 0

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		task.Title = *in.Title
		supplied++
	}
	if in.Description != nil {
		desc, err := normalizeDescription(*in.Description)
		if err != nil {
			return nil, err
		}
		task.Description = desc
		supplied++
	}
	if in.Status != nil {
		if err := validateStatus(*in.Status); err != nil {
			return nil, err
		}
		task.Status = *in.Status
		supplied++
	}
	if in.Priority != nil {
		if err := validatePriority(*in.Priority); err != nil {
			return nil, err
		}
		task.Priority = *in.Priority
		supplied++
	}
	if in.AssigneeID != nil {
		if _, err := s.lookupAssignee(ctx, *in.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = *in.AssigneeID
		supplied++
	}
	if in.DueDate != nil {
		due, err := normalizeDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
		supplied++
	}

	if supplied == 0 {
		s.attachAssigneeName(ctx, &task)
		return &task, nil
	}

	// Status comparison is an exact match over the closed enum; re-setting
	// the current status is a plain update, not a transition.
	entries := history.Updated(task.ID, history.Changes{
		StatusChanged: in.Status != nil && *in.Status != prevStatus,
		From:          prevStatus,
		To:            task.Status,
	})

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	s.attachAssigneeName(ctx, &task)
	s.publish(entries)
	return &task, nil
}

// Delete hard-deletes a task and appends the deleted history entry. History
// rows for the removed task are kept for audit.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "task", ID: id}
		}
		return &StorageError{Err: err}
	}

	entries := history.Deleted(task.ID)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Task{}, id).Error; err != nil {
			return err
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return &StorageError{Err: err}
	}

	s.publish(entries)
	return nil
}

// List returns tasks matching the options, joined with assignee names. The
// primary sort key is always followed by a stable id DESC tie-break.
func (s *TaskService) List(ctx context.Context, opts ListTasksOptions) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{})

	if status := models.TaskStatus(opts.Filter); status.Valid() {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(opts.Search); len(search) >= 3 {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	direction := "DESC"
	if strings.EqualFold(opts.Order, "asc") {
		direction = "ASC"
	}
	sortKey := "created_at"
	if opts.Sort == "priority" {
		sortKey = "CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 1 END"
	}

	var tasks []models.Task
	if err := query.Order(sortKey + " " + direction).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, &StorageError{Err: err}
	}

	s.attachAssigneeNames(ctx, tasks)
	return tasks, nil
}

// Get returns one task with its assignee name and full history.
func (s *TaskService) Get(ctx context.Context, id uint) (*TaskDetail, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "task", ID: id}
		}
		return nil, &StorageError{Err: err}
	}

	entries, err := s.History(ctx, id)
	if err != nil {
		return nil, err
	}

	s.attachAssigneeName(ctx, &task)
	return &TaskDetail{Task: task, History: entries}, nil
}

// History returns the audit trail for a task id, newest first. It works for
// deleted tasks too, whose entries outlive the task row.
func (s *TaskService) History(ctx context.Context, taskID uint) ([]models.TaskHistory, error) {
	var entries []models.TaskHistory
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("timestamp DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	s.attachUserNames(ctx, entries)
	return entries, nil
}

func (s *TaskService) lookupAssignee(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Reason: "assignee not found"}
		}
		return nil, &StorageError{Err: err}
	}
	return &user, nil
}

// attachAssigneeName enriches a single task; lookup failures leave the name
// empty rather than failing the read.
func (s *TaskService) attachAssigneeName(ctx context.Context, task *models.Task) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, task.AssigneeID).Error; err == nil {
		task.AssigneeName = user.Name
	}
}

func (s *TaskService) attachAssigneeNames(ctx context.Context, tasks []models.Task) {
	if len(tasks) == 0 {
		return
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return
	}
	nameByID := make(map[uint]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}
	for i := range tasks {
		tasks[i].AssigneeName = nameByID[tasks[i].AssigneeID]
	}
}

func (s *TaskService) attachUserNames(ctx context.Context, entries []models.TaskHistory) {
	if len(entries) == 0 {
		return
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return
	}
	nameByID := make(map[uint]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}
	for i := range entries {
		if entries[i].UserID == nil {
			continue
		}
		if name, ok := nameByID[*entries[i].UserID]; ok {
			entries[i].UserName = &name
		}
	}
}

func (s *TaskService) publish(entries []models.TaskHistory) {
	if s.activity == nil {
		return
	}
	for _, entry := range entries {
		s.activity.Publish(entry)
	}
}
