package service

import (
	"context"
	"errors"
	"time"

	"taskboard-api/internal/models"

	"gorm.io/gorm"
)

// UserService manages users and their read projections.
type UserService struct {
	db *gorm.DB
}

// NewUserService returns a UserService bound to the given store.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	Name  string
	Email string
	Role  models.UserRole
}

// UpdateUserInput carries a partial user update; nil pointers are untouched
// fields.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *models.UserRole
}

// UserRecord is a user joined with the number of tasks currently assigned
// to them.
type UserRecord struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	CreatedAt     time.Time       `json:"created_at"`
	AssignedTasks int64           `json:"assigned_tasks"`
}

const userWithCountSelect = "users.id, users.name, users.email, users.role, users.created_at, " +
	"(SELECT COUNT(1) FROM tasks t WHERE t.assignee_id = users.id) AS assigned_tasks"

// Create validates the input and inserts the user. Emails must be unique.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validateUserName(in.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateRole(in.Role); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	user := models.User{Name: in.Name, Email: in.Email, Role: in.Role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &StorageError{Err: err}
	}
	return &user, nil
}

// Update applies a partial update. The email uniqueness check only runs when
// the email field is supplied.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "user", ID: id}
		}
		return nil, &StorageError{Err: err}
	}

	supplied := 0
	if in.Name != nil {
		if err := validateUserName(*in.Name); err != nil {
			return nil, err
		}
		user.Name = *in.Name
		supplied++
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		if err := s.checkEmailFree(ctx, *in.Email, id); err != nil {
			return nil, err
		}
		user.Email = *in.Email
		supplied++
	}
	if in.Role != nil {
		if err := validateRole(*in.Role); err != nil {
			return nil, err
		}
		user.Role = *in.Role
		supplied++
	}

	if supplied == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, &StorageError{Err: err}
	}
	return &user, nil
}

// Delete hard-deletes a user. Users with assigned tasks cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "user", ID: id}
		}
		return &StorageError{Err: err}
	}

	var assigned int64
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("assignee_id = ?", id).Count(&assigned).Error; err != nil {
		return &StorageError{Err: err}
	}
	if assigned > 0 {
		return &ValidationError{Reason: "cannot delete user with assigned tasks"}
	}

	if err := s.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// List returns all users with their assigned task counts, newest first.
func (s *UserService) List(ctx context.Context) ([]UserRecord, error) {
	records := make([]UserRecord, 0)
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select(userWithCountSelect).
		Order("users.created_at DESC").Order("users.id DESC").
		Scan(&records).Error
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return records, nil
}

// Get returns one user with their assigned task count.
func (s *UserService) Get(ctx context.Context, id uint) (*UserRecord, error) {
	var record UserRecord
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select(userWithCountSelect).
		Where("users.id = ?", id).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "user", ID: id}
		}
		return nil, &StorageError{Err: err}
	}
	return &record, nil
}

// checkEmailFree enforces case-sensitive email uniqueness before any write;
// excludeID skips the row being updated.
func (s *UserService) checkEmailFree(ctx context.Context, email string, excludeID uint) error {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return &StorageError{Err: err}
	}
	if count > 0 {
		return &ValidationError{Reason: "email already exists"}
	}
	return nil
}
