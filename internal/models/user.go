package models

import "time"

// UserRole represents the role of a user
type UserRole string

const (
	RoleDeveloper UserRole = "Developer"
	RoleDesigner  UserRole = "Designer"
	RoleQA        UserRole = "QA"
	RoleManager   UserRole = "Manager"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleDeveloper, RoleDesigner, RoleQA, RoleManager:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Role      UserRole  `json:"role" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
