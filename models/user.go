package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User represents an account in the system (customer or one of the admin roles).
// Users are provisioned outside this service; orders only read them.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Subject   string         `gorm:"uniqueIndex;not null" json:"subject"` // token 'sub' claim
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string         `json:"phone"`
	Role      string         `gorm:"not null;default:'customer'" json:"role"` // customer, admin, super_admin
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may act on behalf of customers
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
