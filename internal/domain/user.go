package domain

import "time"

// Role determines visibility and mutation rights across the service.
type Role string

const (
	RoleEmployee   Role = "Employee"
	RoleAdmin      Role = "Admin"
	RoleTechnician Role = "Technician"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleTechnician:
		return true
	}
	return false
}

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User models an account in any of the three roles. PasswordHash never
// leaves the service boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Phone        string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
