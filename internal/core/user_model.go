package core

import (
	"time"
)

// User is a staff member allowed to edit the books.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
