package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrNameTooShort       = apperror.New(http.StatusBadRequest, "name must be at least 2 characters")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 6 characters")
	ErrPasswordTooLong    = apperror.New(http.StatusBadRequest, "password must be at most 72 bytes")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "role must be coach or client")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
)

// Role distinguishes coaches, who publish availability and receive sessions,
// from clients, who book them.
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCoach || r == RoleClient
}

const (
	MinNameLength     = 2
	MinPasswordLength = 6
)

// User represents a user in the system.
type User struct {
	ID            string // UUID
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	IsActive      bool
	IsSystemAdmin bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
}

// IsCoach reports whether the user can own availability and sessions as a coach.
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

// Filter defines filter options for listing users.
type Filter struct {
	Email    string
	Name     string
	Role     Role
	IsActive *bool // Use pointer to distinguish between false and nil (not set)

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
