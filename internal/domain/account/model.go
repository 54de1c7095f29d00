package account

import (
	"errors"
	"strings"

	"gymdesk/internal/domain/record"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleMember = "member"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleStaff, RoleMember}

// Domain errors
var (
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrInvalidRole   = errors.New("role must be one of: admin, staff, member")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrEmptyName     = errors.New("name cannot be empty")
)

// User is the profile of the signed-in person as reported by the backend.
type User struct {
	ID    record.ID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Role  string    `json:"role"`
}

// Validate checks if the User has valid data.
// PRE: User decoded from the backend
// POST: Returns nil if valid, error otherwise
func (u User) Validate() error {
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if !IsValidRole(u.Role) {
		return ErrInvalidRole
	}
	return nil
}

// DisplayName returns the name, or the email when the name is blank.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return u.Email
}

// Credentials carries a login form submission.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks the login form before it is sent to the backend.
// PRE: Credentials populated from a form
// POST: Returns nil if both fields are usable
func (c Credentials) Validate() error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if c.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Registration carries a member sign-up form submission.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Validate checks the sign-up form before it is sent to the backend.
func (r Registration) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return errors.New("name cannot exceed 100 characters")
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidateEmail applies the shape checks shared by every form.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// IsValidRole checks if the role is one of the valid roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
