package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the account status
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

// User is a platform account. Role is the closed identity.Role enum; a
// blocked user can authenticate nowhere and cannot check out.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	LastLoginAt  *time.Time
}

// NewUser creates an active user with the given role
func NewUser(email, name, password string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	if !role.IsValid() || role == RoleGuest {
		return nil, shared.NewDomainError("INVALID_ROLE", "Accounts require a non-guest role")
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		Role:              role,
		Status:            UserStatusActive,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_FAILED", "Could not hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile updates the user's display name and phone
func (u *User) UpdateProfile(name, phone string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	u.Name = name
	u.Phone = phone
	u.UpdatedAt = time.Now()
	return nil
}

// ChangeRole assigns a new role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() || role == RoleGuest {
		return shared.NewDomainError("INVALID_ROLE", "Accounts require a non-guest role")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// Block disables the account
func (u *User) Block() error {
	if u.Status == UserStatusBlocked {
		return shared.NewDomainError("INVALID_STATE", "User is already blocked")
	}
	u.Status = UserStatusBlocked
	u.UpdatedAt = time.Now()
	return nil
}

// Unblock re-enables the account
func (u *User) Unblock() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("INVALID_STATE", "User is already active")
	}
	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	return nil
}

// IsBlocked reports whether the account is disabled
func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}

// RecordLogin stamps the last successful login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}
