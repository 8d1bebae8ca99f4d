package appuser

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound = errors.New("app user not found")
	ErrInvalidInput = errors.New("invalid input")
)

// User represents a mini-program end user. Users are unique per
// (tenant_id, open_id); the same person using two tenants' mini-programs is
// two distinct rows.
type User struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	OpenID      string    `json:"-"`
	UnionID     *string   `json:"-"`
	Nickname    string    `json:"nickname"`
	AvatarURL   string    `json:"avatarUrl"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch lists the mutable profile fields. Nil means "leave unchanged".
type Patch struct {
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatarUrl"`
}

// Repository defines the interface for end-user persistence. Every method is
// tenant-scoped; there is no lookup by id alone.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, tenantID, id string) (*User, error)
	GetByOpenID(ctx context.Context, tenantID, openID string) (*User, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*User, int, error)
	Update(ctx context.Context, tenantID, id string, patch Patch) (*User, error)
	UpdatePhone(ctx context.Context, tenantID, id, phoneNumber string) error
	Delete(ctx context.Context, tenantID, id string) error
}
