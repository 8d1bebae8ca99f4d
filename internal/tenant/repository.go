package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrAppIDTaken     = errors.New("app id already registered")
	ErrInvalidInput   = errors.New("invalid input")
)

// Repository defines the interface for tenant storage
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByAppID(ctx context.Context, appID string) (*Tenant, error)
	Update(ctx context.Context, id string, patch Patch) (*Tenant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*Tenant, int, error)
}
