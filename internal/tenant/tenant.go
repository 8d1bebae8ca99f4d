package tenant

import (
	"encoding/json"
	"time"
)

// Tenant represents an isolated business customer account. Every row of every
// tenant-owned entity belongs to exactly one tenant; no operation may cross
// that boundary.
type Tenant struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	AppID     string          `json:"appId"`
	AppSecret string          `json:"-"`
	Status    string          `json:"status"`
	Config    json.RawMessage `json:"config,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Patch lists the mutable tenant fields. Nil means "leave unchanged".
type Patch struct {
	Name      *string          `json:"name"`
	AppSecret *string          `json:"appSecret"`
	Status    *string          `json:"status"`
	Config    *json.RawMessage `json:"config"`
}
