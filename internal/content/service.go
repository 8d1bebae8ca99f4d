package content

import (
	"context"
	"fmt"
	"time"

	"github.com/openlot/openlot/internal/id"
)

// Service provides site-content business logic.
type Service struct {
	repo Repository
}

// NewService creates a new content service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetHomepage returns the tenant's homepage configuration, zero-valued when
// none has been saved yet.
func (s *Service) GetHomepage(ctx context.Context, tenantID string) (*HomepageConfig, error) {
	cfg, err := s.repo.GetHomepage(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &HomepageConfig{TenantID: tenantID}
	}
	if cfg.Banners == nil {
		cfg.Banners = []string{}
	}
	return cfg, nil
}

// SetHomepage replaces the tenant's homepage configuration wholesale.
func (s *Service) SetHomepage(ctx context.Context, tenantID string, cfg *HomepageConfig) (*HomepageConfig, error) {
	cfg.TenantID = tenantID
	if cfg.Banners == nil {
		cfg.Banners = []string{}
	}
	cfg.UpdatedAt = time.Now()
	if err := s.repo.SetHomepage(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save homepage config: %w", err)
	}
	return cfg, nil
}

// GetContactUs returns the tenant's contact block, zero-valued when unset.
func (s *Service) GetContactUs(ctx context.Context, tenantID string) (*ContactUsConfig, error) {
	cfg, err := s.repo.GetContactUs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &ContactUsConfig{TenantID: tenantID}
	}
	return cfg, nil
}

// SetContactUs replaces the tenant's contact block wholesale.
func (s *Service) SetContactUs(ctx context.Context, tenantID string, cfg *ContactUsConfig) (*ContactUsConfig, error) {
	cfg.TenantID = tenantID
	cfg.UpdatedAt = time.Now()
	if err := s.repo.SetContactUs(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save contact config: %w", err)
	}
	return cfg, nil
}

// CreateFAQ adds a question/answer entry for the tenant.
func (s *Service) CreateFAQ(ctx context.Context, tenantID, question, answer string, sort int) (*FAQ, error) {
	if question == "" || answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", ErrInvalidInput)
	}

	now := time.Now()
	faq := &FAQ{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Question:  question,
		Answer:    answer,
		Sort:      sort,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateFAQ(ctx, faq); err != nil {
		return nil, fmt.Errorf("failed to create faq: %w", err)
	}
	return faq, nil
}

// ListFAQs lists the tenant's FAQs ordered by sort weight.
func (s *Service) ListFAQs(ctx context.Context, tenantID string) ([]*FAQ, error) {
	return s.repo.ListFAQs(ctx, tenantID)
}

// UpdateFAQ applies a patch within the caller's tenant.
func (s *Service) UpdateFAQ(ctx context.Context, tenantID, faqID string, patch FAQPatch) (*FAQ, error) {
	return s.repo.UpdateFAQ(ctx, tenantID, faqID, patch)
}

// DeleteFAQ deletes an FAQ within the caller's tenant.
func (s *Service) DeleteFAQ(ctx context.Context, tenantID, faqID string) error {
	return s.repo.DeleteFAQ(ctx, tenantID, faqID)
}
