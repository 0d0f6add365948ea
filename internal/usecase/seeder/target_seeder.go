package seeder

import (
	"context"
	"fmt"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

// TargetSeeder ensures a target allocation exists before the first rebalance
type TargetSeeder struct {
	repo     domain.TargetRepository
	defaults domain.TargetAllocation
}

// NewTargetSeeder creates a new TargetSeeder instance seeding domain.DefaultTargets
func NewTargetSeeder(repo domain.TargetRepository) *TargetSeeder {
	return &TargetSeeder{
		repo:     repo,
		defaults: domain.DefaultTargets(),
	}
}

// Seed stores the default allocation when nothing is configured.
// An existing allocation is never touched, even a partial one.
func (s *TargetSeeder) Seed(ctx context.Context) (bool, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load targets: %w", err)
	}
	if len(current) > 0 {
		return false, nil
	}

	// Validate before saving
	if err := s.defaults.Validate(); err != nil {
		return false, err
	}

	if err := s.repo.Save(ctx, s.defaults); err != nil {
		return false, err
	}
	return true, nil
}
