package ports

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// ExperimentRepository stores experiment definitions. Getters return nil, nil
// when nothing matches.
type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	GetByName(ctx context.Context, name string) (*domain.Experiment, error)
	List(ctx context.Context) ([]*domain.Experiment, error)
	Delete(ctx context.Context, id string) error
}
