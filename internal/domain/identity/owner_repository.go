package identity

import (
	"context"

	"github.com/google/uuid"
)

// OwnerRepository persists and queries owner accounts
type OwnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	FindByEmail(ctx context.Context, email string) (*Owner, error)
	FindAll(ctx context.Context) ([]Owner, error)
	Save(ctx context.Context, owner *Owner) error
	Delete(ctx context.Context, id uuid.UUID) error
}
