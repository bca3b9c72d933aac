package repository

import (
	"context"
	"errors"

	"github.com/dmarques/accounts-api/internal/domain/entity"
)

// ErrNotFound is returned by implementations when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// UserRepository defines the persistence operations for user aggregates.
// Create persists the user together with its owned addresses and phones and
// backfills the store-assigned identifiers. Update touches scalar columns
// only; collections are managed through their own repositories.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	DeleteByEmail(ctx context.Context, email string) error
}
