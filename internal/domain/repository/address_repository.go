package repository

import (
	"context"

	"github.com/dmarques/accounts-api/internal/domain/entity"
)

// AddressRepository defines persistence operations for individual addresses.
type AddressRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Address, error)
	Update(ctx context.Context, a *entity.Address) error
}
