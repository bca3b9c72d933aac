package repository

import (
	"context"

	"github.com/dmarques/accounts-api/internal/domain/entity"
)

// PhoneRepository defines persistence operations for individual phones.
type PhoneRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Phone, error)
	Update(ctx context.Context, p *entity.Phone) error
}
