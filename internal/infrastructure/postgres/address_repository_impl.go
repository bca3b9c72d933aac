package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmarques/accounts-api/internal/domain/entity"
	"github.com/dmarques/accounts-api/internal/domain/repository"
)

type AddressRepository struct {
	pool *pgxpool.Pool
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

func (r *AddressRepository) GetByID(ctx context.Context, id int64) (*entity.Address, error) {
	a := &entity.Address{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, street, number, complement, city, state, postal_code
		FROM addresses
		WHERE id = $1
	`, id)
	if err := row.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.Complement, &a.City, &a.State, &a.PostalCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AddressRepository) Update(ctx context.Context, a *entity.Address) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE addresses
		SET street = $1, number = $2, complement = $3, city = $4, state = $5, postal_code = $6
		WHERE id = $7
	`, a.Street, a.Number, a.Complement, a.City, a.State, a.PostalCode, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AddressRepository = (*AddressRepository)(nil)
