package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmarques/accounts-api/internal/domain/entity"
	"github.com/dmarques/accounts-api/internal/domain/repository"
)

type PhoneRepository struct {
	pool *pgxpool.Pool
}

func NewPhoneRepository(pool *pgxpool.Pool) *PhoneRepository {
	return &PhoneRepository{pool: pool}
}

func (r *PhoneRepository) GetByID(ctx context.Context, id int64) (*entity.Phone, error) {
	p := &entity.Phone{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, area_code, number
		FROM phones
		WHERE id = $1
	`, id)
	if err := row.Scan(&p.ID, &p.UserID, &p.AreaCode, &p.Number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PhoneRepository) Update(ctx context.Context, p *entity.Phone) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE phones
		SET area_code = $1, number = $2
		WHERE id = $3
	`, p.AreaCode, p.Number, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PhoneRepository = (*PhoneRepository)(nil)
