package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmarques/accounts-api/internal/domain/entity"
	"github.com/dmarques/accounts-api/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and its owned addresses and phones in one
// transaction, backfilling every store-assigned identifier.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}

	for i := range u.Addresses {
		a := &u.Addresses[i]
		a.UserID = u.ID
		row := tx.QueryRow(ctx, `
			INSERT INTO addresses (user_id, street, number, complement, city, state, postal_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, a.UserID, a.Street, a.Number, a.Complement, a.City, a.State, a.PostalCode)
		if err := row.Scan(&a.ID); err != nil {
			return err
		}
	}

	for i := range u.Phones {
		p := &u.Phones[i]
		p.UserID = u.ID
		row := tx.QueryRow(ctx, `
			INSERT INTO phones (user_id, area_code, number)
			VALUES ($1, $2, $3)
			RETURNING id
		`, p.UserID, p.AreaCode, p.Number)
		if err := row.Scan(&p.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	addresses, err := r.loadAddresses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Addresses = addresses

	phones, err := r.loadPhones(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Phones = phones

	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update writes scalar columns only. Addresses and phones are updated
// through their own repositories.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, updated_at = $4
		WHERE id = $5
	`, u.Name, u.Email, u.Password, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByEmail removes the user row; addresses and phones go with it via
// ON DELETE CASCADE. Zero rows affected is not an error.
func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}

func (r *UserRepository) loadAddresses(ctx context.Context, userID int64) ([]entity.Address, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, street, number, complement, city, state, postal_code
		FROM addresses
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Address, 0)
	for rows.Next() {
		var a entity.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.Complement, &a.City, &a.State, &a.PostalCode); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *UserRepository) loadPhones(ctx context.Context, userID int64) ([]entity.Phone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, area_code, number
		FROM phones
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Phone, 0)
	for rows.Next() {
		var p entity.Phone
		if err := rows.Scan(&p.ID, &p.UserID, &p.AreaCode, &p.Number); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
