package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/dmarques/accounts-api/config"
	"github.com/dmarques/accounts-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := seed(db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

// seed upserts the demo account and gives it one address and one phone.
// Safe to re-run: the user row is upserted and child rows are only
// inserted when the account has none yet.
func seed(db *sql.DB) error {
	email := "demo@example.com"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	fmt.Printf("seeded user: id=%d email=%s name=%s password=%s\n", id, email, name, password)

	var hasAddress bool
	if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM addresses WHERE user_id = $1)`, id).Scan(&hasAddress); err != nil {
		return fmt.Errorf("check addresses: %w", err)
	}
	if !hasAddress {
		var addressID int64
		if err := db.QueryRow(`
			INSERT INTO addresses (user_id, street, number, complement, city, state, postal_code)
			VALUES ($1, 'Main Street', 100, 'Apt 4', 'Springfield', 'SP', '01000-000')
			RETURNING id
		`, id).Scan(&addressID); err != nil {
			return fmt.Errorf("seed address: %w", err)
		}
		fmt.Printf("seeded address=%d\n", addressID)
	}

	var hasPhone bool
	if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM phones WHERE user_id = $1)`, id).Scan(&hasPhone); err != nil {
		return fmt.Errorf("check phones: %w", err)
	}
	if !hasPhone {
		var phoneID int64
		if err := db.QueryRow(`
			INSERT INTO phones (user_id, area_code, number)
			VALUES ($1, '11', '99999-0000')
			RETURNING id
		`, id).Scan(&phoneID); err != nil {
			return fmt.Errorf("seed phone: %w", err)
		}
		fmt.Printf("seeded phone=%d\n", phoneID)
	}

	return nil
}
