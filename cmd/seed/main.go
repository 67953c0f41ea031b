package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cristijna/SaboresGo/internal/config"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// CLI flags
	username := flag.String("username", "", "Admin username")
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	agreement := flag.String("agreement", "", "Sample company agreement name (empty skips it)")
	monthly := flag.String("monthly-balance", "50000", "Monthly balance granted by the sample agreement")
	code := flag.String("code", "", "Access code for the sample agreement")
	flag.Parse()

	// Fall back to environment variables
	if *username == "" {
		*username = os.Getenv("SEED_USERNAME")
	}
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}

	// Fall back to defaults
	if *username == "" {
		*username = "admin"
	}
	if *email == "" {
		*email = "admin@saboresgo.cl"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}
	if *agreement != "" && *code == "" {
		log.Fatal("-code is required together with -agreement")
	}

	balance, err := decimal.NewFromString(*monthly)
	if err != nil || balance.IsNegative() {
		log.Fatalf("Invalid -monthly-balance %q", *monthly)
	}

	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction (admin + agreement or nothing)
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	userID, err := seedAdmin(ctx, tx, *username, *email, *password)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	var agreementID uuid.UUID
	if *agreement != "" {
		agreementID, err = seedAgreement(ctx, tx, *agreement, balance, *code)
		if err != nil {
			log.Fatalf("Failed to seed agreement: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Admin ID: %s", userID)
	if agreementID != uuid.Nil {
		log.Printf("Agreement ID: %s (code %s)", agreementID, *code)
	}
}

// seedAdmin creates the admin user if it doesn't exist.
func seedAdmin(ctx context.Context, tx pgx.Tx, username, email, password string) (uuid.UUID, error) {
	var existingID uuid.UUID
	checkSQL := `SELECT id FROM users WHERE username = $1 LIMIT 1`
	err := tx.QueryRow(ctx, checkSQL, username).Scan(&existingID)
	if err == nil {
		log.Printf("User '%s' already exists (ID: %s), skipping", username, existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	insertSQL := `
		INSERT INTO users (username, email, hashed_password, role, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id
	`
	var newID uuid.UUID
	err = tx.QueryRow(ctx, insertSQL, username, email, string(hashed), enum.UserRoleAdmin).Scan(&newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	log.Printf("Created admin '%s' (ID: %s)", username, newID)
	return newID, nil
}

// seedAgreement creates a company agreement and its access code if missing.
func seedAgreement(ctx context.Context, tx pgx.Tx, name string, monthly decimal.Decimal, code string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM company_agreements WHERE name = $1`, name).Scan(&id)
	switch {
	case err == nil:
		log.Printf("Agreement '%s' already exists (ID: %s), skipping", name, id)
	case errors.Is(err, pgx.ErrNoRows):
		insertSQL := `
			INSERT INTO company_agreements (name, monthly_balance)
			VALUES ($1, $2::numeric)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, insertSQL, name, monthly.StringFixed(2)).Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("insert agreement: %w", err)
		}
		log.Printf("Created agreement '%s' (ID: %s)", name, id)
	default:
		return uuid.Nil, fmt.Errorf("check agreement: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO agreement_codes (agreement_id, code)
		VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING
	`, id, code)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert agreement code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("Code '%s' already exists, skipping", code)
	}
	return id, nil
}
