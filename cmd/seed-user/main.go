// seed-user is a development convenience: it creates a user row with a
// bcrypt-hashed password and prints a signed access token for it, so a
// developer exercising the reservation API by hand has something to put in
// the Authorization header without standing up a full registration flow
// (explicitly out of scope for this service).
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/ticketcore/seatlock/internal/config"
	"github.com/ticketcore/seatlock/internal/database"
	"github.com/ticketcore/seatlock/internal/utils"
)

func main() {
	email := flag.String("email", "test@example.com", "email for the seeded user")
	password := flag.String("password", "changeme", "plaintext password to hash and store")
	role := flag.String("role", "customer", "role claim to embed in the issued access token")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var userID uint64
	ctx := context.Background()
	row := db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, is_active) VALUES (?, ?, true) RETURNING id`,
		*email, hash)
	if err := row.Scan(&userID); err != nil {
		res, execErr := db.ExecContext(ctx,
			`INSERT INTO users (email, password_hash, is_active) VALUES (?, ?, true)`,
			*email, hash)
		if execErr != nil {
			log.Fatalf("insert user: %v", execErr)
		}
		id, _ := res.LastInsertId()
		userID = uint64(id)
	}

	token, err := utils.NewAccessToken(cfg.JWTSecret, userID, *role, cfg.AccessTTLMin)
	if err != nil {
		log.Fatalf("sign access token: %v", err)
	}

	log.Printf("seeded user_id=%d email=%s role=%s", userID, *email, *role)
	log.Printf("access_token=%s (expires %s)", token.Token, token.Exp)
}
