// Command createadmin provisions an account from the command line, for
// bootstrapping a fresh deployment without going through the signup endpoint.
//
// The email comes from ADMIN_EMAIL; the password from ADMIN_PASSWORD or, when
// unset, an interactive prompt with echo disabled.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/ekazakov/taskmate/internal/common"
	"github.com/ekazakov/taskmate/internal/server/config"
	"github.com/ekazakov/taskmate/internal/server/models"
	"github.com/ekazakov/taskmate/internal/server/repositories/repomanager"
)

// readPassword is a seam so tests can supply a password without a terminal.
var readPassword = func() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func resolveCredentials() (email, password string, err error) {
	email = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	if email == "" {
		return "", "", errors.New("ADMIN_EMAIL is not set")
	}

	password = os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password, err = readPassword()
		if err != nil {
			return "", "", fmt.Errorf("reading password: %w", err)
		}
	}
	if password == "" {
		return "", "", errors.New("password must not be empty")
	}

	return email, password, nil
}

func createAccount(ctx context.Context, cfg *config.Config, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	user, err := rm.Users(db).Create(ctx, &models.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("%s is already registered", email)
		}
		return err
	}

	fmt.Printf("Created account %s (id %d)\n", user.Email, user.ID)
	return nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	email, password, err := resolveCredentials()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := createAccount(ctx, cfg, email, password); err != nil {
		log.Fatalf("%v", err)
	}
}
