package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/photobridge/authserver/internal/common"
	"github.com/photobridge/authserver/internal/cryptox"
	"github.com/photobridge/authserver/internal/server/config"
	"github.com/photobridge/authserver/internal/server/models"
	"github.com/photobridge/authserver/internal/server/repositories/repomanager"
)

// seedAccounts are created by `cli seed` when absent. The passwords are
// development defaults, change them before exposing the instance.
var seedAccounts = []struct {
	username    string
	password    string
	displayName string
	roles       []string
}{
	{"admin", "admin123", "Administrator", []string{"admin"}},
	{"operator1", "operator123", "Operator One", []string{"operator"}},
}

// runSeed applies migrations and creates the initial accounts. Existing
// usernames are left untouched, so the command is safe to re-run.
// Flag parsing skips the subcommand word, so -d/-c work as on the server.
func runSeed(ctx context.Context) error {
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	users := rm.Users(db)
	for _, account := range seedAccounts {
		hash, err := cryptox.HashPassword(account.password)
		if err != nil {
			return err
		}
		_, err = users.Create(ctx, &models.User{
			Username:     account.username,
			PasswordHash: hash,
			DisplayName:  account.displayName,
			IsActive:     true,
			Roles:        account.roles,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			fmt.Printf("user %q already exists, skipped\n", account.username)
			continue
		}
		if err != nil {
			return fmt.Errorf("error creating %q: %w", account.username, err)
		}
		fmt.Printf("created user %q with roles %v\n", account.username, account.roles)
	}
	return nil
}
