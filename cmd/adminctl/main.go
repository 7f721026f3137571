// Command adminctl creates administrator accounts. At least one admin must
// exist before candidates store any data, because admin public keys are
// part of every recipient set.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/config"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
	"github.com/enrollhub/admitd/internal/server/services"
)

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <login>\n", os.Args[0])
		os.Exit(2)
	}
	login := os.Args[1]

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	password, err := readPassword("password: ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	confirm, err := readPassword("confirm password: ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	if password != confirm {
		log.Fatal("passwords do not match")
	}
	if password == "" {
		log.Fatal("empty password")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	identity := services.NewIdentityService(db, rm, cfg, logger)
	admin, err := identity.RegisterAdmin(ctx, login, password)
	if err != nil {
		log.Fatalf("creating admin: %v", err)
	}

	fmt.Printf("admin %q created (id %d)\n", admin.Login, admin.ID)
}
