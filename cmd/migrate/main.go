package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	coachconfig "go-trading-coach/internal/coach/config"
	pkgconfig "go-trading-coach/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var configPath string

func migrationDSN(db pkgconfig.Database) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, db.Password, db.Host, db.Port, db.DBName, db.SSLMode)
}

// run executes step against a fresh migrate instance. migrate.ErrNoChange is
// treated as success so re-running "up" on a current schema is a no-op.
func run(step func(*migrate.Migrate) error, doneMsg string) {
	cfg, err := coachconfig.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, err := migrate.New("file://migrations", migrationDSN(cfg.Database))
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Printf("Migration source error on close: %v", srcErr)
		}
		if dbErr != nil {
			log.Printf("Migration database error on close: %v", dbErr)
		}
	}()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println(doneMsg)
}

func main() {
	rootCmd := &cobra.Command{Use: "migrate", Short: "Manage the chat analysis database schema"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-coach.yaml", "Path to the configuration file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Run: func(cmd *cobra.Command, args []string) {
				run(func(m *migrate.Migrate) error { return m.Up() }, "Applied migrations successfully.")
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			Run: func(cmd *cobra.Command, args []string) {
				run(func(m *migrate.Migrate) error { return m.Steps(-1) }, "Reverted last migration successfully.")
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migrate CLI: %s\n", err)
		os.Exit(1)
	}
}
