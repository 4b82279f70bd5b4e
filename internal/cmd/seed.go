package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/seeder"
)

var (
	seedUsers     int
	seedIncidents int
	seedPassword  string
	seedValue     int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data",
	Long: `Populate the database with demo users, incidents, indicators and
timelines for development.

The first seeded account is always admin@secureops.local with the
password given by --password.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 5, "number of users to create")
	seedCmd.Flags().IntVar(&seedIncidents, "incidents", 25, "number of incidents to create")
	seedCmd.Flags().StringVar(&seedPassword, "password", "secureops-demo", "password for all seeded accounts")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 uses current time)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	connString := cfg.Database.Postgres.ConnString()

	m, err := migrate.New("file://"+migrationsPath, connString)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer repo.Close()

	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}

	opts := seeder.DefaultOptions()
	opts.Users = seedUsers
	opts.Incidents = seedIncidents
	opts.Password = seedPassword

	summary, err := seeder.New(repo, seedValue).Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	printSuccess("Seeded %d users, %d incidents, %d IOCs, %d timeline events",
		summary.Users, summary.Incidents, summary.IOCs, summary.Events)
	printInfo("Demo login: admin@secureops.local / %s", seedPassword)
	return nil
}
