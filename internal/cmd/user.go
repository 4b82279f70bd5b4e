package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/service"
	"github.com/secureops-systems/secureops/pkg/tokens"
)

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long:  "Manage SecureOps analyst accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long:  "Provision an analyst account directly in the database",
	RunE:  runUserCreate,
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (required, min 8 characters)")
	userCreateCmd.Flags().StringVar(&userRole, "role", "analyst", "role: admin, analyst or viewer")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("name")
	userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	repo, err := repository.NewPostgresRepository(context.Background(), cfg.Database.Postgres.ConnString())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer repo.Close()

	// token generator unused by CreateUser but required by the service
	authSvc := service.NewAuthService(repo, tokens.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL))

	user, err := authSvc.CreateUser(cmd.Context(), &models.CreateUserRequest{
		Email:    userEmail,
		Name:     userName,
		Password: userPassword,
		Role:     userRole,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	printSuccess("Created user %s (%s) with role %s", user.Email, user.ID, user.Role)
	return nil
}
