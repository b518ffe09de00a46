package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"acquisitions/internal/auth"
	"acquisitions/internal/config"
	"acquisitions/internal/db"
	"acquisitions/internal/logging"
	"acquisitions/internal/model"
	"acquisitions/internal/repository"
)

const (
	nameFlag     = "name"
	emailFlag    = "email"
	passwordFlag = "password"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or promote an administrator account",
		Long: `Ensures an administrator exists.

If a user with the given email exists it is promoted to admin, otherwise a new
admin is created with the given name and password.

Examples:
  seed --email admin@example.com --password s3cret --name "Site Admin"`,
		RunE:         runSeed,
		SilenceUsage: true,
	}
	cmd.Flags().String(nameFlag, "Administrator", "Display name for a newly created admin")
	cmd.Flags().String(emailFlag, "", "Admin email (required)")
	cmd.Flags().String(passwordFlag, "", "Password for a newly created admin")
	_ = cmd.MarkFlagRequired(emailFlag)
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString(nameFlag)
	email, _ := cmd.Flags().GetString(emailFlag)
	password, _ := cmd.Flags().GetString(passwordFlag)
	email = strings.ToLower(strings.TrimSpace(email))

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB, false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	created, err := ensureAdmin(ctx, repository.NewUserRepository(gormDB), name, email, password)
	if err != nil {
		logger.Error("seed failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if created {
		logger.Info("admin created", zap.String("email", email))
	} else {
		logger.Info("admin promoted", zap.String("email", email))
	}
	return nil
}

// ensureAdmin promotes the user with email to admin, or creates it when absent.
// It reports whether a new row was created.
func ensureAdmin(ctx context.Context, repo repository.UserRepository, name, email, password string) (bool, error) {
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		fields := map[string]interface{}{"role": model.RoleAdmin, "updated_at": time.Now()}
		if err := repo.Update(ctx, existing.ID, fields); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("find %s: %w", email, err)
	}

	if len(password) < 6 {
		return false, errors.New("password of at least 6 characters is required to create an admin")
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	user := &model.User{Name: name, Email: email, Password: hashed, Role: model.RoleAdmin}
	if err := repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create %s: %w", email, err)
	}
	return true, nil
}
