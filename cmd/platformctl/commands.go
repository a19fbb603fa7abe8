package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/config"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/validation"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/wizard"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
)

var errInvalidConfig = errors.New("network config is invalid")

func newHashPasswordCmd() *cobra.Command {
	var skipPolicy bool
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !skipPolicy {
				if err := validation.Password(args[0]); err != nil {
					return err
				}
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "hash without checking the password policy")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret, userID, email, role string
		ttl                         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("a secret is required (--secret or JWT_SECRET)")
			}
			if !models.Role(role).Valid() {
				return fmt.Errorf("invalid role %q", role)
			}
			tok, err := middleware.GenerateToken(secret, userID, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (default $JWT_SECRET)")
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed")
	cmd.Flags().StringVar(&email, "email", "", "email to embed")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "role to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	var (
		provider, instance string
		disk, nodes        int
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print the monthly cost estimate of a deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := wizard.EstimateMonthlyCost(models.Provider(provider), instance, disk, nodes)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(est)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", string(models.ProviderAWS), "cloud provider")
	cmd.Flags().StringVar(&instance, "instance", "medium", "instance type (small, medium, large, xlarge)")
	cmd.Flags().IntVar(&disk, "disk", 100, "disk size per node in GB")
	cmd.Flags().IntVar(&nodes, "nodes", 4, "number of nodes")
	return cmd
}

// loadNetworkConfig reads a YAML network config. Keys it leaves out keep
// their wizard defaults.
func loadNetworkConfig(path string) (models.NetworkConfig, error) {
	cfg := models.DefaultNetworkConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config.yaml]",
		Short: "Check a network config file against the wizard rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadNetworkConfig(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			errs := validation.Config(cfg)
			if errs.Empty() {
				est, err := wizard.EstimateConfig(cfg)
				if err != nil {
					fmt.Fprintf(out, "%s is valid\n", args[0])
					return nil
				}
				fmt.Fprintf(out, "%s is valid; estimated cost %s %s/month\n", args[0], est.Total.StringFixed(2), est.Currency)
				return nil
			}
			for _, k := range errs.Keys() {
				fmt.Fprintf(out, "%s: %s\n", k, errs[k])
			}
			return fmt.Errorf("%w: %d problem(s)", errInvalidConfig, len(errs))
		},
	}
}

func databaseURL(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DatabaseURL, nil
}

// newMigrateCmd opens the configured store, which applies Postgres
// migrations and ensures MongoDB indexes as a side effect.
func newMigrateCmd() *cobra.Command {
	var dbURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL(dbURL)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			repo, err := repository.Open(ctx, url, logger.NewWithWriter(cmd.ErrOrStderr(), "info"))
			if err != nil {
				return err
			}
			defer repo.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&dbURL, "database-url", "", "database URL (default $DATABASE_URL)")
	return cmd
}

func newCreateUserCmd() *cobra.Command {
	var dbURL, name, email, password, role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user directly in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Password(password); err != nil {
				return err
			}
			user := models.User{
				Name:     strings.TrimSpace(name),
				Email:    strings.ToLower(strings.TrimSpace(email)),
				Role:     models.Role(role),
				IsActive: true,
			}
			if errs := validation.User(user); !errs.Empty() {
				return errs
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.Password = string(hash)

			url, err := databaseURL(dbURL)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			repo, err := repository.Open(ctx, url, logger.NewWithWriter(cmd.ErrOrStderr(), "warn"))
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.CreateUser(ctx, &user); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbURL, "database-url", "", "database URL (default $DATABASE_URL)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "role")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}
