package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"aura/internal/cache"
	"aura/internal/config"
	"aura/internal/database"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/service"

	"github.com/spf13/cobra"
)

var loadConfig = config.LoadConfig

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Operator utilities for the Aura backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReconcileCmd(), newTokenCmd(), newUserCmd())
	return root
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair users whose aura points drifted from their ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			rdb := cache.InitRedis(cfg.RedisURL)

			repaired, err := service.NewAuraReconciler(repository.NewStore(db), rdb).Run(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "repaired %d user(s)\n", repaired)
			return err
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		email   string
		name    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return mintToken(cmd.OutOrStdout(), cfg, subject, email, name, ttl)
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&name, "name", "", "given name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func mintToken(out io.Writer, cfg *config.Config, subject, email, name string, ttl time.Duration) error {
	if cfg.IsProduction() {
		return errors.New("refusing to mint tokens against a production config")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return errors.New("--sub is required")
	}
	if ttl <= 0 {
		return errors.New("--ttl must be positive")
	}

	verifier := middleware.TokenVerifier{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
	}
	claims := middleware.SessionClaims{Email: email, GivenName: name}
	claims.Subject = subject

	token, err := verifier.Issue(claims, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Inspect users",
	}
	user.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a user with their aura summary and recent ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			return showUser(cmd.Context(), cmd.OutOrStdout(), repository.NewStore(db), args[0])
		},
	})
	return user
}

type userReport struct {
	User     *models.User          `json:"user"`
	Summary  models.AuraSummary    `json:"summary"`
	Ledger   []models.AuraActivity `json:"recentActivity"`
	Ledgered int                   `json:"ledgerTotal"`
}

func showUser(ctx context.Context, out io.Writer, store repository.Store, id string) error {
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}
	ledger, err := store.Aura().ListByUser(ctx, id, 10)
	if err != nil {
		return err
	}
	total, err := store.Aura().LedgerTotal(ctx, id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(userReport{
		User:     user,
		Summary:  models.SummarizeAura(user),
		Ledger:   ledger,
		Ledgered: total,
	})
}
