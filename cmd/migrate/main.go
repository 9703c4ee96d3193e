// Command migrate applies, inspects and rolls back the Aura schema.
//
//	migrate up
//	migrate status
//	migrate down [-steps N | <version>] [-yes]
//	migrate auto
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"aura/internal/config"
	"aura/internal/database"
	"aura/internal/middleware"

	"gorm.io/gorm"
)

type action string

const (
	actionUp     action = "up"
	actionDown   action = "down"
	actionStatus action = "status"
	actionAuto   action = "auto"
)

var errUsage = errors.New("usage: migrate [-steps N] [-yes] <up|down|status|auto> [version]")

// request is one parsed invocation.
type request struct {
	action  action
	version int // down only; 0 rolls back the latest steps
	steps   int
	confirm bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		middleware.Logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := guard(cfg, req); err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	return execute(ctx, db, cfg, req, out)
}

func parseRequest(args []string) (request, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	steps := fs.Int("steps", 1, "number of migrations to roll back with down")
	confirm := fs.Bool("yes", false, "confirm a rollback outside development")
	if err := fs.Parse(args); err != nil {
		return request{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return request{}, errUsage
	}

	req := request{
		action:  action(strings.ToLower(strings.TrimSpace(fs.Arg(0)))),
		steps:   *steps,
		confirm: *confirm,
	}

	switch req.action {
	case actionUp, actionStatus, actionAuto:
		if fs.NArg() > 1 {
			return request{}, fmt.Errorf("%s takes no arguments", req.action)
		}
	case actionDown:
		if fs.NArg() > 2 {
			return request{}, errUsage
		}
		if fs.NArg() == 2 {
			v, err := strconv.Atoi(fs.Arg(1))
			if err != nil || v <= 0 {
				return request{}, fmt.Errorf("invalid version %q", fs.Arg(1))
			}
			req.version = v
		}
		if req.steps < 1 {
			return request{}, fmt.Errorf("steps must be at least 1")
		}
	default:
		return request{}, errUsage
	}
	return req, nil
}

// guard refuses rollbacks against shared environments unless confirmed.
func guard(cfg *config.Config, req request) error {
	if req.action != actionDown || req.confirm {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Env)) {
	case "", "development", "dev", "test", "local":
		return nil
	}
	return fmt.Errorf("refusing to roll back in %q without -yes", cfg.Env)
}

func execute(ctx context.Context, db *gorm.DB, cfg *config.Config, req request, out io.Writer) error {
	switch req.action {
	case actionUp:
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		middleware.Logger.Info("sql migrations applied")
	case actionAuto:
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema: %w", err)
		}
		middleware.Logger.Info("automigrations applied")
	case actionStatus:
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status: %w", err)
		}
		return writeStatus(out, status)
	case actionDown:
		if req.version > 0 {
			if err := database.RollbackMigration(ctx, db, req.version); err != nil {
				return fmt.Errorf("rollback %d: %w", req.version, err)
			}
			middleware.Logger.Info("rolled back migration", slog.Int("version", req.version))
			return nil
		}
		for i := 0; i < req.steps; i++ {
			version, err := database.RollbackLatest(ctx, db)
			if err != nil {
				return fmt.Errorf("rollback step %d: %w", i+1, err)
			}
			middleware.Logger.Info("rolled back migration", slog.Int("version", version))
		}
	}
	return nil
}

func writeStatus(out io.Writer, status *database.SchemaStatus) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "mode\t%s\n", status.Mode)
	fmt.Fprintf(w, "environment\t%s\n", status.Environment)
	fmt.Fprintf(w, "sql migrations\t%t\n", status.WillRunSQL)
	fmt.Fprintf(w, "automigrate\t%t\n", status.WillRunAutoMigrate)
	fmt.Fprintf(w, "applied\t%d\n", len(status.AppliedVersions))
	fmt.Fprintf(w, "pending\t%d\n", len(status.PendingMigrations))
	for _, m := range status.PendingMigrations {
		fmt.Fprintf(w, "  %06d\t%s\n", m.Version, m.Name)
	}
	return w.Flush()
}
