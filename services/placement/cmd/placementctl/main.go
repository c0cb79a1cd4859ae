package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"placementd/pkg/db"
	"placementd/pkg/render"
	"placementd/services/placement"
	"placementd/services/placement/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "placementctl",
		Short:         "Utility for managing the placement service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newTokensCommand())
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()
			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintln(os.Stdout, "migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load companies, jobs and students from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			seed, err := placement.LoadSeedFile(file)
			if err != nil {
				return err
			}
			engine, cleanup, err := newEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := engine.Seed(ctx, seed); err != nil {
				return fmt.Errorf("apply seed file: %w", err)
			}
			fmt.Fprintf(os.Stdout, "seeded from %s\n", file)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "seed.yaml", "Path to the seed YAML file")
	return cmd
}

func newTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Token ledger operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTokensGrantCommand())
	return cmd
}

func newTokensGrantCommand() *cobra.Command {
	var (
		studentID string
		amount    int
		reason    string
	)

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant interview tokens to a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			id, err := uuid.Parse(studentID)
			if err != nil {
				return fmt.Errorf("invalid student id %q", studentID)
			}
			engine, cleanup, err := newEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := engine.GrantTokens(ctx, id, amount, reason); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "granted %d token(s) to %s\n", amount, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "Student UUID")
	cmd.Flags().IntVar(&amount, "amount", 1, "Number of tokens to grant")
	cmd.Flags().StringVar(&reason, "reason", "Manual grant", "Ledger reason recorded with the grant")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func newEngine(ctx context.Context) (*placement.Engine, func(), error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	orm, err := db.ConnectORM(cfg.DBDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect orm: %w", err)
	}
	cleanup := func() {
		_ = db.CloseORM(orm)
		pool.Close()
	}

	renderer, err := render.New()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init templates: %w", err)
	}
	window, err := cfg.Window()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	engine, err := placement.New(
		&placement.Store{DB: pool, ORM: orm},
		renderer,
		placement.Config{Window: window},
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
