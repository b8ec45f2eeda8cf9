package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aquameter/aquameter/internal/clock"
	"github.com/aquameter/aquameter/internal/config"
	"github.com/aquameter/aquameter/internal/eventbus"
	"github.com/aquameter/aquameter/internal/filestore"
	"github.com/aquameter/aquameter/internal/flat"
	"github.com/aquameter/aquameter/internal/identity"
	"github.com/aquameter/aquameter/internal/migration"
	"github.com/aquameter/aquameter/internal/observability"
	"github.com/aquameter/aquameter/internal/payment"
	"github.com/aquameter/aquameter/internal/property"
	"github.com/aquameter/aquameter/internal/reading"
	"github.com/aquameter/aquameter/internal/server"
	"github.com/aquameter/aquameter/internal/tenancy"
	"github.com/aquameter/aquameter/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "aquameter",
		Short:   "AquaMeter CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		eventbus.Module,
		filestore.Module,
		identity.Module,
		property.Module,
		flat.Module,
		tenancy.Module,
		reading.Module,
		payment.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
