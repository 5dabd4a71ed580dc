package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-account/activitymap"
	"github.com/goliatone/go-account/config"
	"github.com/goliatone/go-account/identity"
	"github.com/goliatone/go-account/logging"
	"github.com/goliatone/go-account/store"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "accountd",
		Short:        "User accounts and a live user directory.",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newSignUpCmd(),
		newSignInCmd(),
		newSignOutCmd(),
		newWhoAmICmd(),
		newReloadCmd(),
		newResetPasswordCmd(),
		newVerifyEmailCmd(),
		newUsersCmd(),
	)
	return root
}

// app is the wired process: one database shared by the identity provider
// and the directory store.
type app struct {
	cfg       config.Config
	logger    *logging.Logger
	db        *bun.DB
	provider  *identity.Provider
	directory *store.Directory
	service   *account.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if cfg.DebugSQL {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := identity.MigrateAccounts(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}

	directory := store.NewDirectory(db,
		store.WithLogger(logger.Named("store")),
		store.WithPollInterval(cfg.PollInterval),
	)
	if err := directory.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	identityLogger := logger.Named("identity")
	provider := identity.NewProvider(
		identity.NewAccountsRepository(db),
		identity.NewActionTokens([]byte(cfg.SigningKey), cfg.TokenTTL, cfg.Issuer),
		identity.WithLogger(identityLogger),
		identity.WithMailer(identity.LogMailer{Logger: identityLogger}),
		identity.WithSessionCache(identity.NewFileSessionCache(cfg.SessionFile)),
		identity.WithBcryptCost(cfg.BcryptCost),
		identity.WithHashIDs(cfg.HashIDs),
		identity.WithLinkBaseURL(cfg.LinkBaseURL),
	)
	if err := provider.Restore(ctx); err != nil {
		logger.Error("session cache unreadable, starting signed out", "error", err)
	}

	service := account.NewService(provider, directory,
		account.WithLogger(logger.Named("account")),
		account.WithActivitySink(activitymap.Sink(logger.Named("activity"))),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		provider:  provider,
		directory: directory,
		service:   service,
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.db.Close()
}

// withApp builds the app for a single command run.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(ctx, a, cmd, args)
	}
}

func resultErr[T any](res account.Result[T]) error {
	if res.IsError() {
		return errors.New(res.Message)
	}
	return nil
}
