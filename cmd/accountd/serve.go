package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-account/api"
	"github.com/goliatone/go-account/identity"
	"github.com/goliatone/go-router"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API.",
		Long: "Serve the HTTP API. Sign in and sign up return a bearer token that the\n" +
			"session and directory routes require. ACCOUNT_HTTP_ADDR defaults to loopback.",
		RunE: withApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			directory := account.NewDirectoryController(ctx, a.service,
				account.WithDirectoryLogger(a.logger.Named("directory")),
			)
			defer directory.Close()

			var server *fiber.App
			srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
				server = fiber.New(fiber.Config{
					AppName:               "accountd",
					DisableStartupMessage: true,
					ReadTimeout:           10 * time.Second,
					WriteTimeout:          10 * time.Second,
				})
				return server
			})

			sessions := identity.NewActionTokens([]byte(a.cfg.SigningKey), a.cfg.SessionTTL, a.cfg.Issuer)
			api.RegisterRoutes(srv.Router(), api.New(a.service, directory, sessions,
				api.WithActionLinks(a.provider),
				api.WithLogger(a.logger.Named("api")),
			))

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", a.cfg.HTTPAddr)
				errCh <- srv.Serve(a.cfg.HTTPAddr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.ShutdownWithContext(shutdownCtx)
		}),
	}
}
