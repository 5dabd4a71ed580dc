package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	account "github.com/goliatone/go-account"
	"github.com/spf13/cobra"
)

func printUser(w io.Writer, u *account.User) {
	if u == nil {
		fmt.Fprintln(w, "not signed in")
		return
	}
	verified := "not verified"
	if u.EmailVerified {
		verified = "verified"
	}
	fmt.Fprintf(w, "%s\t%s <%s>\t%s\n", u.ID, u.Name, u.Email, verified)
}

func newSignUpCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res := a.service.SignUp(ctx, name, email, password)
			if err := resultErr(res); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), res.Value)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newSignInCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res := a.service.SignIn(ctx, email, password)
			if err := resultErr(res); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), res.Value)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the current session.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if err := a.service.SignOut(ctx); err != nil {
				return errors.New(account.MsgSignOutFailed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		}),
	}
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session user.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if a.service.StartRoute(ctx) == account.RouteLogin {
				printUser(cmd.OutOrStdout(), nil)
				return nil
			}

			session := account.NewSessionController(ctx, a.service, account.WithSessionLogger(a.logger))
			defer session.Close()
			session.Wait()

			printUser(cmd.OutOrStdout(), session.State().CurrentUser)
			return nil
		}),
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Refresh the session user from the account store.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res := a.service.ReloadSession(ctx)
			if err := resultErr(res); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), res.Value)
			return nil
		}),
	}
}

func newResetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Send a password reset link.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if err := resultErr(a.service.SendPasswordReset(ctx, email)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset link sent to %s\n", email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")

	var token, password string
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Set a new password with a reset token.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if err := a.provider.ConfirmPasswordReset(ctx, token, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password updated")
			return nil
		}),
	}
	confirm.Flags().StringVar(&token, "token", "", "token from the reset link")
	confirm.Flags().StringVar(&password, "password", "", "new password")

	cmd.AddCommand(confirm)
	return cmd
}

func newVerifyEmailCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Send a verification link, or consume one with --token.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if token == "" {
				if err := a.provider.SendEmailVerification(ctx); err != nil {
					return errors.New(account.MsgVerificationFailed)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "verification link sent")
				return nil
			}

			user, err := a.provider.VerifyEmail(ctx, token)
			if err != nil {
				return err
			}
			if err := resultErr(a.service.UpdateProfile(ctx, *user)); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		}),
	}

	cmd.Flags().StringVar(&token, "token", "", "token from the verification link")
	return cmd
}
