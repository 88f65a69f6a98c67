package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// セッションはプロセスの外に保存しないため、logoutは設定済みのクッキーに対してのみ行う
var errNoSessionCookie = errors.New("logout needs a session cookie (session.cookie or SESSION_COOKIE)")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check that the incident API accepts a login",
	Long: `Log in and fetch the incident list once. The session is not saved
between runs; set session.cookie (SESSION_COOKIE) to reuse one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Login(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s (%d incidents)\n", app.Config.API.BaseURL, len(app.Panel.Incidents()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the configured session cookie's session on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Config.Session.Cookie == "" {
			return errNoSessionCookie
		}
		if err := app.Session.Login(cmd.Context()); err != nil {
			return fmt.Errorf("failed to login: %w", err)
		}
		if err := app.Session.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to logout: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
