package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/listing"
	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
)

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in as a brother",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				var err error
				if password, err = app.Prompt.Line("Password: "); err != nil {
					return err
				}
			}

			brother, err := services.Login(app.Ctx, app.API, app.Logger, services.LoginInput{Email: args[0], Password: password})
			if err != nil {
				return userMessage(err, "Login failed")
			}

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "\n✓ Welcome, %s (%s)\n\n", brother.Name, brother.Position)
			return nil
		},
	}

	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	return cmd
}

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.Logout(); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			app.Logger.Info("Logged out")
			fmt.Fprintln(cmd.OutOrStdout(), "👋 Logged out")
			return nil
		},
	}
}

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the sections available to your position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, ok := app.Session.Brother()
			if !ok {
				return ErrNotLoggedIn
			}

			out := cmd.OutOrStdout()
			headerColor.Fprintf(out, "\n%s · %s\n\n", brother.Name, brother.Position)
			for _, tab := range TabsFor(brother.Position) {
				fmt.Fprintf(out, "  %-12s ", tab.Name)
				dimColor.Fprintf(out, "%s\n", tab.Command)
			}

			if Allowed(brother.Position, PermViewRushees) {
				rushees, err := app.API.ListRushees(app.Ctx)
				if err != nil {
					app.Logger.Warn("Failed to fetch rushee counts", zap.Error(err))
					return nil
				}
				counts := listing.CountByStatus(rushees)
				fmt.Fprintf(out, "\n%d rushees:", len(rushees))
				for _, s := range model.Statuses {
					fmt.Fprintf(out, "  %s %d", statusColor(s).Sprint(s), counts[s])
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
