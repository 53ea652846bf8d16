package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
	"github.com/rushtracker/rushtracker/pkg/csvexport"
)

// BrothersCmd creates the brotherhood command group
func BrothersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brothers",
		Short: "View and manage the brotherhood",
	}
	cmd.AddCommand(
		brothersListCmd(app),
		brothersPositionCmd(app),
		brothersToggleCmd(app),
		brothersImportCmd(app),
		brothersTemplateCmd(app),
		brothersExportCmd(app),
	)
	return cmd
}

func brothersListCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List brothers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermViewBrotherhood); err != nil {
				return err
			}
			showAll, _ := cmd.Flags().GetBool("all")

			brothers, err := services.ListBrothers(app.Ctx, app.API, app.Logger, showAll)
			if err != nil {
				return userMessage(err, "Failed to load brothers")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%d brothers\n\n", len(brothers))
			for _, b := range brothers {
				fmt.Fprintf(out, "  %-24s %-28s %-10s %3d events", b.Name, b.Email, b.Position, len(b.EventsAttended))
				if !b.IsActive {
					warnColor.Fprint(out, "  inactive")
				}
				dimColor.Fprintf(out, "  (%s)\n", b.ID)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "Include inactive brothers")
	return cmd
}

func brothersPositionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "position <brother_id> <position>",
		Short: "Change a brother's position (President, Rush Chair or Brother)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageBrotherhood); err != nil {
				return err
			}
			// "Rush Chair" may arrive unquoted as two words
			position := args[1]
			for _, a := range args[2:] {
				position += " " + a
			}

			updated, err := services.ChangePosition(app.Ctx, app.API, app.Logger, args[0], position)
			if err != nil {
				return userMessage(err, "Failed to update position")
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Position set to %s\n", updated)
			return nil
		},
	}
}

func brothersToggleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <brother_id>",
		Short: "Mark a brother active or inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageBrotherhood); err != nil {
				return err
			}
			if err := services.ToggleBrotherActive(app.Ctx, app.API, app.Logger, args[0]); err != nil {
				return userMessage(err, "Failed to update brother")
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Active status toggled")
			return nil
		},
	}
}

func brothersImportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create brothers from a Name,Email,Position CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageBrotherhood); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			result, err := services.ImportBrothers(app.Ctx, app.API, app.Logger, f)
			if err != nil {
				return userMessage(err, "Failed to import brothers")
			}

			out := cmd.OutOrStdout()
			if len(result.Failed) == 0 {
				successColor.Fprintf(out, "✓ %s\n", result.Message())
				return nil
			}
			warnColor.Fprintf(out, "⚠️  %s\n", result.Message())
			for _, fail := range result.Failed {
				errorColor.Fprintf(out, "  ✗ line %d %s: %v\n", fail.Line, fail.Name, fail.Err)
			}
			return nil
		},
	}
}

func brothersTemplateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Write an empty import template (Brothers.csv)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageBrotherhood); err != nil {
				return err
			}
			path, err := csvexport.Write(app.Cfg.ExportDir, "Brothers.csv", csvexport.BrotherTemplate)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Template written to %s\n", path)
			return nil
		},
	}
}

func brothersExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export brother attendance for every event to CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageBrotherhood); err != nil {
				return err
			}
			showAll, _ := cmd.Flags().GetBool("all")

			path, err := services.ExportAttendance(app.Ctx, app.API, app.Logger, showAll, app.Cfg.ExportDir, time.Now())
			if err != nil {
				return userMessage(err, "Failed to export attendance")
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "Include inactive brothers")
	return cmd
}

// ProfileCmd creates the profile command group for the logged-in brother
func ProfileCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}
	cmd.AddCommand(profileShowCmd(app), profileUpdateCmd(app), profilePasswordCmd(app))
	return cmd
}

func printBrother(cmd *cobra.Command, b model.Brother) {
	out := cmd.OutOrStdout()
	headerColor.Fprintf(out, "\n%s\n", b.Name)
	fmt.Fprintf(out, "  Email:    %s\n", b.Email)
	fmt.Fprintf(out, "  Position: %s\n", b.Position)
	fmt.Fprintf(out, "  Phone:    %s\n", orNA(b.Phone))
	fmt.Fprintf(out, "  Major:    %s\n", orNA(b.Major))
	fmt.Fprintf(out, "  Year:     %s\n\n", model.YearDisplay(b.Year.String()))
}

func profileShowCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermProfile)
			if err != nil {
				return err
			}
			printBrother(cmd, brother)
			return nil
		},
	}
}

func profileUpdateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your phone, major and year (prompts for anything not given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermProfile)
			if err != nil {
				return err
			}

			in := services.ProfileInput{Phone: brother.Phone, Major: brother.Major, Year: brother.Year.String()}
			fields := []struct {
				flag  string
				label string
				dst   *string
			}{
				{"phone", "Phone", &in.Phone},
				{"major", "Major", &in.Major},
				{"year", "Year (1-4)", &in.Year},
			}
			for _, f := range fields {
				if cmd.Flags().Changed(f.flag) {
					*f.dst, _ = cmd.Flags().GetString(f.flag)
					continue
				}
				v, err := app.Prompt.Default(f.label, *f.dst)
				if err != nil {
					return err
				}
				*f.dst = v
			}

			updated, err := services.UpdateOwnProfile(app.Ctx, app.API, app.Logger, in)
			if err != nil {
				return userMessage(err, "Failed to update profile")
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Profile updated")
			printBrother(cmd, *updated)
			return nil
		},
	}
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("major", "", "Major")
	cmd.Flags().String("year", "", "Year: 1, 2, 3 or 4")
	return cmd
}

func profilePasswordCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermProfile); err != nil {
				return err
			}

			var in services.PasswordChange
			for _, f := range []struct {
				label string
				dst   *string
			}{
				{"Current password: ", &in.Current},
				{"New password: ", &in.New},
				{"Confirm new password: ", &in.Confirm},
			} {
				v, err := app.Prompt.Line(f.label)
				if err != nil {
					return err
				}
				*f.dst = v
			}

			if err := services.ChangePassword(app.Ctx, app.API, app.Logger, in); err != nil {
				return userMessage(err, "Failed to change password")
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Password changed")
			return nil
		},
	}
}
