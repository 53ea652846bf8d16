package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/listing"
	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
	"github.com/rushtracker/rushtracker/pkg/csvexport"
)

// RusheesCmd creates the rushees command group
func RusheesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rushees",
		Short: "Browse and manage rushees",
	}

	cmd.AddCommand(
		rusheesListCmd(app),
		rusheesShowCmd(app),
		rusheesStatusCmd(app),
		rusheesTagCmd(app, true),
		rusheesTagCmd(app, false),
		rusheesTagsCmd(app),
		rusheesBulkTagCmd(app),
		rusheesEditCmd(app),
		rusheesDeleteCmd(app),
		rusheesExportCmd(app),
	)
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "Name contains (case-insensitive)")
	cmd.Flags().StringSlice("event", nil, "Attended event ID (repeatable, all must match)")
	cmd.Flags().String("status", "", "Status: Potential, Active, Dropped or Rejected")
	cmd.Flags().String("tag", "", "Has tag")
	cmd.Flags().Bool("sort", false, "Sort alphabetically by name")
}

func readFilter(cmd *cobra.Command) (listing.RusheeFilter, error) {
	f := listing.RusheeFilter{}
	f.Search, _ = cmd.Flags().GetString("search")
	f.Events, _ = cmd.Flags().GetStringSlice("event")
	f.Tag, _ = cmd.Flags().GetString("tag")
	f.SortByName, _ = cmd.Flags().GetBool("sort")

	if status, _ := cmd.Flags().GetString("status"); status != "" {
		parsed, err := model.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = parsed
	}
	return f, nil
}

// filteredRushees fetches every rushee and applies the command's filter flags
func filteredRushees(app *AppContext, cmd *cobra.Command) ([]model.Rushee, listing.RusheeFilter, error) {
	filter, err := readFilter(cmd)
	if err != nil {
		return nil, filter, err
	}
	rushees, err := app.API.ListRushees(app.Ctx)
	if err != nil {
		return nil, filter, userMessage(err, "Failed to load rushees")
	}
	return listing.Apply(rushees, filter), filter, nil
}

func rusheesListCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rushees, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermViewRushees); err != nil {
				return err
			}
			rushees, filter, err := filteredRushees(app, cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if filter.Active() {
				fmt.Fprintf(out, "\n%d rushees match\n\n", len(rushees))
			} else {
				fmt.Fprintf(out, "\n%d rushees\n\n", len(rushees))
			}
			for _, r := range rushees {
				printRusheeLine(out, r)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func rusheesShowCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <rushee_id>",
		Short: "Show a rushee's profile and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermViewRushees)
			if err != nil {
				return err
			}
			r, err := app.API.GetRushee(app.Ctx, args[0])
			if err != nil {
				return userMessage(err, "Failed to load rushee")
			}
			printRusheeCard(cmd.OutOrStdout(), *r, brother.ID)
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func rusheesStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <rushee_id> <status>",
		Short: "Set a rushee's status (Potential, Active, Dropped, Rejected)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageRushees); err != nil {
				return err
			}
			status, err := services.UpdateRusheeStatus(app.Ctx, app.API, app.Logger, args[0], args[1])
			if err != nil {
				return userMessage(err, "Failed to update status")
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Status set to %s\n", status)
			return nil
		},
	}
}

func rusheesTagCmd(app *AppContext, add bool) *cobra.Command {
	use, short := "tag", "Add a tag to a rushee"
	if !add {
		use, short = "untag", "Remove a tag from a rushee"
	}

	return &cobra.Command{
		Use:   use + " <rushee_id> <tag>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageRushees)
			if err != nil {
				return err
			}

			var r *model.Rushee
			if add {
				frat, ferr := app.API.GetFraternity(app.Ctx, brother.Frat)
				if ferr != nil {
					return userMessage(ferr, "Failed to load fraternity tags")
				}
				r, err = services.AddRusheeTag(app.Ctx, app.API, app.Logger, frat, args[0], args[1])
			} else {
				r, err = services.RemoveRusheeTag(app.Ctx, app.API, app.Logger, args[0], args[1])
			}
			if err != nil {
				return userMessage(err, "Failed to update tags")
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ %s tags: %v\n", r.Name, r.Tags)
			return nil
		},
	}
}

func rusheesTagsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <rushee_id>",
		Short: "Show the tags that can be applied to a rushee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermViewRushees)
			if err != nil {
				return err
			}
			r, err := app.API.GetRushee(app.Ctx, args[0])
			if err != nil {
				return userMessage(err, "Failed to load rushee")
			}
			frat, err := app.API.GetFraternity(app.Ctx, brother.Frat)
			if err != nil {
				return userMessage(err, "Failed to load fraternity tags")
			}

			out := cmd.OutOrStdout()
			for _, tag := range services.OfferedTags(frat, *r) {
				mark := " "
				if r.HasTag(tag) {
					mark = "x"
				}
				fmt.Fprintf(out, "  [%s] %s\n", mark, tag)
			}
			return nil
		},
	}
}

func rusheesBulkTagCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-tag <tag>",
		Short: "Tag every rushee matching the filter flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageRushees)
			if err != nil {
				return err
			}
			frat, err := app.API.GetFraternity(app.Ctx, brother.Frat)
			if err != nil {
				return userMessage(err, "Failed to load fraternity tags")
			}
			rushees, filter, err := filteredRushees(app, cmd)
			if err != nil {
				return err
			}
			if !filter.Active() {
				ok, err := app.Prompt.Confirm(fmt.Sprintf("No filter set. Tag all %d rushees with %q?", len(rushees), args[0]))
				if err != nil || !ok {
					return err
				}
			}

			result, err := services.BulkAddTag(app.Ctx, app.API, app.Logger, frat, rushees, args[0])
			if err != nil {
				return err
			}
			printBatchResult(cmd.OutOrStdout(), "Tagged", result)
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func rusheesEditCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <rushee_id>",
		Short: "Edit a rushee's profile fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageRushees)
			if err != nil {
				return err
			}

			u := apiclient.RusheeUpdate{}
			u.Name, _ = cmd.Flags().GetString("name")
			u.Email, _ = cmd.Flags().GetString("email")
			u.Phone, _ = cmd.Flags().GetString("phone")
			u.Major, _ = cmd.Flags().GetString("major")
			u.Year, _ = cmd.Flags().GetString("year")
			u.GPA, _ = cmd.Flags().GetString("gpa")
			u.Resume, _ = cmd.Flags().GetString("resume")
			u.Picture, _ = cmd.Flags().GetString("picture")

			if file, _ := cmd.Flags().GetString("picture-file"); file != "" {
				u.Picture, err = app.Images.UploadFile(app.Ctx, file)
				if err != nil {
					return userMessage(err, "Failed to upload picture")
				}
			}
			if u == (apiclient.RusheeUpdate{}) {
				return fmt.Errorf("nothing to update (see --help for fields)")
			}

			r, err := services.UpdateRusheeProfile(app.Ctx, app.API, app.Logger, brother.Frat, args[0], u)
			if err != nil {
				return userMessage(err, "Failed to update rushee")
			}
			printRusheeCard(cmd.OutOrStdout(), *r, brother.ID)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Name")
	cmd.Flags().String("email", "", "Email")
	cmd.Flags().String("phone", "", "Phone")
	cmd.Flags().String("major", "", "Major")
	cmd.Flags().String("year", "", "Class year (1-4)")
	cmd.Flags().String("gpa", "", "GPA")
	cmd.Flags().String("picture", "", "Picture URL")
	cmd.Flags().String("picture-file", "", "Upload a local image as the picture")
	cmd.Flags().String("resume", "", "Resume URL")
	return cmd
}

func rusheesDeleteCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <rushee_id>...",
		Short: "Delete one or more rushees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageRushees); err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := app.Prompt.Confirm(fmt.Sprintf("Delete %d rushees? This cannot be undone.", len(args)))
				if err != nil || !ok {
					return err
				}
			}

			result := services.BatchDeleteRushees(app.Ctx, app.API, app.Logger, args)
			printBatchResult(cmd.OutOrStdout(), "Deleted", result)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation")
	return cmd
}

func rusheesExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export rushee names and emails to CSV (respects filter flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermViewRushees); err != nil {
				return err
			}
			rushees, _, err := filteredRushees(app, cmd)
			if err != nil {
				return err
			}

			name := csvexport.Filename("rushees_export", time.Now())
			path, err := csvexport.Write(app.Cfg.ExportDir, name, csvexport.Rushees(rushees).String())
			if err != nil {
				return err
			}
			app.Logger.Info("Exported rushees", zap.String("path", path), zap.Int("count", len(rushees)))
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rushees to %s\n", len(rushees), path)
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

// TagsCmd manages the fraternity's tag vocabulary
func TagsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the fraternity's rushee tags",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the fraternity's tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermViewRushees)
			if err != nil {
				return err
			}
			frat, err := app.API.GetFraternity(app.Ctx, brother.Frat)
			if err != nil {
				return userMessage(err, "Failed to load fraternity")
			}
			for _, t := range frat.Tags {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", t)
			}
			return nil
		},
	}

	change := func(add bool) *cobra.Command {
		use, short := "add <tag>", "Add a tag to the vocabulary"
		if !add {
			use, short = "remove <tag>", "Remove a tag from the vocabulary (rushees keep it)"
		}
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				brother, err := app.authorize(PermManageRushees)
				if err != nil {
					return err
				}
				var frat *model.Fraternity
				if add {
					frat, err = services.AddFraternityTag(app.Ctx, app.API, app.Logger, brother.Frat, args[0])
				} else {
					frat, err = services.RemoveFraternityTag(app.Ctx, app.API, app.Logger, brother.Frat, args[0])
				}
				if err != nil {
					return userMessage(err, "Failed to update tags")
				}
				successColor.Fprintf(cmd.OutOrStdout(), "✓ Tags: %v\n", frat.Tags)
				return nil
			},
		}
	}

	cmd.AddCommand(list, change(true), change(false))
	return cmd
}
