package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
)

// NotesCmd creates the notes command group
func NotesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Write, vote on and browse notes",
	}
	cmd.AddCommand(notesAddCmd(app), notesDeleteCmd(app), notesVoteCmd(app), notesFeedCmd(app))
	return cmd
}

func notesAddCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <rushee_id> <content>...",
		Short: "Add a note to a rushee",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermNotes)
			if err != nil {
				return err
			}
			anonymous, _ := cmd.Flags().GetBool("anonymous")

			r, err := services.AddRusheeNote(app.Ctx, app.API, app.Logger, args[0], strings.Join(args[1:], " "), anonymous)
			if err != nil {
				return userMessage(err, "Failed to add note")
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Note added")
			printRusheeCard(cmd.OutOrStdout(), *r, brother.ID)
			return nil
		},
	}
	cmd.Flags().BoolP("anonymous", "a", false, "Hide your name from other brothers")
	return cmd
}

func notesDeleteCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rushee_id> <note_id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermManageRushees); err != nil {
				return err
			}
			if _, err := services.DeleteRusheeNote(app.Ctx, app.API, app.Logger, args[0], args[1]); err != nil {
				return userMessage(err, "Failed to delete note")
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Note deleted")
			return nil
		},
	}
}

// parseVote maps the user's word to the button that was clicked
func parseVote(s string) (model.VoteAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote", "+":
		return model.VoteUp, nil
	case "down", "downvote", "-":
		return model.VoteDown, nil
	case "remove", "clear":
		return model.VoteRemove, nil
	}
	return "", fmt.Errorf("vote must be up, down or remove, got %q", s)
}

func notesVoteCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <rushee_id> <note_id> <up|down|remove>",
		Short: "Vote on a note; voting the same way twice removes your vote",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermNotes)
			if err != nil {
				return err
			}
			clicked, err := parseVote(args[2])
			if err != nil {
				return err
			}

			r, err := app.API.GetRushee(app.Ctx, args[0])
			if err != nil {
				return userMessage(err, "Failed to load rushee")
			}
			note, ok := r.FindNote(args[1])
			if !ok {
				return fmt.Errorf("note %s not found on %s", args[1], r.Name)
			}

			result, err := services.VoteOnNote(app.Ctx, app.API, app.Logger, r.ID, note, brother.ID, clicked)
			if err != nil {
				return userMessage(err, "Failed to vote")
			}

			if updated, ok := result.Rushee.FindNote(note.ID); ok {
				printNote(cmd.OutOrStdout(), services.NewNoteView(*result.Rushee, updated, brother.ID), false)
			}
			return nil
		},
	}
}

func notesFeedCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show every note, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermNotes)
			if err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			limit, _ := cmd.Flags().GetInt("limit")

			rushees, err := app.API.ListRushees(app.Ctx)
			if err != nil {
				return userMessage(err, "Failed to load notes")
			}

			views := services.Feed(rushees, brother.ID, search)
			if limit > 0 && len(views) > limit {
				views = views[:limit]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%d notes\n\n", len(views))
			for _, v := range views {
				printNote(out, v, true)
			}
			return nil
		},
	}
	cmd.Flags().String("search", "", "Note content contains (case-insensitive)")
	cmd.Flags().Int("limit", 0, "Show at most this many notes")
	return cmd
}
