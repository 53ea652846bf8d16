package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
)

// WrappedCmd shows the end-of-cycle summary
func WrappedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "wrapped",
		Short: "Rush season in review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermWrapped); err != nil {
				return err
			}
			stats, err := services.Wrapped(app.Ctx, app.API, app.Logger)
			if err != nil {
				return userMessage(err, "Failed to load stats")
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func printStats(w io.Writer, s *model.Stats) {
	headerColor.Fprintln(w, "\n🎉 Rush Wrapped")
	fmt.Fprintf(w, "\n  %d rushees · %d events · %d comments\n", s.TotalRushees, s.TotalEvents, s.TotalComments)

	headerColor.Fprintln(w, "\n  Top commenters")
	if len(s.TopCommenters) == 0 {
		dimColor.Fprintln(w, "    No comments yet.")
	}
	for i, c := range s.TopCommenters {
		fmt.Fprintf(w, "    %d. %s (%d)\n", i+1, c.Name, c.Count)
	}

	printHighlight(w, "Longest note", s.LongestNote, "")
	printHighlight(w, "Most upvoted", s.MostUpvoted, "▲")
	printHighlight(w, "Most downvoted", s.MostDownvoted, "▼")
	fmt.Fprintln(w)
}

func printHighlight(w io.Writer, title string, h *model.NoteHighlight, marker string) {
	headerColor.Fprintf(w, "\n  %s\n", title)
	if h == nil {
		dimColor.Fprintln(w, "    None")
		return
	}
	fmt.Fprintf(w, "    %q\n", h.Content)
	line := "    by " + h.Author
	if h.Rushee != "" {
		line += " on " + h.Rushee
	}
	if marker != "" {
		line += fmt.Sprintf(" · %s %d", marker, h.Count)
	}
	dimColor.Fprintln(w, line)
}
