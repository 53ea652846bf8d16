package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
	headerColor  = color.New(color.Bold)
)

// statusColor picks the colour a rushee status is printed in
func statusColor(s model.Status) *color.Color {
	switch s {
	case model.StatusActive:
		return color.New(color.FgGreen)
	case model.StatusPotential:
		return color.New(color.FgCyan)
	case model.StatusDropped:
		return color.New(color.FgYellow)
	case model.StatusRejected:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// voteMarker shows the counts with the caller's own vote in brackets
func voteMarker(v services.NoteView) string {
	up := fmt.Sprintf("▲ %d", v.Upvotes)
	down := fmt.Sprintf("▼ %d", v.Downvotes)
	if v.Upvoted {
		up = "[" + up + "]"
	}
	if v.Downvoted {
		down = "[" + down + "]"
	}
	return up + "  " + down
}

func printNote(w io.Writer, v services.NoteView, withRushee bool) {
	header := fmt.Sprintf("%s · %s", v.Author, v.Timestamp.Local().Format("Jan 2 15:04"))
	if withRushee {
		header = fmt.Sprintf("%s on %s", header, v.RusheeName)
	}
	dimColor.Fprintf(w, "  %s  (note %s)\n", header, v.ID)
	fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(v.Content, "\n", "\n    "))
	fmt.Fprintf(w, "    %s\n", voteMarker(v))
}

func printRusheeLine(w io.Writer, r model.Rushee) {
	tags := ""
	if len(r.Tags) > 0 {
		tags = " [" + strings.Join(r.Tags, ", ") + "]"
	}
	fmt.Fprintf(w, "  %-24s %-28s %s%s  ", r.Name, r.Email, statusColor(r.Status).Sprint(r.Status), tags)
	dimColor.Fprintf(w, "(%s)\n", r.ID)
}

func printRusheeCard(w io.Writer, r model.Rushee, brotherID string) {
	headerColor.Fprintf(w, "\n%s\n", r.Name)
	fmt.Fprintf(w, "  Status:  %s\n", statusColor(r.Status).Sprint(r.Status))
	fmt.Fprintf(w, "  Email:   %s\n", r.Email)
	fmt.Fprintf(w, "  Phone:   %s\n", orNA(r.Phone))
	fmt.Fprintf(w, "  Major:   %s\n", orNA(r.Major))
	fmt.Fprintf(w, "  Year:    %s\n", model.YearDisplay(string(r.Year)))
	fmt.Fprintf(w, "  GPA:     %s\n", model.FormatGPA(r.GPA))
	if r.Picture != "" {
		fmt.Fprintf(w, "  Picture: %s\n", r.Picture)
	}
	if r.Resume != "" {
		fmt.Fprintf(w, "  Resume:  %s\n", r.Resume)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:    %s\n", strings.Join(r.Tags, ", "))
	}

	var events []string
	for _, e := range r.EventsAttended {
		if e.Name != "" {
			events = append(events, e.Name)
		} else {
			events = append(events, e.ID)
		}
	}
	fmt.Fprintf(w, "  Events:  %s\n", orNA(strings.Join(events, ", ")))

	for _, v := range r.Vouches {
		fmt.Fprintf(w, "  Vouch from %s: %s\n", orNA(v.Brother.Name), v.Comment)
	}

	notes := services.RusheeNotes(r, brotherID)
	fmt.Fprintf(w, "\n  Notes (%d)\n", len(notes))
	for _, v := range notes {
		printNote(w, v, false)
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func printBatchResult(w io.Writer, verb string, result *services.BatchResult) {
	if result.OK() {
		successColor.Fprintf(w, "✓ %s\n", result.Summary(verb))
		return
	}
	warnColor.Fprintf(w, "⚠️  %s\n", result.Summary(verb))
	for _, f := range result.Failed {
		errorColor.Fprintf(w, "  ✗ %s: %v\n", f.ID, f.Err)
	}
}
