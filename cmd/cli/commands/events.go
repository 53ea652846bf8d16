package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/forms"
	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
	"github.com/rushtracker/rushtracker/pkg/csvexport"
)

const dateLayout = "2006-01-02"

// EventsCmd creates the events command group
func EventsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Create events, fill in forms and review submissions",
	}
	cmd.AddCommand(
		eventsListCmd(app),
		eventsShowCmd(app),
		eventsCreateCmd(app),
		eventsBuildCmd(app),
		eventsSubmitCmd(app),
		eventsSubmissionsCmd(app),
		eventsExportCmd(app),
	)
	return cmd
}

func eventsListCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.authorize(PermViewEvents); err != nil {
				return err
			}

			filter := apiclient.EventFilter{}
			filter.Name, _ = cmd.Flags().GetString("name")
			for flag, dst := range map[string]*time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
				v, _ := cmd.Flags().GetString(flag)
				if v == "" {
					continue
				}
				t, err := time.ParseInLocation(dateLayout, v, time.Local)
				if err != nil {
					return fmt.Errorf("--%s must be YYYY-MM-DD: %w", flag, err)
				}
				*dst = t
			}

			events, err := services.ListEvents(app.Ctx, app.API, app.Logger, filter)
			if err != nil {
				return userMessage(err, "Failed to load events")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%d events\n\n", len(events))
			for _, e := range events {
				printEventLine(cmd, e)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Name contains")
	cmd.Flags().String("from", "", "Starting on or after (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Starting on or before (YYYY-MM-DD)")
	return cmd
}

func printEventLine(cmd *cobra.Command, e model.Event) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s  %-28s %s  ", e.Start.Local().Format("Mon Jan 2 15:04"), e.Name, e.Location)
	dimColor.Fprintf(out, "(%s)\n", e.ID)
}

func eventsShowCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event_id>",
		Short: "Show an event and its forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermViewEvents)
			if err != nil {
				return err
			}
			e, err := app.API.GetEvent(app.Ctx, brother.Frat, args[0])
			if err != nil {
				return userMessage(err, "Failed to load event")
			}

			out := cmd.OutOrStdout()
			headerColor.Fprintf(out, "\n%s\n", e.Name)
			fmt.Fprintf(out, "  %s - %s\n", e.Start.Local().Format("Mon Jan 2 15:04"), e.End.Local().Format("15:04"))
			fmt.Fprintf(out, "  Location: %s\n", orNA(e.Location))
			printForm(out, "Brother form", e.BrotherForm)
			printForm(out, "Rushee form", e.RusheeForm)
			if app.Cfg.PublicBaseURL != "" {
				fmt.Fprintf(out, "\n  Rushee link: %s\n", RusheeFormLink(app.Cfg.PublicBaseURL, brother.Frat, e.ID))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// RusheeFormLink is the public page rushees use to fill in an event form
func RusheeFormLink(base, fratID, eventID string) string {
	return fmt.Sprintf("%s/rushee-form/%s/%s", strings.TrimRight(base, "/"), fratID, eventID)
}

func printForm(out io.Writer, title string, form model.Form) {
	fmt.Fprintf(out, "\n  %s\n", title)
	for i, q := range form.Questions {
		req := ""
		if q.Required {
			req = " *"
		}
		fmt.Fprintf(out, "    %d. %s%s ", i+1, q.Question, req)
		dimColor.Fprintf(out, "(%s)\n", q.QuestionType)
		if len(q.Options) > 0 {
			dimColor.Fprintf(out, "       %v\n", q.Options)
		}
	}
}

func eventsCreateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <definition.yaml>",
		Short: "Create an event (or a recurring series) from a YAML definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageEvents)
			if err != nil {
				return err
			}
			def, err := forms.LoadEventDefinition(args[0])
			if err != nil {
				return err
			}

			result, err := services.CreateEvents(app.Ctx, app.API, app.Logger, def, brother.Frat)
			return printCreated(cmd, result, err)
		},
	}
}

func eventsBuildCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Create an event by answering prompts and building its forms question by question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageEvents)
			if err != nil {
				return err
			}

			def, err := app.Prompt.EventDefinition()
			if err != nil {
				return err
			}
			brotherForm, err := app.Prompt.BuildForm(forms.NewBrotherForm(), "Brother form")
			if err != nil {
				return err
			}
			rusheeForm, err := app.Prompt.BuildForm(forms.NewRusheeForm(), "Rushee form")
			if err != nil {
				return err
			}
			def.BrotherQuestions = brotherForm.Questions
			def.RusheeQuestions = rusheeForm.Questions

			result, err := services.CreateEvents(app.Ctx, app.API, app.Logger, def, brother.Frat)
			return printCreated(cmd, result, err)
		},
	}
}

// printCreated lists the events created before any failure, then reports the failure
func printCreated(cmd *cobra.Command, result *services.CreateEventsResult, err error) error {
	if result != nil {
		for _, e := range result.Events {
			successColor.Fprint(cmd.OutOrStdout(), "✓ ")
			printEventLine(cmd, e)
		}
	}
	return userMessage(err, "Failed to create event")
}

func eventsSubmitCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <event_id>",
		Short: "Fill in the brother form for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermViewEvents)
			if err != nil {
				return err
			}
			e, err := app.API.GetEvent(app.Ctx, brother.Frat, args[0])
			if err != nil {
				return userMessage(err, "Failed to load event")
			}

			headerColor.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", e.Name)
			filler := forms.NewFiller(e.BrotherForm.Questions)
			if err := app.Prompt.FillForm(filler, app.Cfg.FormPolicy()); err != nil {
				return err
			}

			event := *e
			event.BrotherForm.Questions = filler.Questions()
			if err := services.SubmitBrotherEventForm(app.Ctx, app.API, app.Logger, event, filler.Encode(), app.Cfg.FormPolicy()); err != nil {
				return userMessage(err, "Failed to submit form")
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Form submitted")
			return nil
		},
	}
}

func submissionKind(cmd *cobra.Command) (model.SubmissionType, error) {
	kind, _ := cmd.Flags().GetString("type")
	switch model.SubmissionType(kind) {
	case model.SubmissionRushee, model.SubmissionBrother:
		return model.SubmissionType(kind), nil
	}
	return "", fmt.Errorf("--type must be rushee or brother, got %q", kind)
}

func eventsSubmissionsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions <event_id>",
		Short: "Show the submissions for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageEvents)
			if err != nil {
				return err
			}
			kind, err := submissionKind(cmd)
			if err != nil {
				return err
			}
			e, err := app.API.GetEvent(app.Ctx, brother.Frat, args[0])
			if err != nil {
				return userMessage(err, "Failed to load event")
			}
			subs, err := app.API.ListSubmissions(app.Ctx, e.ID, kind)
			if err != nil {
				return userMessage(err, "Failed to load submissions")
			}

			questions := services.FormFor(*e, kind).Questions
			table := csvexport.SubmissionsWithAuthor(questions, subs)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%d %s submissions for %s\n", len(subs), kind, e.Name)
			for _, row := range table.Rows {
				headerColor.Fprintf(out, "\n  %s\n", orNA(row[0]))
				for i, q := range table.Header[1:] {
					fmt.Fprintf(out, "    %s: %s\n", q, orNA(row[i+1]))
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().String("type", string(model.SubmissionRushee), "Submission type: rushee or brother")
	return cmd
}

func eventsExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <event_id>",
		Short: "Export an event's submissions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageEvents)
			if err != nil {
				return err
			}
			kind, err := submissionKind(cmd)
			if err != nil {
				return err
			}
			e, err := app.API.GetEvent(app.Ctx, brother.Frat, args[0])
			if err != nil {
				return userMessage(err, "Failed to load event")
			}

			path, err := services.ExportSubmissions(app.Ctx, app.API, app.Logger, *e, kind, app.Cfg.ExportDir, time.Now())
			if err != nil {
				return userMessage(err, "Failed to export submissions")
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("type", string(model.SubmissionRushee), "Submission type: rushee or brother")
	return cmd
}
