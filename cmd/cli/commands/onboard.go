package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/forms"
	"github.com/rushtracker/rushtracker/pkg/core/onboarding"
	"github.com/rushtracker/rushtracker/pkg/core/services"
)

// OnboardCmd walks a rushee through the event check-in. It works without logging in.
func OnboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "onboard <frat_id> <event_id>",
		Short: "Rushee check-in: email, profile and event questions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := app.API.GetEvent(app.Ctx, args[0], args[1])
			if err != nil {
				return userMessage(err, "Event not found")
			}

			out := cmd.OutOrStdout()
			headerColor.Fprintf(out, "\n%s\n", event.Name)
			dimColor.Fprintln(out, "Type 'back' at a step prompt to return to the previous step.")

			flow := onboarding.NewFlow(app.API, app.Logger, args[0], *event, app.Cfg.FormPolicy())
			for flow.State() != onboarding.Submitted {
				var stepErr error
				switch flow.State() {
				case onboarding.EmailEntry:
					stepErr = onboardEmail(app, flow)
				case onboarding.ProfileCompletion:
					stepErr = onboardProfile(app, cmd, flow)
				case onboarding.EventQuestions:
					stepErr = onboardQuestions(app, cmd, flow)
				}

				if errors.Is(stepErr, ErrInputClosed) {
					return stepErr
				}
				if stepErr != nil {
					errorColor.Fprintf(out, "❌ %s\n", userMessage(stepErr, "Something went wrong"))
				}
			}

			successColor.Fprintln(out, "\n✓ Thanks! Your responses have been recorded.")
			return nil
		},
	}
}

func onboardEmail(app *AppContext, flow *onboarding.Flow) error {
	email, err := app.Prompt.Default("School email", flow.Email())
	if err != nil {
		return err
	}
	return flow.SubmitEmail(app.Ctx, email)
}

// stepChoice asks whether to submit, redo or go back. It returns "submit", "redo" or "back".
func stepChoice(p *Prompter) (string, error) {
	v, err := p.Line("Submit? [Y/n/back]: ")
	if err != nil {
		return "", err
	}
	switch strings.ToLower(v) {
	case "", "y", "yes":
		return "submit", nil
	case "b", "back":
		return "back", nil
	default:
		return "redo", nil
	}
}

func onboardProfile(app *AppContext, cmd *cobra.Command, flow *onboarding.Flow) error {
	out := cmd.OutOrStdout()
	headerColor.Fprintln(out, "\nProfile")

	p := flow.Profile()
	fields := []struct {
		label string
		dst   *string
	}{
		{"Full name", &p.Name},
		{"Phone", &p.Phone},
		{"Major", &p.Major},
		{"Year (1-4)", &p.Year},
		{"GPA (optional)", &p.GPA},
		{"Picture (image file or URL)", &p.Picture},
		{"Resume link (optional)", &p.Resume},
	}
	for _, f := range fields {
		v, err := app.Prompt.Default(f.label, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if p.Picture != "" && !strings.HasPrefix(p.Picture, "http://") && !strings.HasPrefix(p.Picture, "https://") {
		url, err := app.Images.UploadFile(app.Ctx, p.Picture)
		if err != nil {
			return fmt.Errorf("failed to upload picture: %w", err)
		}
		app.Logger.Debug("Picture uploaded", zap.String("url", url))
		p.Picture = url
	}

	choice, err := stepChoice(app.Prompt)
	if err != nil {
		return err
	}
	switch choice {
	case "back":
		return flow.Back()
	case "redo":
		return nil
	}
	return flow.SubmitProfile(app.Ctx, p)
}

func onboardQuestions(app *AppContext, cmd *cobra.Command, flow *onboarding.Flow) error {
	headerColor.Fprintln(cmd.OutOrStdout(), "\nEvent questions")

	filler := flow.Filler()
	if err := app.Prompt.FillForm(filler, app.Cfg.FormPolicy()); err != nil {
		return err
	}

	choice, err := stepChoice(app.Prompt)
	if err != nil {
		return err
	}
	switch choice {
	case "back":
		return flow.Back()
	case "redo":
		return nil
	}
	return flow.SubmitAnswers(app.Ctx, filler.Encode())
}

// RushFormCmd fills in an event's rushee form on its own, creating the rushee if the email is new
func RushFormCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rush-form <frat_id> <event_id>",
		Short: "Fill in the public rushee form for an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := app.API.GetEvent(app.Ctx, args[0], args[1])
			if err != nil {
				return userMessage(err, "Event not found")
			}

			out := cmd.OutOrStdout()
			headerColor.Fprintf(out, "\n%s\n\n", event.Name)

			filler := forms.NewFiller(event.RusheeForm.Questions)
			if err := app.Prompt.FillForm(filler, app.Cfg.FormPolicy()); err != nil {
				return err
			}

			result, err := services.SubmitPublicRusheeForm(app.Ctx, app.API, app.Logger, args[0], *event, filler.Encode(), app.Cfg.FormPolicy())
			if err != nil {
				return userMessage(err, "Failed to submit form")
			}
			if result.Created {
				dimColor.Fprintln(out, "Welcome! We've added you to our rush list.")
			}
			successColor.Fprintln(out, "✓ Form submitted")
			return nil
		},
	}
}
