package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
)

const delibsHelp = "n next · p previous · a <note> add note · s <status> set status · t <tag> tag · q quit"

// DelibsCmd steps through rushees one card at a time for deliberations
func DelibsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delibs",
		Short: "Go through rushees one at a time during deliberations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brother, err := app.authorize(PermManageRushees)
			if err != nil {
				return err
			}
			frat, err := app.API.GetFraternity(app.Ctx, brother.Frat)
			if err != nil {
				return userMessage(err, "Failed to load fraternity tags")
			}
			rushees, _, err := filteredRushees(app, cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rushees) == 0 {
				fmt.Fprintln(out, "No rushees match.")
				return nil
			}

			d := &delibs{rushees: rushees}
			for {
				printRusheeCard(out, d.current(), brother.ID)
				dimColor.Fprintf(out, "\n[%d/%d] %s\n", d.pos+1, len(d.rushees), delibsHelp)

				line, err := app.Prompt.Line("> ")
				if errors.Is(err, ErrInputClosed) {
					return nil
				}
				if err != nil {
					return err
				}

				action, arg, _ := strings.Cut(line, " ")
				arg = strings.TrimSpace(arg)
				var updated *model.Rushee
				switch strings.ToLower(action) {
				case "", "n", "next":
					d.next()
					continue
				case "p", "prev":
					d.prev()
					continue
				case "q", "quit":
					return nil
				case "a", "note":
					updated, err = services.AddRusheeNote(app.Ctx, app.API, app.Logger, d.current().ID, arg, false)
				case "s", "status":
					if _, err = services.UpdateRusheeStatus(app.Ctx, app.API, app.Logger, d.current().ID, arg); err == nil {
						updated, err = app.API.GetRushee(app.Ctx, d.current().ID)
					}
				case "t", "tag":
					updated, err = services.AddRusheeTag(app.Ctx, app.API, app.Logger, frat, d.current().ID, arg)
				default:
					warnColor.Fprintf(out, "Unknown action %q\n", action)
					continue
				}

				if err != nil {
					errorColor.Fprintf(out, "❌ %s\n", userMessage(err, "Action failed"))
					continue
				}
				d.replace(*updated)
			}
		},
	}
	addFilterFlags(cmd)
	return cmd
}

// delibs is a cursor over the rushees under discussion. It wraps at both ends.
type delibs struct {
	rushees []model.Rushee
	pos     int
}

func (d *delibs) current() model.Rushee { return d.rushees[d.pos] }

func (d *delibs) next() { d.pos = (d.pos + 1) % len(d.rushees) }

func (d *delibs) prev() { d.pos = (d.pos - 1 + len(d.rushees)) % len(d.rushees) }

func (d *delibs) replace(r model.Rushee) { d.rushees[d.pos] = r }
