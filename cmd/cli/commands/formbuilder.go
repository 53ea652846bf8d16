package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rushtracker/rushtracker/pkg/core/forms"
	"github.com/rushtracker/rushtracker/pkg/core/model"
)

const (
	builderHelp     = "a add · e <n> edit · r <n> remove · d done"
	eventTimeLayout = "2006-01-02 15:04"
)

// BuildForm edits b until the author enters done on a valid form. Errors from a single
// action are printed and the loop continues; only closed input ends it early.
func (p *Prompter) BuildForm(b *forms.Builder, title string) (model.Form, error) {
	for {
		printForm(p.out, title, model.Form{Questions: b.Questions()})
		dimColor.Fprintf(p.out, "\n%s\n", builderHelp)

		line, err := p.Line("> ")
		if err != nil {
			return model.Form{}, err
		}
		action, arg, _ := strings.Cut(line, " ")

		switch strings.ToLower(action) {
		case "a", "add":
			b.AddBlank()
			err = p.editQuestion(b, b.Len()-1)
		case "e", "edit":
			var i int
			if i, err = questionIndex(arg, b.Len()); err == nil {
				err = p.editQuestion(b, i)
			}
		case "r", "rm", "remove":
			var i int
			if i, err = questionIndex(arg, b.Len()); err == nil {
				err = b.Remove(i)
			}
		case "d", "done":
			form, ferr := b.Form()
			if ferr == nil {
				return form, nil
			}
			err = ferr
		default:
			err = fmt.Errorf("unknown action %q", action)
		}

		if errors.Is(err, ErrInputClosed) {
			return model.Form{}, err
		}
		if err != nil {
			errorColor.Fprintf(p.out, "❌ %s\n", err)
		}
	}
}

// questionIndex turns the 1-based number shown to the author into an index
func questionIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("pick a question between 1 and %d", n)
	}
	return i - 1, nil
}

func (p *Prompter) editQuestion(b *forms.Builder, i int) error {
	if b.IsLocked(i) {
		return forms.ErrLockedQuestion
	}
	q := b.Questions()[i]

	label, err := p.Default("Question", q.Question)
	if err != nil {
		return err
	}
	if err := b.SetLabel(i, label); err != nil {
		return err
	}

	typ, err := p.Default("Type ("+questionTypeNames()+")", string(q.QuestionType))
	if err != nil {
		return err
	}
	t := parseQuestionType(typ)
	if err := b.SetType(i, t); err != nil {
		return err
	}

	required, err := p.Default("Required (y/n)", yesNo(q.Required))
	if err != nil {
		return err
	}
	if err := b.SetRequired(i, strings.HasPrefix(strings.ToLower(required), "y")); err != nil {
		return err
	}

	if !t.HasOptions() {
		if len(q.Options) == 0 {
			return nil
		}
		edited := b.Questions()[i]
		edited.Options = nil
		return b.Update(i, edited)
	}
	options, err := p.Default("Options (comma separated)", strings.Join(q.Options, ", "))
	if err != nil {
		return err
	}
	return b.SetOptionsFromCSV(i, options)
}

// parseQuestionType accepts a type name in any case or its number in model.QuestionTypes
func parseQuestionType(v string) model.QuestionType {
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(model.QuestionTypes) {
		return model.QuestionTypes[n-1]
	}
	for _, t := range model.QuestionTypes {
		if strings.EqualFold(v, string(t)) {
			return t
		}
	}
	return model.QuestionType(v)
}

func questionTypeNames() string {
	names := make([]string, len(model.QuestionTypes))
	for i, t := range model.QuestionTypes {
		names[i] = fmt.Sprintf("%d %s", i+1, t)
	}
	return strings.Join(names, ", ")
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

// EventDefinition asks for the event fields. Times are re-asked until they parse.
func (p *Prompter) EventDefinition() (*forms.EventDefinition, error) {
	def := &forms.EventDefinition{}
	var err error
	if def.Name, err = p.Line("Name: "); err != nil {
		return nil, err
	}
	if def.Location, err = p.Line("Location: "); err != nil {
		return nil, err
	}
	if def.Start, err = p.askTime("Start (YYYY-MM-DD HH:MM): "); err != nil {
		return nil, err
	}
	if def.End, err = p.askTime("End (YYYY-MM-DD HH:MM): "); err != nil {
		return nil, err
	}
	if def.Repeat, err = p.Line("Repeat rule, e.g. FREQ=WEEKLY;COUNT=4 (blank for none): "); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func (p *Prompter) askTime(label string) (time.Time, error) {
	for {
		v, err := p.Line(label)
		if err != nil {
			return time.Time{}, err
		}
		t, err := time.ParseInLocation(eventTimeLayout, v, time.Local)
		if err == nil {
			return t, nil
		}
		warnColor.Fprintf(p.out, "Use the format %s\n", eventTimeLayout)
	}
}
