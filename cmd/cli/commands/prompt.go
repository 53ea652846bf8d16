package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rushtracker/rushtracker/pkg/core/forms"
)

// ErrInputClosed is returned when input ends in the middle of a prompt
var ErrInputClosed = errors.New("input closed")

// Prompter reads answers line by line. The interactive session shares it so no input is lost
// between the command loop and prompts.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the next trimmed line
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Default returns current when the user enters nothing
func (p *Prompter) Default(label, current string) (string, error) {
	if current != "" {
		label = fmt.Sprintf("%s [%s]: ", label, current)
	} else {
		label += ": "
	}
	v, err := p.Line(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// Confirm asks a yes/no question; anything but y or yes is no
func (p *Prompter) Confirm(label string) (bool, error) {
	v, err := p.Line(label + " [y/N]: ")
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes", nil
}

// FillForm asks every question, then re-asks the ones that fail validation until the form is
// valid
func (p *Prompter) FillForm(filler *forms.Filler, policy forms.Policy) error {
	controls := filler.Controls()
	for _, c := range controls {
		if err := p.askControl(filler, c); err != nil {
			return err
		}
	}

	for {
		errs := filler.Validate(policy)
		if errs.Valid() {
			return nil
		}
		for _, c := range filler.Controls() {
			msg, failed := errs[c.QuestionID]
			if !failed {
				continue
			}
			fmt.Fprintf(p.out, "  %s: %s\n", c.Label, msg)
			if err := p.askControl(filler, c); err != nil {
				return err
			}
		}
	}
}

func (p *Prompter) askControl(filler *forms.Filler, c forms.Control) error {
	label := c.Label
	if c.Required {
		label += " *"
	}

	for {
		var err error
		switch c.Kind {
		case forms.KindRating:
			err = p.askRating(filler, c, label)
		case forms.KindRadioGroup:
			err = p.askChoice(filler, c, label)
		case forms.KindCheckboxGroup:
			err = p.askCheckboxes(filler, c, label)
		default:
			var v string
			v, err = p.Default(label, c.Value)
			if err == nil && v != "" {
				err = filler.Set(c.QuestionID, v)
			}
		}

		if err == nil || errors.Is(err, ErrInputClosed) {
			return err
		}
		fmt.Fprintf(p.out, "  ❌ %v\n", err)
	}
}

func (p *Prompter) askRating(filler *forms.Filler, c forms.Control, label string) error {
	v, err := p.Default(fmt.Sprintf("%s (%d-%d)", label, 1, len(c.Choices)), c.Value)
	if err != nil || v == "" {
		return err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	return filler.SelectRating(c.QuestionID, n)
}

func (p *Prompter) printChoices(c forms.Control) {
	for i, ch := range c.Choices {
		mark := " "
		if ch.Selected {
			mark = "x"
		}
		fmt.Fprintf(p.out, "  [%s] %d. %s\n", mark, i+1, ch.Label)
	}
}

// choiceValue accepts either a 1-based position or the option text
func choiceValue(c forms.Control, input string) (string, error) {
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(c.Choices) {
			return "", fmt.Errorf("choose 1-%d", len(c.Choices))
		}
		return c.Choices[n-1].Value, nil
	}
	for _, ch := range c.Choices {
		if strings.EqualFold(ch.Value, input) {
			return ch.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", forms.ErrUnknownOption, input)
}

func (p *Prompter) askChoice(filler *forms.Filler, c forms.Control, label string) error {
	fmt.Fprintln(p.out, label)
	p.printChoices(c)
	v, err := p.Line("> ")
	if err != nil || v == "" {
		return err
	}
	option, err := choiceValue(c, v)
	if err != nil {
		return err
	}
	return filler.Choose(c.QuestionID, option)
}

func (p *Prompter) askCheckboxes(filler *forms.Filler, c forms.Control, label string) error {
	fmt.Fprintln(p.out, label+" (comma separated, '-' for none)")
	p.printChoices(c)
	v, err := p.Line("> ")
	if err != nil || v == "" {
		return err
	}

	var picked []string
	if v != "-" {
		for _, part := range forms.ParseOptions(v) {
			option, err := choiceValue(c, part)
			if err != nil {
				return err
			}
			picked = append(picked, option)
		}
	}

	for _, ch := range c.Choices {
		if err := filler.Toggle(c.QuestionID, ch.Value, false); err != nil {
			return err
		}
	}
	for _, option := range picked {
		if err := filler.Toggle(c.QuestionID, option, true); err != nil {
			return err
		}
	}
	return nil
}
