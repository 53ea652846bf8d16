package forms

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// EventDefinition is an event authored in a YAML file. The default questions are added
// automatically; listing them again in the file is allowed and they are not duplicated.
type EventDefinition struct {
	Name             string           `yaml:"name" validate:"required"`
	Location         string           `yaml:"location,omitempty"`
	Start            time.Time        `yaml:"start"`
	End              time.Time        `yaml:"end" validate:"gtfield=Start"`
	Repeat           string           `yaml:"repeat,omitempty"`
	BrotherQuestions []model.Question `yaml:"brotherQuestions,omitempty"`
	RusheeQuestions  []model.Question `yaml:"rusheeQuestions,omitempty"`
}

// LoadEventDefinition reads an event definition from path
func LoadEventDefinition(path string) (*EventDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event definition: %w", err)
	}
	return ParseEventDefinition(bytes.NewReader(data))
}

// ParseEventDefinition decodes and validates an event definition. Unknown keys are rejected.
func ParseEventDefinition(r io.Reader) (*EventDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def EventDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse event definition: %w", err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the event fields and the recurrence rule
func (d *EventDefinition) Validate() error {
	if d.Start.IsZero() || d.End.IsZero() {
		return fmt.Errorf("event definition validation failed: start and end are required")
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("event definition validation failed: %w", err)
	}
	if d.Repeat != "" {
		if _, err := rrule.StrToRRule(d.Repeat); err != nil {
			return fmt.Errorf("invalid rrule in repeat: %w", err)
		}
	}
	return nil
}

// Event builds the event with both forms, defaults first
func (d *EventDefinition) Event(fraternity string) (model.Event, error) {
	brother, err := buildForm(NewBrotherForm(), d.BrotherQuestions)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid brother form: %w", err)
	}
	rushee, err := buildForm(NewRusheeForm(), d.RusheeQuestions)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid rushee form: %w", err)
	}

	return model.Event{
		Name:        strings.TrimSpace(d.Name),
		Location:    strings.TrimSpace(d.Location),
		Start:       d.Start,
		End:         d.End,
		BrotherForm: brother,
		RusheeForm:  rushee,
		Fraternity:  fraternity,
	}, nil
}

func buildForm(b *Builder, extra []model.Question) (model.Form, error) {
	defaults := make(map[string]bool, b.Len())
	for _, q := range b.Questions() {
		defaults[q.Question] = true
	}
	for _, q := range extra {
		if defaults[q.Question] {
			continue
		}
		b.Add(q)
	}
	return b.Form()
}
