package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

var ErrLockedQuestion = errors.New("default questions cannot be removed or relabelled")

// Default questions every event form starts with
const (
	AttendanceQuestion  = "Did you attend this event?"
	FullNameQuestion    = "Full Name (Proper Capitalization)"
	SchoolEmailQuestion = "School Email"
)

// Builder authors a question list. The first `locked` questions are defaults that stay in
// place.
type Builder struct {
	questions []model.Question
	locked    int
}

// NewBrotherForm starts a brother form with the attendance question
func NewBrotherForm() *Builder {
	b := &Builder{locked: 1}
	b.Add(model.Question{
		QuestionType: model.QuestionMultipleChoice,
		Question:     AttendanceQuestion,
		Options:      []string{"Yes", "No"},
		Required:     true,
	})
	return b
}

// NewRusheeForm starts a rushee form with the name and email questions
func NewRusheeForm() *Builder {
	b := &Builder{locked: 2}
	b.Add(model.Question{
		QuestionType: model.QuestionText,
		Question:     FullNameQuestion,
		Required:     true,
	})
	b.Add(model.Question{
		QuestionType: model.QuestionText,
		Question:     SchoolEmailQuestion,
		Required:     true,
	})
	return b
}

// Add appends a question, assigning a new ID when it has none, and returns the ID
func (b *Builder) Add(q model.Question) string {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	b.questions = append(b.questions, q)
	return q.ID
}

// AddBlank appends an empty optional text question
func (b *Builder) AddBlank() string {
	return b.Add(model.Question{
		QuestionType: model.QuestionText,
		Options:      []string{},
	})
}

// Remove deletes the question at index
func (b *Builder) Remove(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if index < b.locked {
		return ErrLockedQuestion
	}
	b.questions = append(b.questions[:index], b.questions[index+1:]...)
	return nil
}

// SetLabel changes the question text
func (b *Builder) SetLabel(index int, label string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if index < b.locked {
		return ErrLockedQuestion
	}
	b.questions[index].Question = label
	return nil
}

// Update replaces the question at index, keeping its ID. Locked questions keep their label.
func (b *Builder) Update(index int, q model.Question) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if !q.QuestionType.IsValid() {
		return fmt.Errorf("unknown question type %q", q.QuestionType)
	}
	current := b.questions[index]
	if index < b.locked && q.Question != current.Question {
		return ErrLockedQuestion
	}
	q.ID = current.ID
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	b.questions[index] = q
	return nil
}

// IsLocked reports whether the question at index is a default question
func (b *Builder) IsLocked(index int) bool {
	return index >= 0 && index < b.locked
}

// SetType changes the question type
func (b *Builder) SetType(index int, t model.QuestionType) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if !t.IsValid() {
		return fmt.Errorf("unknown question type %q", t)
	}
	b.questions[index].QuestionType = t
	return nil
}

// SetRequired toggles whether an answer is mandatory
func (b *Builder) SetRequired(index int, required bool) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.questions[index].Required = required
	return nil
}

// SetOptionsFromCSV replaces the options with a comma separated list, trimming each entry
func (b *Builder) SetOptionsFromCSV(index int, list string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.questions[index].Options = ParseOptions(list)
	return nil
}

// ParseOptions splits "a, b ,c" into trimmed options
func ParseOptions(list string) []string {
	parts := strings.Split(list, ",")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		options = append(options, strings.TrimSpace(p))
	}
	return options
}

// Questions returns a copy of the authored list
func (b *Builder) Questions() []model.Question {
	out := make([]model.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Len returns the number of questions
func (b *Builder) Len() int {
	return len(b.questions)
}

// Form validates and returns the finished form
func (b *Builder) Form() (model.Form, error) {
	questions := b.Questions()
	if err := ValidateSchema(questions); err != nil {
		return model.Form{}, err
	}
	return model.Form{Questions: questions}, nil
}

func (b *Builder) checkIndex(index int) error {
	if index < 0 || index >= len(b.questions) {
		return fmt.Errorf("question index %d out of range (form has %d questions)", index, len(b.questions))
	}
	return nil
}
