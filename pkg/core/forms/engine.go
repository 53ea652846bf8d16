package forms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// RequiredMessage is the per-field message for a missing required answer
const RequiredMessage = "This field is required"

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("option is not offered by this question")
	ErrWrongControl    = errors.New("action does not apply to this question type")
)

// ControlKind is the input control used for a question
type ControlKind string

const (
	KindTextInput     ControlKind = "text-input"
	KindTextArea      ControlKind = "text-area"
	KindRating        ControlKind = "rating"
	KindRadioGroup    ControlKind = "radio-group"
	KindCheckboxGroup ControlKind = "checkbox-group"
)

// Choice is one selectable entry of a rating, radio or checkbox control
type Choice struct {
	Label    string
	Value    string
	Selected bool
}

// Control describes how a question is presented and what it currently holds
type Control struct {
	QuestionID string
	Index      int
	Kind       ControlKind
	Label      string
	Required   bool
	Value      string
	Choices    []Choice
}

// Policy holds the product decisions that change validation outcomes
type Policy struct {
	// AllowEmptyRequiredCheckbox lets a required checkbox question pass with nothing ticked
	AllowEmptyRequiredCheckbox bool
}

// Render builds the control for question at index. Unknown question types fall back to an
// empty text input.
func Render(q model.Question, index int, current model.Answer) Control {
	c := Control{
		QuestionID: q.ID,
		Index:      index,
		Label:      q.Question,
		Required:   q.Required,
	}

	switch q.QuestionType {
	case model.QuestionText:
		c.Kind = KindTextInput
		c.Value = current.Text()
	case model.QuestionTextArea:
		c.Kind = KindTextArea
		c.Value = current.Text()
	case model.QuestionRating:
		c.Kind = KindRating
		c.Value = current.Text()
		for i := model.RatingMin; i <= model.RatingMax; i++ {
			v := strconv.Itoa(i)
			c.Choices = append(c.Choices, Choice{Label: v, Value: v, Selected: current.Text() == v})
		}
	case model.QuestionMultipleChoice:
		c.Kind = KindRadioGroup
		c.Value = current.Text()
		for _, opt := range q.Options {
			c.Choices = append(c.Choices, Choice{Label: opt, Value: opt, Selected: !current.IsList() && current.Text() == opt})
		}
	case model.QuestionCheckbox:
		c.Kind = KindCheckboxGroup
		c.Value = current.String()
		for _, opt := range q.Options {
			c.Choices = append(c.Choices, Choice{Label: opt, Value: opt, Selected: current.Contains(opt)})
		}
	default:
		c.Kind = KindTextInput
	}

	return c
}

// ValidationErrors maps a question ID to its message
type ValidationErrors map[string]string

// Valid reports whether there are no errors
func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}

func (v ValidationErrors) Error() string {
	ids := make([]string, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, v[id]))
	}
	return "form validation failed: " + strings.Join(parts, "; ")
}

// Validate flags every required question whose answer is missing or empty.
// Non-required questions never produce an error.
func Validate(questions []model.Question, responses model.FormResponse, policy Policy) ValidationErrors {
	errs := ValidationErrors{}
	for i, q := range questions {
		if !q.Required {
			continue
		}
		answer, ok := responses.AnswerFor(questions, i)
		if ok && answer.IsList() && policy.AllowEmptyRequiredCheckbox {
			continue
		}
		if !ok || answer.IsEmpty() {
			errs[questionKey(q, i)] = RequiredMessage
		}
	}
	return errs
}

// Encode produces the submission payload. Answers are passed through unchanged.
func Encode(responses model.FormResponse) model.FormResponse {
	return responses.Clone()
}

func questionKey(q model.Question, index int) string {
	if q.ID != "" {
		return q.ID
	}
	return model.LegacyQuestionID(index)
}

// Filler collects answers for one question list
type Filler struct {
	questions []model.Question
	byID      map[string]int
	responses model.FormResponse
}

// NewFiller prepares a question list for answering; questions without an ID get their
// positional fallback ID
func NewFiller(questions []model.Question) *Filler {
	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	model.EnsureIDs(qs)

	byID := make(map[string]int, len(qs))
	for i, q := range qs {
		byID[q.ID] = i
	}

	return &Filler{
		questions: qs,
		byID:      byID,
		responses: model.FormResponse{},
	}
}

// Questions returns the question list being answered
func (f *Filler) Questions() []model.Question {
	return f.questions
}

// Controls renders every question with its current answer
func (f *Filler) Controls() []Control {
	controls := make([]Control, len(f.questions))
	for i, q := range f.questions {
		controls[i] = Render(q, i, f.responses[q.ID])
	}
	return controls
}

// Answer returns the current answer for a question
func (f *Filler) Answer(id string) (model.Answer, bool) {
	a, ok := f.responses[id]
	return a, ok
}

// Set replaces the answer with text
func (f *Filler) Set(id, text string) error {
	if _, err := f.question(id); err != nil {
		return err
	}
	f.responses[id] = model.TextAnswer(text)
	return nil
}

// SelectRating stores the chosen point on the 1-10 scale
func (f *Filler) SelectRating(id string, n int) error {
	q, err := f.question(id)
	if err != nil {
		return err
	}
	if q.QuestionType != model.QuestionRating {
		return fmt.Errorf("%w: %s is %s", ErrWrongControl, id, q.QuestionType)
	}
	if n < model.RatingMin || n > model.RatingMax {
		return fmt.Errorf("rating must be between %d and %d, got %d", model.RatingMin, model.RatingMax, n)
	}
	f.responses[id] = model.TextAnswer(strconv.Itoa(n))
	return nil
}

// Choose selects the single option of a multiple choice question
func (f *Filler) Choose(id, option string) error {
	q, err := f.question(id)
	if err != nil {
		return err
	}
	if q.QuestionType != model.QuestionMultipleChoice {
		return fmt.Errorf("%w: %s is %s", ErrWrongControl, id, q.QuestionType)
	}
	if !offers(q, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	f.responses[id] = model.TextAnswer(option)
	return nil
}

// Toggle checks or unchecks a checkbox option. Checked options are kept in the order they
// were checked. Unchecking the last option leaves an empty list, so a touched checkbox
// stays answered.
func (f *Filler) Toggle(id, option string, checked bool) error {
	q, err := f.question(id)
	if err != nil {
		return err
	}
	if q.QuestionType != model.QuestionCheckbox {
		return fmt.Errorf("%w: %s is %s", ErrWrongControl, id, q.QuestionType)
	}
	if !offers(q, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	current := f.responses[id].Values()
	var next []string
	if checked {
		if containsOption(current, option) {
			return nil
		}
		next = append(current, option)
	} else {
		for _, v := range current {
			if v != option {
				next = append(next, v)
			}
		}
	}

	f.responses[id] = model.ListAnswer(next...)
	return nil
}

// Validate checks required answers
func (f *Filler) Validate(policy Policy) ValidationErrors {
	return Validate(f.questions, f.responses, policy)
}

// Encode returns the payload for submission
func (f *Filler) Encode() model.FormResponse {
	return Encode(f.responses)
}

// Reset clears all answers, used after a successful submission
func (f *Filler) Reset() {
	f.responses = model.FormResponse{}
}

func (f *Filler) question(id string) (model.Question, error) {
	i, ok := f.byID[id]
	if !ok {
		return model.Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	return f.questions[i], nil
}

func offers(q model.Question, option string) bool {
	return containsOption(q.Options, option)
}

func containsOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
