package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType selects the control used to answer a question
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionTextArea       QuestionType = "textarea"
	QuestionRating         QuestionType = "rating"
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionCheckbox       QuestionType = "checkbox"
)

// QuestionTypes lists the question types in the order the builder offers them
var QuestionTypes = []QuestionType{
	QuestionText,
	QuestionRating,
	QuestionMultipleChoice,
	QuestionCheckbox,
	QuestionTextArea,
}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether answers are drawn from the question's option list
func (t QuestionType) HasOptions() bool {
	return t == QuestionMultipleChoice || t == QuestionCheckbox
}

// RatingMin and RatingMax bound the fixed rating scale
const (
	RatingMin = 1
	RatingMax = 10
)

// Question is one schema-driven form field
type Question struct {
	ID           string       `json:"id,omitempty" yaml:"id,omitempty"`
	QuestionType QuestionType `json:"questionType" yaml:"questionType" validate:"required"`
	Question     string       `json:"question" yaml:"question" validate:"required"`
	Required     bool         `json:"required" yaml:"required"`
	Options      []string     `json:"options,omitempty" yaml:"options,omitempty"`
}

// LegacyQuestionID is the fallback ID for questions authored before stable IDs existed
func LegacyQuestionID(index int) string {
	return "q" + strconv.Itoa(index)
}

// EnsureIDs gives every question without an ID its positional fallback ID
func EnsureIDs(questions []Question) {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = LegacyQuestionID(i)
		}
	}
}

// Answer is a single response value: a string for text, textarea, rating and
// multipleChoice questions, or an ordered list for checkbox questions
type Answer struct {
	text    string
	choices []string
	list    bool
}

// TextAnswer builds a single-value answer
func TextAnswer(s string) Answer {
	return Answer{text: s}
}

// ListAnswer builds a checkbox answer; the order of values is preserved
func ListAnswer(values ...string) Answer {
	choices := make([]string, len(values))
	copy(choices, values)
	return Answer{choices: choices, list: true}
}

// IsList reports whether the answer is a checkbox list
func (a Answer) IsList() bool {
	return a.list
}

// Text returns the single value (empty for lists)
func (a Answer) Text() string {
	return a.text
}

// Values returns a copy of the list values (nil for single values)
func (a Answer) Values() []string {
	if !a.list {
		return nil
	}
	out := make([]string, len(a.choices))
	copy(out, a.choices)
	return out
}

// Contains reports whether a list answer includes option
func (a Answer) Contains(option string) bool {
	return a.list && containsString(a.choices, option)
}

// IsEmpty reports whether the answer carries nothing: an empty string or an empty list
func (a Answer) IsEmpty() bool {
	if a.list {
		return len(a.choices) == 0
	}
	return a.text == ""
}

// String renders the answer for display and CSV cells; lists are joined with ", "
func (a Answer) String() string {
	if a.list {
		return strings.Join(a.choices, ", ")
	}
	return a.text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.list {
		if a.choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.choices)
	}
	return json.Marshal(a.text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*a = Answer{}
	case strings.HasPrefix(raw, "["):
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("failed to decode list answer: %w", err)
		}
		*a = ListAnswer(values...)
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	default:
		// numbers and booleans from older clients are kept as their literal text
		*a = TextAnswer(raw)
	}
	return nil
}

// FormResponse maps a question ID to its answer
type FormResponse map[string]Answer

// Clone returns an independent copy
func (r FormResponse) Clone() FormResponse {
	out := make(FormResponse, len(r))
	for k, v := range r {
		if v.list {
			v = ListAnswer(v.choices...)
		}
		out[k] = v
	}
	return out
}

// AnswerFor resolves the answer to questions[index]. Answers are keyed by question ID; older
// submissions keyed by position are still honoured when no ID key is present.
func (r FormResponse) AnswerFor(questions []Question, index int) (Answer, bool) {
	if index < 0 || index >= len(questions) {
		return Answer{}, false
	}
	keys := []string{questions[index].ID, LegacyQuestionID(index), strconv.Itoa(index)}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if a, ok := r[key]; ok {
			return a, true
		}
	}
	return Answer{}, false
}
