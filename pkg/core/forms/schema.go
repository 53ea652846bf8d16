package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(questionStructLevel, model.Question{})
}

// questionStructLevel enforces the rules that depend on the question type
func questionStructLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(model.Question)

	if q.QuestionType != "" && !q.QuestionType.IsValid() {
		sl.ReportError(q.QuestionType, "QuestionType", "questionType", "questiontype", string(q.QuestionType))
	}

	if strings.TrimSpace(q.Question) == "" && q.Question != "" {
		sl.ReportError(q.Question, "Question", "question", "required", "")
	}

	if q.QuestionType.HasOptions() {
		nonBlank := 0
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) != "" {
				nonBlank++
			}
		}
		if nonBlank == 0 {
			sl.ReportError(q.Options, "Options", "options", "options_required", "")
		}
	}
}

// ValidateSchema checks an authored question list: every question needs a label and a known
// type, choice questions need at least one option, and IDs must be unique
func ValidateSchema(questions []model.Question) error {
	if err := validate.Struct(model.Form{Questions: questions}); err != nil {
		return fmt.Errorf("form validation failed: %w", err)
	}

	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			continue
		}
		if prev, dup := seen[q.ID]; dup {
			return fmt.Errorf("form validation failed: questions %d and %d share id %q", prev, i, q.ID)
		}
		seen[q.ID] = i
	}

	return nil
}
