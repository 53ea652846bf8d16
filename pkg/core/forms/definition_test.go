package forms

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

const infoNightYAML = `
name: Info Night
location: Chapter House
start: 2026-09-01T18:00:00Z
end: 2026-09-01T20:00:00Z
repeat: FREQ=WEEKLY;COUNT=3
brotherQuestions:
  - questionType: rating
    question: How engaged was the rushee?
rusheeQuestions:
  - questionType: text
    question: School Email
    required: true
  - questionType: checkbox
    question: Interests
    options: [Sports, Music]
`

func TestParseEventDefinition(t *testing.T) {
	def, err := ParseEventDefinition(strings.NewReader(infoNightYAML))
	require.NoError(t, err)

	assert.Equal(t, "Info Night", def.Name)
	assert.Equal(t, time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC), def.Start.UTC())
	assert.Equal(t, "FREQ=WEEKLY;COUNT=3", def.Repeat)

	event, err := def.Event("frat-1")
	require.NoError(t, err)

	assert.Equal(t, "frat-1", event.Fraternity)
	require.Len(t, event.BrotherForm.Questions, 2)
	assert.Equal(t, AttendanceQuestion, event.BrotherForm.Questions[0].Question)
	assert.Equal(t, model.QuestionRating, event.BrotherForm.Questions[1].QuestionType)

	require.Len(t, event.RusheeForm.Questions, 3, "default questions must not be duplicated")
	assert.Equal(t, FullNameQuestion, event.RusheeForm.Questions[0].Question)
	assert.Equal(t, SchoolEmailQuestion, event.RusheeForm.Questions[1].Question)
	assert.Equal(t, "Interests", event.RusheeForm.Questions[2].Question)
	for _, q := range event.RusheeForm.Questions {
		assert.NotEmpty(t, q.ID)
	}
}

func TestParseEventDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown key",
			yaml: "name: X\nstart: 2026-09-01T18:00:00Z\nend: 2026-09-01T20:00:00Z\ncolour: red\n",
		},
		{
			name: "missing name",
			yaml: "start: 2026-09-01T18:00:00Z\nend: 2026-09-01T20:00:00Z\n",
		},
		{
			name: "end before start",
			yaml: "name: X\nstart: 2026-09-01T18:00:00Z\nend: 2026-09-01T17:00:00Z\n",
		},
		{
			name: "missing times",
			yaml: "name: X\n",
		},
		{
			name: "bad rrule",
			yaml: "name: X\nstart: 2026-09-01T18:00:00Z\nend: 2026-09-01T20:00:00Z\nrepeat: FREQ=SOMETIMES\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEventDefinition(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestEventDefinition_InvalidQuestion(t *testing.T) {
	def, err := ParseEventDefinition(strings.NewReader(`
name: X
start: 2026-09-01T18:00:00Z
end: 2026-09-01T20:00:00Z
brotherQuestions:
  - questionType: multipleChoice
    question: Pick one
`))
	require.NoError(t, err)

	_, err = def.Event("frat-1")
	assert.ErrorContains(t, err, "invalid brother form")
}
