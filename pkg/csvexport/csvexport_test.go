package csvexport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"Doe, Jane", `"Doe, Jane"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{" leading space", " leading space"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeCell(tt.in), "input %q", tt.in)
	}
}

func TestTable_RoundTripsThroughCSVReader(t *testing.T) {
	table := Table{
		Header: []string{"Name", "Notes, misc"},
		Rows: [][]string{
			{"Jane \"JD\" Doe", "likes soccer, tennis"},
			{"Sam", "line one\nline two"},
			{"Alex", ""},
		},
	}

	out := table.String()
	assert.False(t, strings.HasSuffix(out, "\n"))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{table.Header}, table.Rows...), records)
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))

	assert.Equal(t, "rushees_export_2026-10-20.csv", Filename("rushees_export", now))
	assert.Equal(t, "Info_Night_rushee_submissions_2026-10-20.csv", Filename("Info/Night_rushee_submissions", now))
}

func TestRushees(t *testing.T) {
	table := Rushees([]model.Rushee{
		{Name: "Jane Doe", Email: "jane@school.edu"},
		{Name: "Doe, John", Email: "john@school.edu"},
	})

	assert.Equal(t, "Name,Email\nJane Doe,jane@school.edu\n\"Doe, John\",john@school.edu", table.String())
}

func TestBrotherAttendance(t *testing.T) {
	events := []model.Event{{ID: "e1", Name: "Info Night"}, {ID: "e2", Name: "BBQ"}}
	brothers := []model.Brother{
		{Name: "Alex", Email: "alex@school.edu", EventsAttended: []model.EventRef{{ID: "e2"}}},
		{Name: "Sam", Email: "sam@school.edu"},
	}

	table := BrotherAttendance(brothers, events)

	assert.Equal(t, []string{"Name", "Email", "Info Night", "BBQ"}, table.Header)
	assert.Equal(t, []string{"Alex", "alex@school.edu", NotAttended, Attended}, table.Rows[0])
	assert.Equal(t, []string{"Sam", "sam@school.edu", NotAttended, NotAttended}, table.Rows[1])
}

func TestSubmissions(t *testing.T) {
	questions := []model.Question{
		{ID: "q-name", QuestionType: model.QuestionText, Question: "Name"},
		{ID: "q-sports", QuestionType: model.QuestionCheckbox, Question: "Sports", Options: []string{"Soccer", "Tennis"}},
		{ID: "q-why", QuestionType: model.QuestionTextArea, Question: "Why?"},
	}
	subs := []model.Submission{
		{
			Rushee: &model.BrotherRef{Name: "Jane"},
			Responses: model.Responses{FormResponse: model.FormResponse{
				"q-name":   model.TextAnswer("Jane"),
				"q-sports": model.ListAnswer("Soccer", "Tennis"),
			}},
		},
		{
			// legacy submission keyed by position
			Rushee: &model.BrotherRef{Name: "Sam"},
			Responses: model.Responses{FormResponse: model.FormResponse{
				"0": model.TextAnswer("Sam"),
				"2": model.TextAnswer("Friends"),
			}},
		},
	}

	table := Submissions(questions, subs)
	assert.Equal(t, []string{"Name", "Sports", "Why?"}, table.Header)
	assert.Equal(t, []string{"Jane", "Soccer, Tennis", ""}, table.Rows[0])
	assert.Equal(t, []string{"Sam", "", "Friends"}, table.Rows[1])

	withAuthor := SubmissionsWithAuthor(questions, subs)
	assert.Equal(t, "Submitted By", withAuthor.Header[0])
	assert.Equal(t, []string{"Sam", "Sam", "", "Friends"}, withAuthor.Rows[1])
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := Write(dir, "template.csv", BrotherTemplate)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Position\n", string(data))
}

func TestParseBrothers(t *testing.T) {
	input := "\ufeffName,Email,Position,Notes\n" +
		"Alex Kim,alex@school.edu,President,\n" +
		"\n" +
		"\"Doe, Sam\",sam@school.edu,Rush Chair,likes csv\n" +
		"Jordan,,Brother\n"

	rows, err := ParseBrothers(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, BrotherRow{Line: 2, Name: "Alex Kim", Email: "alex@school.edu", Position: "President"}, rows[0])
	assert.Equal(t, "Doe, Sam", rows[1].Name)
	assert.Equal(t, "Rush Chair", rows[1].Position)
	assert.Equal(t, 4, rows[1].Line)
	assert.Empty(t, rows[2].Email)
}

func TestParseBrothers_ColumnOrderDoesNotMatter(t *testing.T) {
	rows, err := ParseBrothers(strings.NewReader("Position,Email,Name\nBrother,a@b.edu,Alex\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alex", rows[0].Name)
	assert.Equal(t, "Brother", rows[0].Position)
}

func TestParseBrothers_MissingColumns(t *testing.T) {
	_, err := ParseBrothers(strings.NewReader("Name,Email\nAlex,a@b.edu\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = ParseBrothers(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestParseBrothers_TemplateHasNoRows(t *testing.T) {
	rows, err := ParseBrothers(strings.NewReader(BrotherTemplate))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
