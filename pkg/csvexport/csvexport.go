package csvexport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// BrotherTemplate is the header-only file offered for brother imports
const BrotherTemplate = "Name,Email,Position\n"

// Cell values for the attendance export
const (
	Attended    = "Attended"
	NotAttended = "Not Attended"
)

// Table is a header row plus data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// EscapeCell doubles embedded quotes and wraps the cell in quotes when it contains a comma,
// a quote or a newline
func EscapeCell(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

func renderRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = EscapeCell(c)
	}
	return strings.Join(escaped, ",")
}

// String renders the table with rows joined by "\n" and no trailing newline
func (t Table) String() string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, renderRow(t.Header))
	for _, row := range t.Rows {
		lines = append(lines, renderRow(row))
	}
	return strings.Join(lines, "\n")
}

// Filename builds "<prefix>_<YYYY-MM-DD>.csv" using the UTC date
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", sanitize(prefix), now.UTC().Format("2006-01-02"))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// Rushees exports name and email for each rushee
func Rushees(rushees []model.Rushee) Table {
	t := Table{Header: []string{"Name", "Email"}}
	for _, r := range rushees {
		t.Rows = append(t.Rows, []string{r.Name, r.Email})
	}
	return t
}

// BrotherAttendance has one column per event marking whether each brother attended it
func BrotherAttendance(brothers []model.Brother, events []model.Event) Table {
	header := []string{"Name", "Email"}
	for _, e := range events {
		header = append(header, e.Name)
	}

	t := Table{Header: header}
	for _, b := range brothers {
		row := []string{b.Name, b.Email}
		for _, e := range events {
			if b.AttendedEvent(e.ID) {
				row = append(row, Attended)
			} else {
				row = append(row, NotAttended)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Submissions has one column per question. Checkbox answers are joined with ", " and
// answers stored under positional keys are still found.
func Submissions(questions []model.Question, subs []model.Submission) Table {
	header := make([]string, len(questions))
	for i, q := range questions {
		header[i] = q.Question
	}

	t := Table{Header: header}
	for _, s := range subs {
		row := make([]string, len(questions))
		for i := range questions {
			if a, ok := s.Responses.FormResponse.AnswerFor(questions, i); ok {
				row[i] = a.String()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// SubmissionsWithAuthor prefixes each submission row with who submitted it
func SubmissionsWithAuthor(questions []model.Question, subs []model.Submission) Table {
	inner := Submissions(questions, subs)
	t := Table{Header: append([]string{"Submitted By"}, inner.Header...)}
	for i, s := range subs {
		author := ""
		switch {
		case s.Rushee != nil:
			author = s.Rushee.Name
		case s.Brother != nil:
			author = s.Brother.Name
		}
		t.Rows = append(t.Rows, append([]string{author}, inner.Rows[i]...))
	}
	return t
}

// Write saves content under dir and returns the full path
func Write(dir, filename, content string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// BrotherRow is one data row of a brother import file
type BrotherRow struct {
	Line     int
	Name     string
	Email    string
	Position string
}

// ErrMissingColumns is returned when the header lacks Name, Email or Position
var ErrMissingColumns = errors.New("import file must have Name, Email and Position columns")

// ParseBrothers reads an import file with a header row. Columns are matched by name, empty
// lines are skipped and extra columns are ignored.
func ParseBrothers(r io.Reader) ([]BrotherRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{"Name", "Email", "Position"} {
		if _, ok := cols[required]; !ok {
			return nil, ErrMissingColumns
		}
	}

	get := func(record []string, col string) string {
		i := cols[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []BrotherRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, BrotherRow{
			Line:     line,
			Name:     get(record, "Name"),
			Email:    get(record, "Email"),
			Position: get(record, "Position"),
		})
	}
	return rows, nil
}
