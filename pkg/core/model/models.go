package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is a rushee's position in the recruitment lifecycle
type Status string

const (
	StatusPotential Status = "Potential"
	StatusActive    Status = "Active"
	StatusDropped   Status = "Dropped"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every rushee status in display order
var Statuses = []Status{StatusPotential, StatusActive, StatusDropped, StatusRejected}

func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus matches a status name case-insensitively
func ParseStatus(s string) (Status, error) {
	for _, known := range Statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (must be one of Potential, Active, Dropped, Rejected)", s)
}

// Position is a brother's role within the fraternity
type Position string

const (
	PositionPresident Position = "President"
	PositionRushChair Position = "Rush Chair"
	PositionBrother   Position = "Brother"
)

// Positions lists every brother position
var Positions = []Position{PositionPresident, PositionRushChair, PositionBrother}

func (p Position) IsValid() bool {
	return p == PositionPresident || p == PositionRushChair || p == PositionBrother
}

// ParsePosition matches a position name case-insensitively
func ParsePosition(s string) (Position, error) {
	for _, known := range Positions {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("invalid position %q (must be one of President, Rush Chair, Brother)", s)
}

// FlexString holds a value the API sends either as a JSON string or as a number (year, gpa)
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*f = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", raw)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// BrotherRef references a brother; the API returns either a bare ID or a populated object
type BrotherRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *BrotherRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain BrotherRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = BrotherRef(p)
	return nil
}

// EventRef references an event; eventsAttended is returned either as IDs or populated events
type EventRef struct {
	ID    string    `json:"_id"`
	Name  string    `json:"name,omitempty"`
	Start time.Time `json:"start,omitempty"`
}

func (r *EventRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain EventRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = EventRef(p)
	return nil
}

// Note is a brother's comment on a rushee
type Note struct {
	ID          string      `json:"_id"`
	Content     string      `json:"content"`
	Author      *BrotherRef `json:"author,omitempty"`
	IsAnonymous bool        `json:"isAnonymous,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Upvotes     []string    `json:"upvotes"`
	Downvotes   []string    `json:"downvotes"`
}

// HasUpvoted reports whether brotherID is in the upvote set
func (n Note) HasUpvoted(brotherID string) bool {
	return containsString(n.Upvotes, brotherID)
}

// HasDownvoted reports whether brotherID is in the downvote set
func (n Note) HasDownvoted(brotherID string) bool {
	return containsString(n.Downvotes, brotherID)
}

// VoteAction is the verb sent when a brother votes on a note
type VoteAction string

const (
	VoteUp     VoteAction = "upvote"
	VoteDown   VoteAction = "downvote"
	VoteRemove VoteAction = "remove"
)

// Vouch is a brother's endorsement of a rushee
type Vouch struct {
	ID      string     `json:"_id,omitempty"`
	Comment string     `json:"comment"`
	Brother BrotherRef `json:"brother"`
}

// Rushee is a prospective member
type Rushee struct {
	ID             string     `json:"_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Major          string     `json:"major,omitempty"`
	Year           FlexString `json:"year,omitempty"`
	GPA            FlexString `json:"gpa,omitempty"`
	Picture        string     `json:"picture,omitempty"`
	Resume         string     `json:"resume,omitempty"`
	Status         Status     `json:"status"`
	Tags           []string   `json:"tags"`
	EventsAttended []EventRef `json:"eventsAttended"`
	Notes          []Note     `json:"notes"`
	Vouches        []Vouch    `json:"vouches"`
	Fraternity     string     `json:"fraternity,omitempty"`
}

// HasTag reports whether the rushee carries tag
func (r Rushee) HasTag(tag string) bool {
	return containsString(r.Tags, tag)
}

// AttendedEvent reports whether the rushee attended the event with the given ID
func (r Rushee) AttendedEvent(eventID string) bool {
	for _, e := range r.EventsAttended {
		if e.ID == eventID {
			return true
		}
	}
	return false
}

// FindNote returns the note with the given ID
func (r Rushee) FindNote(noteID string) (Note, bool) {
	for _, n := range r.Notes {
		if n.ID == noteID {
			return n, true
		}
	}
	return Note{}, false
}

// YearDisplay maps the numeric class year used by onboarding to its name
func YearDisplay(year string) string {
	switch strings.TrimSpace(year) {
	case "1":
		return "Freshman"
	case "2":
		return "Sophomore"
	case "3":
		return "Junior"
	case "4":
		return "Senior"
	case "":
		return "N/A"
	default:
		return year
	}
}

// Brother is a fraternity member with an account
type Brother struct {
	ID             string     `json:"_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Major          string     `json:"major,omitempty"`
	Year           FlexString `json:"year,omitempty"`
	Position       Position   `json:"position"`
	IsActive       bool       `json:"isActive"`
	Frat           string     `json:"frat"`
	EventsAttended []EventRef `json:"eventsAttended,omitempty"`
}

// AttendedEvent reports whether the brother attended the event with the given ID
func (b Brother) AttendedEvent(eventID string) bool {
	for _, e := range b.EventsAttended {
		if e.ID == eventID {
			return true
		}
	}
	return false
}

// Fraternity owns the tag vocabulary shared by its rushees
type Fraternity struct {
	ID   string   `json:"_id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Form is an ordered question list
type Form struct {
	Questions []Question `json:"questions" yaml:"questions" validate:"dive"`
}

// Event is a rush event with a form for brothers and a form for rushees
type Event struct {
	ID          string    `json:"_id,omitempty"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	BrotherForm Form      `json:"brotherForm"`
	RusheeForm  Form      `json:"rusheeForm"`
	Fraternity  string    `json:"fraternity,omitempty"`
}

// SubmissionType distinguishes rushee and brother submissions
type SubmissionType string

const (
	SubmissionRushee  SubmissionType = "rushee"
	SubmissionBrother SubmissionType = "brother"
)

// Submission is one filled-in event form
type Submission struct {
	ID        string      `json:"_id"`
	Rushee    *BrotherRef `json:"rushee,omitempty"`
	Brother   *BrotherRef `json:"brother,omitempty"`
	Responses Responses   `json:"responses"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}

// Responses is a stored FormResponse; the API persists it as a serialized JSON string
// but some endpoints return it already decoded
type Responses struct {
	FormResponse
}

func (r *Responses) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		r.FormResponse = FormResponse{}
		return nil
	}
	if raw[0] == '"' {
		var blob string
		if err := json.Unmarshal(data, &blob); err != nil {
			return err
		}
		data = []byte(blob)
	}
	resp := FormResponse{}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to decode responses: %w", err)
	}
	r.FormResponse = resp
	return nil
}

func (r Responses) MarshalJSON() ([]byte, error) {
	if r.FormResponse == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.FormResponse)
}

// Stats summarises the whole recruitment cycle
type Stats struct {
	TotalRushees  int
	TotalEvents   int
	TotalComments int
	TopCommenters []CommenterCount
	LongestNote   *NoteHighlight
	MostUpvoted   *NoteHighlight
	MostDownvoted *NoteHighlight
}

// CommenterCount is a brother's note count
type CommenterCount struct {
	Name  string
	Count int
}

// NoteHighlight is a single note called out in the stats
type NoteHighlight struct {
	Content string
	Author  string
	Rushee  string
	Count   int
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// FormatGPA renders a stored GPA with two decimals when it parses as a number
func FormatGPA(gpa FlexString) string {
	if gpa == "" {
		return "N/A"
	}
	f, err := strconv.ParseFloat(string(gpa), 64)
	if err != nil {
		return string(gpa)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
