package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/forms"
	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/csvexport"
)

// MaxOccurrences caps how many events a single repeat rule may create
const MaxOccurrences = 52

// CreateEventsResult lists the events created from one definition
type CreateEventsResult struct {
	Events []model.Event
}

// Occurrences returns the start times of every event a definition describes. Without a
// repeat rule that is just the definition's start.
func Occurrences(def *forms.EventDefinition) ([]time.Time, error) {
	if def.Repeat == "" {
		return []time.Time{def.Start}, nil
	}

	rule, err := rrule.StrToRRule(def.Repeat)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repeat rule: %w", err)
	}
	if rule.OrigOptions.Count == 0 && rule.OrigOptions.Until.IsZero() {
		return nil, fmt.Errorf("repeat rule must set COUNT or UNTIL")
	}
	rule.DTStart(def.Start)

	starts := rule.All()
	if len(starts) == 0 {
		return nil, fmt.Errorf("repeat rule produces no occurrences")
	}
	if len(starts) > MaxOccurrences {
		return nil, fmt.Errorf("repeat rule produces %d occurrences (max %d)", len(starts), MaxOccurrences)
	}
	return starts, nil
}

// CreateEvents creates one event per occurrence of the definition, each keeping the
// definition's duration. Creation stops at the first failure; events already created are
// returned alongside the error.
func CreateEvents(ctx context.Context, store EventStore, logger *zap.Logger, def *forms.EventDefinition, fratID string) (*CreateEventsResult, error) {
	base, err := def.Event(fratID)
	if err != nil {
		return nil, err
	}

	starts, err := Occurrences(def)
	if err != nil {
		return nil, err
	}
	duration := def.End.Sub(def.Start)

	logger.Debug("Creating events",
		zap.String("name", base.Name),
		zap.Int("occurrences", len(starts)),
		zap.Duration("duration", duration))

	result := &CreateEventsResult{}
	for _, start := range starts {
		event := base
		event.Start = start
		event.End = start.Add(duration)

		created, err := store.CreateEvent(ctx, event)
		if err != nil {
			return result, fmt.Errorf("failed to create event on %s: %w", start.Format("2006-01-02"), err)
		}
		result.Events = append(result.Events, *created)
	}

	logger.Info("Created events", zap.String("name", base.Name), zap.Int("count", len(result.Events)))
	return result, nil
}

// ListEvents returns events sorted by start time
func ListEvents(ctx context.Context, store EventStore, logger *zap.Logger, filter apiclient.EventFilter) ([]model.Event, error) {
	events, err := store.ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	logger.Debug("Fetched events", zap.Int("count", len(events)))
	return events, nil
}

// SubmitBrotherEventForm validates and submits the caller's brother form for an event
func SubmitBrotherEventForm(ctx context.Context, store EventStore, logger *zap.Logger, event model.Event, responses model.FormResponse, policy forms.Policy) error {
	if errs := forms.Validate(event.BrotherForm.Questions, responses, policy); !errs.Valid() {
		return errs
	}
	if err := store.SubmitBrotherForm(ctx, event.ID, forms.Encode(responses)); err != nil {
		return fmt.Errorf("failed to submit form: %w", err)
	}
	logger.Info("Submitted brother form", zap.String("event_id", event.ID))
	return nil
}

// ErrNoEmailQuestion is returned when a public event form has no email question to identify
// the rushee by
var ErrNoEmailQuestion = errors.New("event form has no email question")

// PublicSubmissionResult reports which rushee a public submission was recorded against
type PublicSubmissionResult struct {
	RusheeID string
	Created  bool
}

// SubmitPublicRusheeForm records a rushee's event form without a session. The rushee is found
// by the answer to the question whose label mentions "email"; a new rushee is created from
// the "name" answer with this event already attended.
func SubmitPublicRusheeForm(ctx context.Context, store PublicRusheeStore, logger *zap.Logger, fratID string, event model.Event, responses model.FormResponse, policy forms.Policy) (*PublicSubmissionResult, error) {
	questions := event.RusheeForm.Questions
	if errs := forms.Validate(questions, responses, policy); !errs.Valid() {
		return nil, errs
	}

	email := answerByLabel(questions, responses, "email")
	if email == "" {
		if !hasLabel(questions, "email") {
			return nil, ErrNoEmailQuestion
		}
		return nil, forms.ValidationErrors{"email": forms.RequiredMessage}
	}

	result := &PublicSubmissionResult{}
	rushee, err := store.FindRusheeByEmail(ctx, fratID, email)
	switch {
	case err == nil:
		result.RusheeID = rushee.ID
	case errors.Is(err, apiclient.ErrNotFound):
		created, err := store.CreateRushee(ctx, apiclient.NewRushee{
			Name:           answerByLabel(questions, responses, "name"),
			Email:          email,
			Status:         model.StatusPotential,
			Fraternity:     fratID,
			EventsAttended: []string{event.ID},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rushee: %w", err)
		}
		result.RusheeID = created.ID
		result.Created = true
	default:
		return nil, fmt.Errorf("failed to look up rushee: %w", err)
	}

	if err := store.SubmitRusheeForm(ctx, fratID, event.ID, result.RusheeID, forms.Encode(responses)); err != nil {
		return nil, fmt.Errorf("failed to submit form: %w", err)
	}

	logger.Info("Submitted rushee form",
		zap.String("event_id", event.ID),
		zap.String("rushee_id", result.RusheeID),
		zap.Bool("created", result.Created))
	return result, nil
}

func hasLabel(questions []model.Question, word string) bool {
	for _, q := range questions {
		if strings.Contains(strings.ToLower(q.Question), word) {
			return true
		}
	}
	return false
}

func answerByLabel(questions []model.Question, responses model.FormResponse, word string) string {
	for i, q := range questions {
		if !strings.Contains(strings.ToLower(q.Question), word) {
			continue
		}
		if a, ok := responses.AnswerFor(questions, i); ok {
			return strings.TrimSpace(a.String())
		}
		return ""
	}
	return ""
}

// FormFor returns the event form answered by the given submission kind
func FormFor(event model.Event, kind model.SubmissionType) model.Form {
	if kind == model.SubmissionBrother {
		return event.BrotherForm
	}
	return event.RusheeForm
}

// ExportSubmissions writes an event's submissions of one kind to
// <dir>/<event>_<kind>_submissions_<date>.csv and returns the path
func ExportSubmissions(ctx context.Context, store EventStore, logger *zap.Logger, event model.Event, kind model.SubmissionType, dir string, now time.Time) (string, error) {
	subs, err := store.ListSubmissions(ctx, event.ID, kind)
	if err != nil {
		return "", fmt.Errorf("failed to fetch submissions: %w", err)
	}

	table := csvexport.SubmissionsWithAuthor(FormFor(event, kind).Questions, subs)
	name := csvexport.Filename(fmt.Sprintf("%s_%s_submissions", event.Name, kind), now)

	path, err := csvexport.Write(dir, name, table.String())
	if err != nil {
		return "", err
	}
	logger.Info("Exported submissions", zap.String("path", path), zap.Int("rows", len(subs)))
	return path, nil
}
