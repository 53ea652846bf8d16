package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/forms"
	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// State is a step of the rushee-facing flow
type State int

const (
	EmailEntry State = iota
	ProfileCompletion
	EventQuestions
	Submitted
)

func (s State) String() string {
	switch s {
	case EmailEntry:
		return "email"
	case ProfileCompletion:
		return "profile"
	case EventQuestions:
		return "questions"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// ErrWrongState is returned when an action is not valid in the current step
var ErrWrongState = errors.New("action not available at this step")

// RusheeAPI is the subset of the API client the flow needs
type RusheeAPI interface {
	FindRusheeByEmail(ctx context.Context, fratID, email string) (*model.Rushee, error)
	CreateRushee(ctx context.Context, r apiclient.NewRushee) (*model.Rushee, error)
	UpdateRushee(ctx context.Context, fratID, id string, u apiclient.RusheeUpdate) error
	SubmitRusheeForm(ctx context.Context, fratID, eventID, rusheeID string, responses model.FormResponse) error
}

// Profile is the information every rushee must provide before answering event questions
type Profile struct {
	Name    string `validate:"required"`
	Phone   string `validate:"required"`
	Major   string `validate:"required"`
	Year    string `validate:"required,oneof=1 2 3 4"`
	GPA     string `validate:"omitempty,gpa"`
	Picture string `validate:"required"`
	Resume  string
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("gpa", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && f >= 0 && f <= 4
	})
}

// Validate checks the required profile fields and the GPA range
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}
	return nil
}

func profileFromRushee(r *model.Rushee) Profile {
	return Profile{
		Name:    r.Name,
		Phone:   r.Phone,
		Major:   r.Major,
		Year:    r.Year.String(),
		GPA:     r.GPA.String(),
		Picture: r.Picture,
		Resume:  r.Resume,
	}
}

// Flow walks a rushee through EmailEntry, ProfileCompletion and EventQuestions for one event
type Flow struct {
	api    RusheeAPI
	logger *zap.Logger
	fratID string
	event  model.Event
	policy forms.Policy

	state    State
	email    string
	rusheeID string
	profile  Profile
	filler   *forms.Filler
}

// NewFlow starts at EmailEntry
func NewFlow(api RusheeAPI, logger *zap.Logger, fratID string, event model.Event, policy forms.Policy) *Flow {
	return &Flow{
		api:    api,
		logger: logger,
		fratID: fratID,
		event:  event,
		policy: policy,
		state:  EmailEntry,
		filler: forms.NewFiller(event.RusheeForm.Questions),
	}
}

func (f *Flow) State() State       { return f.state }
func (f *Flow) Email() string      { return f.email }
func (f *Flow) RusheeID() string   { return f.rusheeID }
func (f *Flow) Profile() Profile   { return f.profile }
func (f *Flow) Event() model.Event { return f.event }

// Filler collects the event answers
func (f *Flow) Filler() *forms.Filler { return f.filler }

// SubmitEmail looks the rushee up. A match prefills the profile, a miss leaves it blank, and
// both move on to ProfileCompletion. Any other failure keeps the flow at EmailEntry.
func (f *Flow) SubmitEmail(ctx context.Context, email string) error {
	if f.state != EmailEntry {
		return fmt.Errorf("%w: submit email during %s", ErrWrongState, f.state)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return forms.ValidationErrors{"email": forms.RequiredMessage}
	}

	f.logger.Info("Looking up rushee", zap.String("email", email), zap.String("fraternity", f.fratID))

	// resubmitting the same email after Back keeps what was already typed
	changed := email != f.email

	existing, err := f.api.FindRusheeByEmail(ctx, f.fratID, email)
	switch {
	case err == nil:
		f.logger.Debug("Existing rushee found", zap.String("rushee_id", existing.ID))
		f.rusheeID = existing.ID
		if changed {
			f.profile = profileFromRushee(existing)
		}
	case errors.Is(err, apiclient.ErrNotFound):
		f.logger.Debug("No rushee with that email, a new one will be created")
		if changed {
			f.rusheeID = ""
			f.profile = Profile{}
		}
	default:
		return fmt.Errorf("failed to look up rushee: %w", err)
	}

	f.email = email
	f.state = ProfileCompletion
	return nil
}

// SubmitProfile creates the rushee, or updates an existing one, and moves to EventQuestions
func (f *Flow) SubmitProfile(ctx context.Context, p Profile) error {
	if f.state != ProfileCompletion {
		return fmt.Errorf("%w: submit profile during %s", ErrWrongState, f.state)
	}
	f.profile = p
	if err := p.Validate(); err != nil {
		return err
	}

	if f.rusheeID == "" {
		created, err := f.api.CreateRushee(ctx, apiclient.NewRushee{
			Name:       p.Name,
			Email:      f.email,
			Phone:      p.Phone,
			Major:      p.Major,
			Year:       p.Year,
			GPA:        p.GPA,
			Picture:    p.Picture,
			Resume:     p.Resume,
			Status:     model.StatusPotential,
			Fraternity: f.fratID,
		})
		if err != nil {
			return fmt.Errorf("failed to create rushee: %w", err)
		}
		f.rusheeID = created.ID
		f.logger.Info("Rushee created", zap.String("rushee_id", created.ID))
	} else {
		err := f.api.UpdateRushee(ctx, f.fratID, f.rusheeID, apiclient.RusheeUpdate{
			Phone:   p.Phone,
			Major:   p.Major,
			Year:    p.Year,
			GPA:     p.GPA,
			Picture: p.Picture,
			Resume:  p.Resume,
		})
		if err != nil {
			return fmt.Errorf("failed to update rushee: %w", err)
		}
		f.logger.Info("Rushee updated", zap.String("rushee_id", f.rusheeID))
	}

	f.state = EventQuestions
	return nil
}

// SubmitAnswers validates and posts the event answers. On failure the state and the answers
// are kept so the rushee can resubmit.
func (f *Flow) SubmitAnswers(ctx context.Context, responses model.FormResponse) error {
	if f.state != EventQuestions {
		return fmt.Errorf("%w: submit answers during %s", ErrWrongState, f.state)
	}
	if errs := forms.Validate(f.filler.Questions(), responses, f.policy); !errs.Valid() {
		return errs
	}

	if err := f.api.SubmitRusheeForm(ctx, f.fratID, f.event.ID, f.rusheeID, forms.Encode(responses)); err != nil {
		return fmt.Errorf("failed to submit answers: %w", err)
	}

	f.logger.Info("Event form submitted",
		zap.String("rushee_id", f.rusheeID),
		zap.String("event_id", f.event.ID))
	f.state = Submitted
	return nil
}

// Back returns to the previous step without clearing anything entered
func (f *Flow) Back() error {
	switch f.state {
	case EventQuestions:
		f.state = ProfileCompletion
	case ProfileCompletion:
		f.state = EmailEntry
	default:
		return fmt.Errorf("%w: cannot go back from %s", ErrWrongState, f.state)
	}
	return nil
}
