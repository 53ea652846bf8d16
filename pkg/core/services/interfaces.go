package services

import (
	"context"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// RusheeStore defines the rushee operations needed by the rushee services
type RusheeStore interface {
	ListRushees(ctx context.Context) ([]model.Rushee, error)
	GetRushee(ctx context.Context, id string) (*model.Rushee, error)
	FindRusheeByEmail(ctx context.Context, fratID, email string) (*model.Rushee, error)
	CreateRushee(ctx context.Context, r apiclient.NewRushee) (*model.Rushee, error)
	UpdateRushee(ctx context.Context, fratID, id string, u apiclient.RusheeUpdate) error
	UpdateRusheeStatus(ctx context.Context, id string, status model.Status) error
	DeleteRushee(ctx context.Context, id string) error
	AddNote(ctx context.Context, rusheeID, content string, anonymous bool) error
	AddRusheeTag(ctx context.Context, rusheeID, tag string) error
	RemoveRusheeTag(ctx context.Context, rusheeID, tag string) error
}

// NoteStore defines the note operations needed for voting and moderation
type NoteStore interface {
	GetRushee(ctx context.Context, id string) (*model.Rushee, error)
	DeleteNote(ctx context.Context, rusheeID, noteID string) error
	VoteNote(ctx context.Context, rusheeID, noteID string, action model.VoteAction) error
}

// FratStore defines the fraternity tag vocabulary operations
type FratStore interface {
	GetFraternity(ctx context.Context, fratID string) (*model.Fraternity, error)
	AddFraternityTag(ctx context.Context, fratID, tag string) error
	RemoveFraternityTag(ctx context.Context, fratID, tag string) error
}

// EventStore defines the event operations
type EventStore interface {
	ListEvents(ctx context.Context, filter apiclient.EventFilter) ([]model.Event, error)
	GetEvent(ctx context.Context, fratID, eventID string) (*model.Event, error)
	CreateEvent(ctx context.Context, e model.Event) (*model.Event, error)
	SubmitBrotherForm(ctx context.Context, eventID string, responses model.FormResponse) error
	SubmitRusheeForm(ctx context.Context, fratID, eventID, rusheeID string, responses model.FormResponse) error
	ListSubmissions(ctx context.Context, eventID string, kind model.SubmissionType) ([]model.Submission, error)
}

// PublicRusheeStore is what the public event form needs to resolve the submitting rushee
type PublicRusheeStore interface {
	FindRusheeByEmail(ctx context.Context, fratID, email string) (*model.Rushee, error)
	CreateRushee(ctx context.Context, r apiclient.NewRushee) (*model.Rushee, error)
	SubmitRusheeForm(ctx context.Context, fratID, eventID, rusheeID string, responses model.FormResponse) error
}

// BrotherStore defines the brotherhood administration operations
type BrotherStore interface {
	ListBrothers(ctx context.Context) ([]model.Brother, error)
	CreateBrother(ctx context.Context, b apiclient.NewBrother) (*model.Brother, error)
	UpdatePosition(ctx context.Context, brotherID string, position model.Position) error
	ToggleActive(ctx context.Context, brotherID string) error
	UpdateProfile(ctx context.Context, p apiclient.ProfileUpdate) (*model.Brother, error)
	ResetPassword(ctx context.Context, currentPassword, newPassword string) error
}

// Compile-time check that the API client satisfies every store
var (
	_ RusheeStore       = (*apiclient.Client)(nil)
	_ NoteStore         = (*apiclient.Client)(nil)
	_ FratStore         = (*apiclient.Client)(nil)
	_ EventStore        = (*apiclient.Client)(nil)
	_ PublicRusheeStore = (*apiclient.Client)(nil)
	_ BrotherStore      = (*apiclient.Client)(nil)
)
