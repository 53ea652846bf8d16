package services

import (
	"context"
	"fmt"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/model"
)

type voteCall struct {
	rusheeID, noteID string
	action           model.VoteAction
}

type rusheeSubmission struct {
	fratID, eventID, rusheeID string
	responses                 model.FormResponse
}

// mockStore implements every store interface against in-memory data
type mockStore struct {
	rushees  map[string]*model.Rushee
	frat     *model.Fraternity
	brothers []model.Brother
	events   []model.Event
	subs     []model.Submission

	failIDs   map[string]error
	findErr   error
	createErr error
	listErr   error

	getCalls         int
	createdRushees   []apiclient.NewRushee
	updatedRushees   []apiclient.RusheeUpdate
	statusUpdates    map[string]model.Status
	deleted          []string
	notesAdded       []string
	tagsAdded        map[string][]string
	tagsRemoved      map[string][]string
	votes            []voteCall
	deletedNotes     []string
	fratTagsAdded    []string
	fratTagsRemoved  []string
	createdEvents    []model.Event
	brotherSubmits   []model.FormResponse
	rusheeSubmits    []rusheeSubmission
	createdBrothers  []apiclient.NewBrother
	positions        map[string]model.Position
	toggled          []string
	profileUpdates   []apiclient.ProfileUpdate
	passwordRequests [][2]string
}

func newMockStore() *mockStore {
	return &mockStore{
		rushees:       map[string]*model.Rushee{},
		failIDs:       map[string]error{},
		statusUpdates: map[string]model.Status{},
		tagsAdded:     map[string][]string{},
		tagsRemoved:   map[string][]string{},
		positions:     map[string]model.Position{},
	}
}

func (m *mockStore) ListRushees(ctx context.Context) ([]model.Rushee, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Rushee
	for _, r := range m.rushees {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockStore) GetRushee(ctx context.Context, id string) (*model.Rushee, error) {
	m.getCalls++
	r, ok := m.rushees[id]
	if !ok {
		return nil, &apiclient.APIError{StatusCode: 404, Message: "Rushee not found"}
	}
	cp := *r
	return &cp, nil
}

func (m *mockStore) FindRusheeByEmail(ctx context.Context, fratID, email string) (*model.Rushee, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, r := range m.rushees {
		if r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, &apiclient.APIError{StatusCode: 404, Message: "Rushee not found"}
}

func (m *mockStore) CreateRushee(ctx context.Context, r apiclient.NewRushee) (*model.Rushee, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdRushees = append(m.createdRushees, r)
	id := fmt.Sprintf("r-new-%d", len(m.createdRushees))
	created := &model.Rushee{ID: id, Name: r.Name, Email: r.Email, Status: r.Status}
	m.rushees[id] = created
	return created, nil
}

func (m *mockStore) UpdateRushee(ctx context.Context, fratID, id string, u apiclient.RusheeUpdate) error {
	if err := m.failIDs[id]; err != nil {
		return err
	}
	m.updatedRushees = append(m.updatedRushees, u)
	if r, ok := m.rushees[id]; ok && u.Major != "" {
		r.Major = u.Major
	}
	return nil
}

func (m *mockStore) UpdateRusheeStatus(ctx context.Context, id string, status model.Status) error {
	if err := m.failIDs[id]; err != nil {
		return err
	}
	m.statusUpdates[id] = status
	return nil
}

func (m *mockStore) DeleteRushee(ctx context.Context, id string) error {
	if err := m.failIDs[id]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	delete(m.rushees, id)
	return nil
}

func (m *mockStore) AddNote(ctx context.Context, rusheeID, content string, anonymous bool) error {
	if err := m.failIDs[rusheeID]; err != nil {
		return err
	}
	m.notesAdded = append(m.notesAdded, content)
	if r, ok := m.rushees[rusheeID]; ok {
		r.Notes = append(r.Notes, model.Note{ID: fmt.Sprintf("n%d", len(r.Notes)+1), Content: content, IsAnonymous: anonymous})
	}
	return nil
}

func (m *mockStore) AddRusheeTag(ctx context.Context, rusheeID, tag string) error {
	if err := m.failIDs[rusheeID]; err != nil {
		return err
	}
	m.tagsAdded[rusheeID] = append(m.tagsAdded[rusheeID], tag)
	if r, ok := m.rushees[rusheeID]; ok {
		r.Tags = append(r.Tags, tag)
	}
	return nil
}

func (m *mockStore) RemoveRusheeTag(ctx context.Context, rusheeID, tag string) error {
	if err := m.failIDs[rusheeID]; err != nil {
		return err
	}
	m.tagsRemoved[rusheeID] = append(m.tagsRemoved[rusheeID], tag)
	if r, ok := m.rushees[rusheeID]; ok {
		kept := r.Tags[:0]
		for _, t := range r.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		r.Tags = kept
	}
	return nil
}

func (m *mockStore) DeleteNote(ctx context.Context, rusheeID, noteID string) error {
	m.deletedNotes = append(m.deletedNotes, noteID)
	return nil
}

func (m *mockStore) VoteNote(ctx context.Context, rusheeID, noteID string, action model.VoteAction) error {
	m.votes = append(m.votes, voteCall{rusheeID, noteID, action})
	return nil
}

func (m *mockStore) GetFraternity(ctx context.Context, fratID string) (*model.Fraternity, error) {
	if m.frat == nil {
		return nil, &apiclient.APIError{StatusCode: 404}
	}
	cp := *m.frat
	return &cp, nil
}

func (m *mockStore) AddFraternityTag(ctx context.Context, fratID, tag string) error {
	m.fratTagsAdded = append(m.fratTagsAdded, tag)
	if m.frat != nil {
		m.frat.Tags = append(m.frat.Tags, tag)
	}
	return nil
}

func (m *mockStore) RemoveFraternityTag(ctx context.Context, fratID, tag string) error {
	m.fratTagsRemoved = append(m.fratTagsRemoved, tag)
	return nil
}

func (m *mockStore) ListEvents(ctx context.Context, filter apiclient.EventFilter) ([]model.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *mockStore) GetEvent(ctx context.Context, fratID, eventID string) (*model.Event, error) {
	for _, e := range m.events {
		if e.ID == eventID {
			cp := e
			return &cp, nil
		}
	}
	return nil, &apiclient.APIError{StatusCode: 404}
}

func (m *mockStore) CreateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	if m.createErr != nil && len(m.createdEvents) > 0 {
		return nil, m.createErr
	}
	m.createdEvents = append(m.createdEvents, e)
	e.ID = fmt.Sprintf("e%d", len(m.createdEvents))
	return &e, nil
}

func (m *mockStore) SubmitBrotherForm(ctx context.Context, eventID string, responses model.FormResponse) error {
	m.brotherSubmits = append(m.brotherSubmits, responses)
	return nil
}

func (m *mockStore) SubmitRusheeForm(ctx context.Context, fratID, eventID, rusheeID string, responses model.FormResponse) error {
	m.rusheeSubmits = append(m.rusheeSubmits, rusheeSubmission{fratID, eventID, rusheeID, responses})
	return nil
}

func (m *mockStore) ListSubmissions(ctx context.Context, eventID string, kind model.SubmissionType) ([]model.Submission, error) {
	return m.subs, nil
}

func (m *mockStore) ListBrothers(ctx context.Context) ([]model.Brother, error) {
	return m.brothers, nil
}

func (m *mockStore) CreateBrother(ctx context.Context, b apiclient.NewBrother) (*model.Brother, error) {
	if err := m.failIDs[b.Email]; err != nil {
		return nil, err
	}
	m.createdBrothers = append(m.createdBrothers, b)
	return &model.Brother{ID: fmt.Sprintf("b%d", len(m.createdBrothers)), Name: b.Name, Email: b.Email, Position: b.Position}, nil
}

func (m *mockStore) UpdatePosition(ctx context.Context, brotherID string, position model.Position) error {
	m.positions[brotherID] = position
	return nil
}

func (m *mockStore) ToggleActive(ctx context.Context, brotherID string) error {
	m.toggled = append(m.toggled, brotherID)
	return nil
}

func (m *mockStore) UpdateProfile(ctx context.Context, p apiclient.ProfileUpdate) (*model.Brother, error) {
	m.profileUpdates = append(m.profileUpdates, p)
	return &model.Brother{ID: "me", Phone: p.Phone, Major: p.Major, Year: model.FlexString(p.Year)}, nil
}

func (m *mockStore) ResetPassword(ctx context.Context, currentPassword, newPassword string) error {
	m.passwordRequests = append(m.passwordRequests, [2]string{currentPassword, newPassword})
	return nil
}
