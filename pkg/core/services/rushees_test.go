package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/model"
)

func TestFindOrCreateRushee_Existing(t *testing.T) {
	store := newMockStore()
	store.rushees["r1"] = &model.Rushee{ID: "r1", Email: "jane@school.edu"}

	result, err := FindOrCreateRushee(context.Background(), store, zap.NewNop(), apiclient.NewRushee{Email: " jane@school.edu ", Fraternity: "f1"})

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "r1", result.Rushee.ID)
	assert.Empty(t, store.createdRushees)
}

func TestFindOrCreateRushee_CreatesOnNotFound(t *testing.T) {
	store := newMockStore()

	result, err := FindOrCreateRushee(context.Background(), store, zap.NewNop(), apiclient.NewRushee{Name: "Sam", Email: "sam@school.edu", Fraternity: "f1"})

	require.NoError(t, err)
	assert.True(t, result.Created)
	require.Len(t, store.createdRushees, 1)
	assert.Equal(t, model.StatusPotential, store.createdRushees[0].Status)
}

func TestFindOrCreateRushee_OtherErrorsDoNotCreate(t *testing.T) {
	store := newMockStore()
	store.findErr = &apiclient.APIError{StatusCode: 500, Message: "boom"}

	_, err := FindOrCreateRushee(context.Background(), store, zap.NewNop(), apiclient.NewRushee{Email: "sam@school.edu"})

	assert.Error(t, err)
	assert.Empty(t, store.createdRushees)
}

func TestUpdateRusheeStatus(t *testing.T) {
	store := newMockStore()

	status, err := UpdateRusheeStatus(context.Background(), store, zap.NewNop(), "r1", "dropped")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDropped, status)
	assert.Equal(t, model.StatusDropped, store.statusUpdates["r1"])

	// any status to any status
	_, err = UpdateRusheeStatus(context.Background(), store, zap.NewNop(), "r1", "Potential")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPotential, store.statusUpdates["r1"])
}

func TestUpdateRusheeStatus_InvalidIsRejectedLocally(t *testing.T) {
	store := newMockStore()

	_, err := UpdateRusheeStatus(context.Background(), store, zap.NewNop(), "r1", "Pledged")

	assert.Error(t, err)
	assert.Empty(t, store.statusUpdates)
}

func TestAddRusheeNote(t *testing.T) {
	store := newMockStore()
	store.rushees["r1"] = &model.Rushee{ID: "r1"}

	r, err := AddRusheeNote(context.Background(), store, zap.NewNop(), "r1", "  Great energy  ", true)

	require.NoError(t, err)
	assert.Equal(t, []string{"Great energy"}, store.notesAdded)
	require.Len(t, r.Notes, 1, "rushee must be refetched after posting")
	assert.True(t, r.Notes[0].IsAnonymous)
}

func TestAddRusheeNote_BlankIsRejectedBeforeRequest(t *testing.T) {
	store := newMockStore()

	_, err := AddRusheeNote(context.Background(), store, zap.NewNop(), "r1", "   ", false)

	assert.ErrorIs(t, err, ErrEmptyNote)
	assert.Empty(t, store.notesAdded)
	assert.Zero(t, store.getCalls)
}

func TestAddAndRemoveRusheeTag(t *testing.T) {
	store := newMockStore()
	store.rushees["r1"] = &model.Rushee{ID: "r1"}
	frat := &model.Fraternity{ID: "f1", Tags: []string{"Legacy"}}
	ctx := context.Background()

	r, err := AddRusheeTag(ctx, store, zap.NewNop(), frat, "r1", " Legacy ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Legacy"}, r.Tags)

	r, err = RemoveRusheeTag(ctx, store, zap.NewNop(), "r1", "Legacy")
	require.NoError(t, err)
	assert.Empty(t, r.Tags)

	_, err = AddRusheeTag(ctx, store, zap.NewNop(), frat, "r1", " ")
	assert.ErrorIs(t, err, ErrEmptyTag)
}

func TestAddRusheeTagOutsideVocabulary(t *testing.T) {
	store := newMockStore()
	store.rushees["r1"] = &model.Rushee{ID: "r1", Tags: []string{"Retired"}}
	frat := &model.Fraternity{ID: "f1", Tags: []string{"Legacy", "Athlete"}}
	ctx := context.Background()

	for _, tag := range []string{"Varsity", "legacy"} {
		_, err := AddRusheeTag(ctx, store, zap.NewNop(), frat, "r1", tag)
		assert.ErrorIs(t, err, ErrUnknownTag, tag)
	}
	_, err := AddRusheeTag(ctx, store, zap.NewNop(), nil, "r1", "Legacy")
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.Empty(t, store.tagsAdded, "no request is sent for an unknown tag")

	_, err = BulkAddTag(ctx, store, zap.NewNop(), frat, []model.Rushee{{ID: "r1"}}, "Varsity")
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.Empty(t, store.tagsAdded)

	// tags dropped from the vocabulary can still be removed
	r, err := RemoveRusheeTag(ctx, store, zap.NewNop(), "r1", "Retired")
	require.NoError(t, err)
	assert.Empty(t, r.Tags)
}

func TestOfferedTags(t *testing.T) {
	frat := &model.Fraternity{Tags: []string{"Legacy", "Athlete"}}
	rushee := model.Rushee{Tags: []string{"Athlete", "Retired Tag"}}

	assert.Equal(t, []string{"Legacy", "Athlete", "Retired Tag"}, OfferedTags(frat, rushee))
	assert.Equal(t, []string{"Retired Tag"}, OfferedTags(nil, model.Rushee{Tags: []string{"Retired Tag"}}))
}

func TestFraternityTags(t *testing.T) {
	store := newMockStore()
	store.frat = &model.Fraternity{ID: "f1", Tags: []string{"Legacy"}}
	ctx := context.Background()

	frat, err := AddFraternityTag(ctx, store, zap.NewNop(), "f1", " Athlete ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Legacy", "Athlete"}, frat.Tags)

	_, err = RemoveFraternityTag(ctx, store, zap.NewNop(), "f1", "Legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"Legacy"}, store.fratTagsRemoved)
}

func TestUpdateRusheeProfile(t *testing.T) {
	store := newMockStore()
	store.rushees["r1"] = &model.Rushee{ID: "r1", Major: "CS"}

	r, err := UpdateRusheeProfile(context.Background(), store, zap.NewNop(), "f1", "r1", apiclient.RusheeUpdate{Major: "Math"})

	require.NoError(t, err)
	assert.Equal(t, "Math", r.Major)
}

func TestBatchDeleteRushees_ContinuesPastFailures(t *testing.T) {
	store := newMockStore()
	store.failIDs["r2"] = errors.New("server error")

	result := BatchDeleteRushees(context.Background(), store, zap.NewNop(), []string{"r1", "r2", "r3"})

	assert.Equal(t, []string{"r1", "r3"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "r2", result.Failed[0].ID)
	assert.False(t, result.OK())
	assert.Equal(t, "Deleted 2 rushees, 1 failed", result.Summary("Deleted"))
	assert.Equal(t, []string{"r1", "r3"}, store.deleted)
}

func TestBatchDeleteRushees_CancelledContext(t *testing.T) {
	store := newMockStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := BatchDeleteRushees(ctx, store, zap.NewNop(), []string{"r1"})

	assert.Empty(t, store.deleted)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, context.Canceled)
}

func TestBulkAddTag(t *testing.T) {
	store := newMockStore()
	store.failIDs["r3"] = errors.New("server error")
	rushees := []model.Rushee{
		{ID: "r1"},
		{ID: "r2", Tags: []string{"Legacy"}},
		{ID: "r3"},
	}

	frat := &model.Fraternity{ID: "f1", Tags: []string{"Legacy"}}

	result, err := BulkAddTag(context.Background(), store, zap.NewNop(), frat, rushees, "Legacy")

	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "r3", result.Failed[0].ID)
	assert.Equal(t, []string{"Legacy"}, store.tagsAdded["r1"])
	assert.Empty(t, store.tagsAdded["r2"], "already tagged rushees are not re-sent")
	assert.Equal(t, "Tagged 2 rushees, 1 failed", result.Summary("Tagged"))
}
