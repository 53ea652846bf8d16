package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/session"
)

var testBrother = model.Brother{ID: "b1", Name: "Alex", Position: model.PositionPresident, Frat: "frat-1", IsActive: true}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore("")
	c, err := NewClient(Options{BaseURL: srv.URL + "/api"}, store, zap.NewNop())
	require.NoError(t, err)
	return c, store
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "/api"}, session.NewStore(""), zap.NewNop())
	assert.Error(t, err)
}

func TestLogin_StoresSessionAndAuthenticatesLaterCalls(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/brothers/login":
			assert.Empty(t, r.Header.Get("Authorization"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alex@school.edu", body["email"])
			assert.Equal(t, "hunter2", body["password"])
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"token": "tok-123", "brother": testBrother},
			})
		case "/api/rushees":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			assert.Equal(t, "frat-1", r.URL.Query().Get("fraternity"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"data":    []map[string]any{{"_id": "r1", "name": "Jane", "status": "Potential"}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	b, err := c.Login(context.Background(), "alex@school.edu", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testBrother, *b)
	assert.True(t, store.LoggedIn())

	rushees, err := c.ListRushees(context.Background())
	require.NoError(t, err)
	require.Len(t, rushees, 1)
	assert.Equal(t, "Jane", rushees[0].Name)
}

func TestEnvelopeVariants(t *testing.T) {
	bodies := map[string]string{
		"success and data": `{"success":true,"data":[{"_id":"e1","name":"Info Night"}]}`,
		"data only":        `{"data":[{"_id":"e1","name":"Info Night"}]}`,
		"bare array":       `[{"_id":"e1","name":"Info Night"}]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, body)
			})
			require.NoError(t, store.Login("tok", testBrother))

			events, err := c.ListEvents(context.Background(), EventFilter{})
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, "Info Night", events[0].Name)
		})
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Token expired"})
	})
	require.NoError(t, store.Login("tok", testBrother))

	_, err := c.ListRushees(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, store.LoggedIn())
	assert.Equal(t, "Token expired", Message(err, "fallback"))
}

func TestNotFoundIsDistinguishable(t *testing.T) {
	var sawAuth atomic.Bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sawAuth.Store(r.Header.Get("Authorization") != "")
		assert.Equal(t, "/api/rushees/search", r.URL.Path)
		assert.Equal(t, "new@school.edu", r.URL.Query().Get("email"))
		assert.Equal(t, "frat-1", r.URL.Query().Get("fraternity"))
		writeJSON(t, w, http.StatusNotFound, map[string]any{"success": false, "message": "Rushee not found"})
	})

	_, err := c.FindRusheeByEmail(context.Background(), "frat-1", "new@school.edu")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, sawAuth.Load(), "public lookups must work without a session")
}

func TestServerErrorMessage(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"message": "database unavailable"})
	})
	require.NoError(t, store.Login("tok", testBrother))

	err := c.UpdateRusheeStatus(context.Background(), "r1", model.StatusActive)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "database unavailable", Message(err, "Failed to update status"))
	assert.True(t, store.LoggedIn())
}

func TestSuccessFalseWith200IsAnError(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": false, "error": "Current password is incorrect"})
	})
	require.NoError(t, store.Login("tok", testBrother))

	err := c.ResetPassword(context.Background(), "old", "new")

	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", Message(err, "Failed to update password"))
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "", Message(nil, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", Message(&APIError{StatusCode: 500}, "fallback"))
}

func TestAuthenticatedCallWithoutSession(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	err := c.AddRusheeTag(context.Background(), "r1", "Legacy")

	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, int32(0), calls.Load())
}

func TestVoteAndDeleteNoteUseNoteIDs(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		assert.Equal(t, "frat-1", r.URL.Query().Get("fraternity"))
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})
	require.NoError(t, store.Login("tok", testBrother))

	ctx := context.Background()
	require.NoError(t, c.VoteNote(ctx, "r1", "n-42", model.VoteUp))
	require.NoError(t, c.VoteNote(ctx, "r1", "n-42", model.VoteRemove))
	require.NoError(t, c.DeleteNote(ctx, "r1", "n-42"))

	assert.Equal(t, []call{
		{http.MethodPatch, "/api/rushees/r1/notes/n-42/upvote"},
		{http.MethodPatch, "/api/rushees/r1/notes/n-42/remove"},
		{http.MethodDelete, "/api/rushees/r1/notes/n-42"},
	}, calls)
}

func TestTagRemovalSendsBody(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/frats/frat-1/tags", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Legacy", body["tag"])
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})
	require.NoError(t, store.Login("tok", testBrother))

	require.NoError(t, c.RemoveFraternityTag(context.Background(), "frat-1", "Legacy"))
}

func TestSubmitRusheeFormPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/e1/submit/rushee", r.URL.Path)
		assert.Equal(t, "frat-1", r.URL.Query().Get("fraternity"))
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"rusheeId":"r1","responses":{"q-name":"Jane Doe","q-sports":["Soccer"]}}`, string(data))
		writeJSON(t, w, http.StatusCreated, map[string]any{"success": true})
	})

	err := c.SubmitRusheeForm(context.Background(), "frat-1", "e1", "r1", model.FormResponse{
		"q-name":   model.TextAnswer("Jane Doe"),
		"q-sports": model.ListAnswer("Soccer"),
	})
	require.NoError(t, err)
}

func TestListSubmissionsDecodesSerializedResponses(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rushee", r.URL.Query().Get("type"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": []map[string]any{{
				"_id":       "s1",
				"rushee":    map[string]any{"_id": "r1", "name": "Jane"},
				"responses": `{"0":"Jane","1":"jane@school.edu"}`,
			}},
		})
	})
	require.NoError(t, store.Login("tok", testBrother))

	subs, err := c.ListSubmissions(context.Background(), "e1", model.SubmissionRushee)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Jane", subs[0].Rushee.Name)
	assert.Equal(t, "jane@school.edu", subs[0].Responses.FormResponse["1"].Text())
}

func TestUploadImage(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload/image", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"url": "https://img.example/me.png"}})
	})
	require.NoError(t, store.Login("tok", testBrother))

	u, err := c.UploadImage(context.Background(), "me.png", []byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/me.png", u)
}

func TestUpdateProfileRefreshesSession(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/brothers/profile", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})
	require.NoError(t, store.Login("tok", testBrother))

	updated, err := c.UpdateProfile(context.Background(), ProfileUpdate{Phone: "555-0000", Major: "Math", Year: "3"})
	require.NoError(t, err)
	assert.Equal(t, "Math", updated.Major)

	b, ok := store.Brother()
	require.True(t, ok)
	assert.Equal(t, "555-0000", b.Phone)
	assert.Equal(t, model.FlexString("3"), b.Year)
}
