package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// NextVoteAction resolves a click on a vote button. Clicking the button already chosen
// removes the vote.
func NextVoteAction(note model.Note, brotherID string, clicked model.VoteAction) model.VoteAction {
	switch {
	case clicked == model.VoteUp && note.HasUpvoted(brotherID):
		return model.VoteRemove
	case clicked == model.VoteDown && note.HasDownvoted(brotherID):
		return model.VoteRemove
	default:
		return clicked
	}
}

// VoteResult is the refetched rushee plus the verb that was sent
type VoteResult struct {
	Rushee *model.Rushee
	Action model.VoteAction
}

// VoteOnNote sends a single vote verb for the note and refetches the rushee
func VoteOnNote(ctx context.Context, store NoteStore, logger *zap.Logger, rusheeID string, note model.Note, brotherID string, clicked model.VoteAction) (*VoteResult, error) {
	if clicked != model.VoteUp && clicked != model.VoteDown && clicked != model.VoteRemove {
		return nil, fmt.Errorf("unknown vote action %q", clicked)
	}

	action := NextVoteAction(note, brotherID, clicked)
	logger.Debug("Voting on note",
		zap.String("rushee_id", rusheeID),
		zap.String("note_id", note.ID),
		zap.String("action", string(action)))

	if err := store.VoteNote(ctx, rusheeID, note.ID, action); err != nil {
		return nil, fmt.Errorf("failed to vote: %w", err)
	}

	r, err := refetchRushee(ctx, store, rusheeID)
	if err != nil {
		return nil, err
	}
	return &VoteResult{Rushee: r, Action: action}, nil
}

// DeleteRusheeNote removes a note and refetches the rushee
func DeleteRusheeNote(ctx context.Context, store NoteStore, logger *zap.Logger, rusheeID, noteID string) (*model.Rushee, error) {
	if err := store.DeleteNote(ctx, rusheeID, noteID); err != nil {
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	logger.Info("Deleted note", zap.String("rushee_id", rusheeID), zap.String("note_id", noteID))
	return refetchRushee(ctx, store, rusheeID)
}

// NoteView is a note as shown to a particular brother
type NoteView struct {
	ID         string
	RusheeID   string
	RusheeName string
	Content    string
	Author     string
	Timestamp  time.Time
	Upvotes    int
	Downvotes  int
	Upvoted    bool
	Downvoted  bool
}

// AuthorName is "Anonymous" for anonymous notes and "Unknown" when the author is missing
func AuthorName(n model.Note) string {
	switch {
	case n.IsAnonymous:
		return "Anonymous"
	case n.Author == nil || n.Author.Name == "":
		return "Unknown"
	default:
		return n.Author.Name
	}
}

// NewNoteView builds the view of n for brotherID
func NewNoteView(r model.Rushee, n model.Note, brotherID string) NoteView {
	return NoteView{
		ID:         n.ID,
		RusheeID:   r.ID,
		RusheeName: r.Name,
		Content:    n.Content,
		Author:     AuthorName(n),
		Timestamp:  n.Timestamp,
		Upvotes:    len(n.Upvotes),
		Downvotes:  len(n.Downvotes),
		Upvoted:    n.HasUpvoted(brotherID),
		Downvoted:  n.HasDownvoted(brotherID),
	}
}

// RusheeNotes returns the views of one rushee's notes in stored order
func RusheeNotes(r model.Rushee, brotherID string) []NoteView {
	views := make([]NoteView, 0, len(r.Notes))
	for _, n := range r.Notes {
		views = append(views, NewNoteView(r, n, brotherID))
	}
	return views
}

// Feed gathers every note across rushees, newest first. A non-blank search keeps notes whose
// content contains it, case-insensitively.
func Feed(rushees []model.Rushee, brotherID, search string) []NoteView {
	q := strings.ToLower(strings.TrimSpace(search))

	var views []NoteView
	for _, r := range rushees {
		for _, n := range r.Notes {
			if q != "" && !strings.Contains(strings.ToLower(n.Content), q) {
				continue
			}
			views = append(views, NewNoteView(r, n, brotherID))
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Timestamp.After(views[j].Timestamp)
	})
	return views
}
