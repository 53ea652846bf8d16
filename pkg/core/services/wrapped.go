package services

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

const (
	topCommenterCount = 3
	noCommentsYet     = "No comments yet."
)

// RusheeLister lists rushees with their notes
type RusheeLister interface {
	ListRushees(ctx context.Context) ([]model.Rushee, error)
}

// Wrapped fetches every rushee and summarises the recruitment cycle
func Wrapped(ctx context.Context, store RusheeLister, logger *zap.Logger) (*model.Stats, error) {
	rushees, err := store.ListRushees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rushees: %w", err)
	}
	stats := ComputeStats(rushees)
	logger.Debug("Computed wrapped stats",
		zap.Int("rushees", stats.TotalRushees),
		zap.Int("comments", stats.TotalComments))
	return &stats, nil
}

// ComputeStats summarises rushees and their notes. Ties go to the note seen first. There is
// always a longest note entry; the vote highlights are nil when no note has a vote.
func ComputeStats(rushees []model.Rushee) model.Stats {
	stats := model.Stats{
		TotalRushees: len(rushees),
		LongestNote:  &model.NoteHighlight{Content: noCommentsYet, Author: "Anonymous"},
	}

	events := map[string]bool{}
	counts := map[string]*model.CommenterCount{}
	var order []string
	longest := 0

	for _, r := range rushees {
		for _, e := range r.EventsAttended {
			if e.ID != "" {
				events[e.ID] = true
			}
		}

		for _, n := range r.Notes {
			stats.TotalComments++

			key, name := "anonymous", "Anonymous"
			if n.Author != nil && n.Author.ID != "" {
				key = n.Author.ID
				if n.Author.Name != "" {
					name = n.Author.Name
				}
			}
			if c, ok := counts[key]; ok {
				c.Count++
			} else {
				counts[key] = &model.CommenterCount{Name: name, Count: 1}
				order = append(order, key)
			}

			if l := utf8.RuneCountInString(n.Content); l > longest {
				longest = l
				stats.LongestNote = highlight(r, n, l)
			}
			if up := len(n.Upvotes); up > 0 && (stats.MostUpvoted == nil || up > stats.MostUpvoted.Count) {
				stats.MostUpvoted = highlight(r, n, up)
			}
			if down := len(n.Downvotes); down > 0 && (stats.MostDownvoted == nil || down > stats.MostDownvoted.Count) {
				stats.MostDownvoted = highlight(r, n, down)
			}
		}
	}
	stats.TotalEvents = len(events)

	commenters := make([]model.CommenterCount, 0, len(order))
	for _, key := range order {
		commenters = append(commenters, *counts[key])
	}
	sort.SliceStable(commenters, func(i, j int) bool {
		return commenters[i].Count > commenters[j].Count
	})
	if len(commenters) > topCommenterCount {
		commenters = commenters[:topCommenterCount]
	}
	stats.TopCommenters = commenters

	return stats
}

func highlight(r model.Rushee, n model.Note, count int) *model.NoteHighlight {
	author := "Anonymous"
	if !n.IsAnonymous && n.Author != nil && n.Author.Name != "" {
		author = n.Author.Name
	}
	return &model.NoteHighlight{
		Content: n.Content,
		Author:  author,
		Rushee:  r.Name,
		Count:   count,
	}
}
