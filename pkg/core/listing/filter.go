package listing

import (
	"sort"
	"strings"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// RusheeFilter narrows a rushee list. Zero fields do not filter.
type RusheeFilter struct {
	// Search matches a case-insensitive substring of the name
	Search string
	// Events keeps rushees who attended every listed event
	Events []string
	Status model.Status
	Tag    string
	// SortByName orders the result alphabetically
	SortByName bool
}

// Active reports whether any narrowing criterion is set
func (f RusheeFilter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || len(f.Events) > 0 || f.Status != "" || f.Tag != ""
}

// Matches reports whether a single rushee passes every criterion
func (f RusheeFilter) Matches(r model.Rushee) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(r.Name), q) {
			return false
		}
	}
	for _, eventID := range f.Events {
		if !r.AttendedEvent(eventID) {
			return false
		}
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Tag != "" && !r.HasTag(f.Tag) {
		return false
	}
	return true
}

// Apply returns the rushees that pass the filter, leaving the input untouched
func Apply(rushees []model.Rushee, f RusheeFilter) []model.Rushee {
	out := make([]model.Rushee, 0, len(rushees))
	for _, r := range rushees {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	if f.SortByName {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

// ActiveBrothers returns active brothers, or everyone when showAll is set
func ActiveBrothers(brothers []model.Brother, showAll bool) []model.Brother {
	if showAll {
		out := make([]model.Brother, len(brothers))
		copy(out, brothers)
		return out
	}
	out := make([]model.Brother, 0, len(brothers))
	for _, b := range brothers {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out
}

// CountByStatus tallies rushees per status, in display order
func CountByStatus(rushees []model.Rushee) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, s := range model.Statuses {
		counts[s] = 0
	}
	for _, r := range rushees {
		counts[r.Status]++
	}
	return counts
}
