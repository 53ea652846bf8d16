package commands

import (
	"errors"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// ErrForbidden is returned when the logged-in position lacks a permission
var ErrForbidden = errors.New("permission denied")

// Permission is an action a position may be allowed to take
type Permission string

const (
	PermViewEvents        Permission = "view events"
	PermManageEvents      Permission = "manage events"
	PermViewRushees       Permission = "view rushees"
	PermManageRushees     Permission = "manage rushees"
	PermNotes             Permission = "write notes"
	PermViewBrotherhood   Permission = "view the brotherhood"
	PermManageBrotherhood Permission = "manage the brotherhood"
	PermProfile           Permission = "edit a profile"
	PermWrapped           Permission = "view wrapped"
)

var rolePermissions = map[model.Position][]Permission{
	model.PositionRushChair: {
		PermViewEvents, PermManageEvents,
		PermViewRushees, PermManageRushees, PermNotes,
	},
	model.PositionBrother: {
		PermViewEvents,
		PermViewRushees, PermNotes,
		PermViewBrotherhood,
		PermProfile,
	},
}

// Allowed reports whether position may exercise perm. The president may do everything.
func Allowed(position model.Position, perm Permission) bool {
	if position == model.PositionPresident {
		return true
	}
	for _, p := range rolePermissions[position] {
		if p == perm {
			return true
		}
	}
	return false
}

// Tab is a dashboard section
type Tab struct {
	Name       string
	Command    string
	Permission Permission
}

var allTabs = []Tab{
	{"Events", "events", PermViewEvents},
	{"Rushees", "rushees", PermViewRushees},
	{"Feed", "notes feed", PermNotes},
	{"Delibs", "delibs", PermManageRushees},
	{"Brotherhood", "brothers", PermViewBrotherhood},
	{"Profile", "profile", PermProfile},
	{"Wrapped", "wrapped", PermWrapped},
}

// TabsFor lists the dashboard tabs a position can open
func TabsFor(position model.Position) []Tab {
	var tabs []Tab
	for _, t := range allTabs {
		if Allowed(position, t.Permission) {
			tabs = append(tabs, t)
		}
	}
	return tabs
}
