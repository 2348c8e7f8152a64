package models

import "fmt"

// Action is a single user-initiated state transition on one message
type Action string

const (
	ActionRead            Action = "read"
	ActionStar            Action = "star"
	ActionUnstar          Action = "unstar"
	ActionArchive         Action = "archive"
	ActionUnarchive       Action = "unarchive"
	ActionDelete          Action = "delete" // soft delete
	ActionRestore         Action = "restore"
	ActionPermanentDelete Action = "permanentDelete"

	// ActionDeleteAll empties the trash; it is not tied to one message
	ActionDeleteAll Action = "deleteAll"
)

// MessageActions lists the actions that target a single message
var MessageActions = []Action{
	ActionRead, ActionStar, ActionUnstar, ActionArchive, ActionUnarchive,
	ActionDelete, ActionRestore, ActionPermanentDelete,
}

// ParseAction accepts any per-message action name
func ParseAction(s string) (Action, error) {
	for _, a := range MessageActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Patch returns the flag and value the action writes. ok is false for
// actions that are not a flag change (permanent delete).
func (a Action) Patch() (flag Flag, value bool, ok bool) {
	switch a {
	case ActionRead:
		return FlagRead, true, true
	case ActionStar:
		return FlagStarred, true, true
	case ActionUnstar:
		return FlagStarred, false, true
	case ActionArchive:
		return FlagArchived, true, true
	case ActionUnarchive:
		return FlagArchived, false, true
	case ActionDelete:
		return FlagDeleted, true, true
	case ActionRestore:
		return FlagDeleted, false, true
	}
	return "", false, false
}
