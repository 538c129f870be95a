package strategy

import (
	"fmt"
	"strings"
)

// Action is a player decision the advisor can recommend.
type Action int

const (
	None Action = iota
	Hit
	Stand
	Double
	Split
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Hit:
		return "Hit"
	case Stand:
		return "Stand"
	case Double:
		return "Double"
	case Split:
		return "Split"
	default:
		return "-"
	}
}

// ParseAction parses an action name or its one-letter shortcut.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s":
		return Stand, nil
	case "double", "d", "double-down":
		return Double, nil
	case "split", "p":
		return Split, nil
	}
	return None, fmt.Errorf("unknown action %q", s)
}
