package menu

import (
	"strings"
)

// CommandKind identifies the interpreter of a leaf command.
type CommandKind string

const (
	// KindPython is the default command kind.
	KindPython CommandKind = "python"

	// KindMEL marks commands evaluated by the host's MEL interpreter.
	KindMEL CommandKind = "mel"

	// melPrefix is accepted on python commands as a shorthand for KindMEL.
	melPrefix = "mel:"
)

// Item represents a single record of the canonical menu list.
// Folders are never stored; they are inferred from Path.
type Item struct {
	// Label is the display text. Empty only for dividers.
	Label string `json:"label"`

	// Path is the "/"-delimited folder path of the item. Empty means top level.
	Path string `json:"path"`

	// Order is the sort key of the canonical list. It is recomputed on every commit.
	Order int `json:"order"`

	// Command is the payload executed by the host for leaf items.
	Command string `json:"command"`

	// CommandKind is the interpreter of Command.
	CommandKind CommandKind `json:"commandKind"`

	// Icon is an opaque icon reference passed through to the host.
	Icon string `json:"icon"`

	// IsOptionBox marks the item as the satellite of the item preceding it.
	IsOptionBox bool `json:"isOptionBox"`

	// IsDivider marks a non-interactive separator.
	IsDivider bool `json:"isDivider"`
}

// IsSeparator reports whether the item is built as a divider. Besides the
// explicit flag, the legacy separator labels are honored.
func (i Item) IsSeparator() bool {
	if i.IsDivider {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(i.Label)) {
	case "-", "---", "separator":
		return true
	}
	return false
}

// CanOwnSatellite reports whether an option box may be attached below the item.
func (i Item) CanOwnSatellite() bool {
	return !i.IsOptionBox && !i.IsSeparator()
}

// ResolveCommand returns the command kind and the command string handed to the host.
// A "mel:" prefix on the command switches the kind to KindMEL and is stripped.
func (i Item) ResolveCommand() (CommandKind, string) {
	cmd := strings.TrimSpace(i.Command)
	if len(cmd) >= len(melPrefix) && strings.EqualFold(cmd[:len(melPrefix)], melPrefix) {
		return KindMEL, strings.TrimSpace(cmd[len(melPrefix):])
	}
	if i.CommandKind == "" {
		return KindPython, cmd
	}
	return i.CommandKind, cmd
}

// Segments returns the parsed path of the item.
func (i Item) Segments() Segments {
	return ParsePath(i.Path)
}

// FullPath is the path of the item including its own label.
func (i Item) FullPath() Segments {
	return i.Segments().Child(i.Label)
}
