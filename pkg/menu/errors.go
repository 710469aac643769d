package menu

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item or folder reference does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrCorruptTree is returned when a hierarchy cannot be flattened back into a
	// canonical list. It indicates a programming error in the caller.
	ErrCorruptTree = errors.New("corrupt tree")

	// ErrInvariant is returned when a committed list violates a structural invariant.
	ErrInvariant = errors.New("invariant violated")
)

// Code classifies a validation rejection for the editing surface.
type Code string

const (
	CodeNameConflict           Code = "NAME_CONFLICT"
	CodeInvalidSatelliteParent Code = "INVALID_SATELLITE_PARENT"
	CodeInvalidDropTarget      Code = "INVALID_DROP_TARGET"
)

// Rejection is an expected, recoverable refusal of a gesture.
// A gesture that returns a Rejection has not mutated the store.
type Rejection struct {
	Code   Code   `json:"code"`
	Reason string `json:"reason"`
	Label  string `json:"label,omitempty"`
	Path   string `json:"path,omitempty"`
}

func (r *Rejection) Error() string {
	if r.Label == "" && r.Path == "" {
		return fmt.Sprintf("%s: %s", r.Code, r.Reason)
	}
	return fmt.Sprintf("%s: %s (label=%q path=%q)", r.Code, r.Reason, r.Label, r.Path)
}

func reject(code Code, reason, label, path string) *Rejection {
	return &Rejection{Code: code, Reason: reason, Label: label, Path: path}
}

// AsRejection unwraps err into a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
