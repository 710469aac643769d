package menu

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Rejection reasons reported by CheckOptionBoxPromotion.
const (
	ReasonNotFound         = "item not found in the displayed tree"
	ReasonFirstAtLevel     = "an option box cannot be the first item at its level"
	ReasonFolderAbove      = "the item above an option box must be a menu item, not a folder"
	ReasonOtherLevel       = "the item above an option box must be at the same level"
	ReasonDividerAbove     = "a divider cannot own an option box"
	ReasonSatelliteAbove   = "an option box cannot own another option box"
	ReasonDividerCandidate = "a divider cannot become an option box"
	ReasonOwnsSatellite    = "an item that owns an option box cannot become one"

	reasonNameConflict = "a sibling with the same name already exists"
)

// Result is the outcome of a promotion check.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Validator answers pre-commit questions about a store. It never mutates.
type Validator struct {
	store *Store
}

// NewValidator returns a validator reading s.
func NewValidator(s *Store) *Validator {
	return &Validator{store: s}
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// SiblingNames returns the folded names competing with a new label at path:
// labels of records stored at path, except option boxes and dividers, and the
// names of virtual folders directly below path. Folders are derived one level
// down only.
func (v *Validator) SiblingNames(path string, excluding ...ID) map[string]bool {
	dir := ParsePath(path)
	names := make(map[string]bool)
	for _, e := range v.store.Entries() {
		if isExcluded(e.ID, excluding) {
			continue
		}
		segs := e.Item.Segments()
		if segs.Equal(dir) {
			if !e.Item.IsOptionBox && !e.Item.IsSeparator() {
				names[fold(e.Item.Label)] = true
			}
			continue
		}
		if len(segs) > len(dir) && segs.HasPrefix(dir) {
			names[fold(segs[len(dir)])] = true
		}
	}
	return names
}

func isExcluded(id ID, excluding []ID) bool {
	for _, x := range excluding {
		if x == id {
			return true
		}
	}
	return false
}

// CheckNameConflict reports whether label collides, case-insensitively, with a
// sibling at path.
func (v *Validator) CheckNameConflict(label, path string, excluding ...ID) bool {
	return v.SiblingNames(path, excluding...)[fold(label)]
}

// NameConflict is CheckNameConflict returning a Rejection for the caller to surface.
func (v *Validator) NameConflict(label, path string, excluding ...ID) error {
	if !v.CheckNameConflict(label, path, excluding...) {
		return nil
	}
	return reject(CodeNameConflict, reasonNameConflict, label, ParsePath(path).String())
}

// CheckOptionBoxPromotion checks whether candidate may become an option box
// given the displayed order of t. t must be the tree the user is looking at,
// not a projection of stale data.
func (v *Validator) CheckOptionBoxPromotion(t *Tree, candidate ID) Result {
	node, ok := t.Leaf(candidate)
	it, found := v.store.Get(candidate)
	if !ok || !found || node.parent == nil {
		return Result{Reason: ReasonNotFound}
	}
	if it.IsSeparator() {
		return Result{Reason: ReasonDividerCandidate}
	}
	if next := node.NextSibling(); next != nil && next.Kind == LeafNode {
		if nextItem, ok := v.store.Get(next.Item); ok && nextItem.IsOptionBox {
			return Result{Reason: ReasonOwnsSatellite}
		}
	}

	switch prev := node.PrevSibling(); {
	case prev == nil:
		return Result{Reason: ReasonFirstAtLevel}
	case prev.Kind == FolderNode:
		return Result{Reason: ReasonFolderAbove}
	}
	above := t.Predecessor(node)
	if above == nil || above.parent != node.parent {
		return Result{Reason: ReasonOtherLevel}
	}
	owner, ok := v.store.Get(above.Item)
	switch {
	case !ok:
		return Result{Reason: ReasonFolderAbove}
	case owner.IsSeparator():
		return Result{Reason: ReasonDividerAbove}
	case owner.IsOptionBox:
		return Result{Reason: ReasonSatelliteAbove}
	}
	return Result{OK: true}
}

// PromotionError converts a failed promotion check into a Rejection.
func (v *Validator) PromotionError(r Result, candidate ID) error {
	if r.OK {
		return nil
	}
	it, _ := v.store.Get(candidate)
	return reject(CodeInvalidSatelliteParent, r.Reason, it.Label, it.Path)
}

// CheckInvariants verifies the structural invariants of s: satellites directly
// follow a non-divider, non-satellite owner at the same path, and order values
// strictly increase by OrderStep.
func CheckInvariants(s *Store) error {
	var errs []error
	items := s.Items()
	for i, it := range items {
		if it.Order != (i+1)*OrderStep {
			errs = append(errs, fmt.Errorf("item %q has order %d at position %d: %w", it.Label, it.Order, i, ErrInvariant))
		}
		if !it.IsOptionBox {
			continue
		}
		if it.IsDivider {
			errs = append(errs, fmt.Errorf("divider %q is an option box: %w", it.Path, ErrInvariant))
			continue
		}
		if i == 0 {
			errs = append(errs, fmt.Errorf("option box %q is the first item: %w", it.Label, ErrInvariant))
			continue
		}
		prev := items[i-1]
		if prev.Path != it.Path || !prev.CanOwnSatellite() {
			errs = append(errs, fmt.Errorf("option box %q at %q has no valid owner: %w", it.Label, it.Path, ErrInvariant))
		}
	}
	return errors.Join(errs...)
}

// Repair demotes every option box that has no valid owner and returns the
// demoted IDs.
func Repair(s *Store) []ID {
	var demoted []ID
	entries := s.Entries()
	for i, e := range entries {
		if !e.Item.IsOptionBox {
			continue
		}
		valid := i > 0 &&
			!e.Item.IsDivider &&
			entries[i-1].Item.Path == e.Item.Path &&
			entries[i-1].Item.CanOwnSatellite()
		if valid {
			continue
		}
		_ = s.Update(e.ID, func(it *Item) { it.IsOptionBox = false })
		entries[i].Item.IsOptionBox = false
		demoted = append(demoted, e.ID)
	}
	return demoted
}

// Finding is one problem reported by Audit.
type Finding struct {
	Code  Code   `json:"code"`
	ID    ID     `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Audit reports every record whose label collides with a sibling, and every
// option box without a valid owner.
func Audit(s *Store) []Finding {
	v := NewValidator(s)
	var out []Finding
	entries := s.Entries()
	for i, e := range entries {
		it := e.Item
		if it.IsOptionBox {
			ok := i > 0 && entries[i-1].Item.Path == it.Path && entries[i-1].Item.CanOwnSatellite()
			if !ok {
				out = append(out, Finding{Code: CodeInvalidSatelliteParent, ID: e.ID, Label: it.Label, Path: it.Path})
			}
			continue
		}
		if it.IsSeparator() {
			continue
		}
		if v.CheckNameConflict(it.Label, it.Path, e.ID) {
			out = append(out, Finding{Code: CodeNameConflict, ID: e.ID, Label: it.Label, Path: it.Path})
		}
	}
	return out
}

// CheckNewConflicts rejects after when it holds a name conflict that before did
// not. Conflicts already present in before, such as those in hand-edited
// configurations, are tolerated.
func CheckNewConflicts(before, after *Store) error {
	known := make(map[ID]bool)
	for _, f := range Audit(before) {
		if f.Code == CodeNameConflict {
			known[f.ID] = true
		}
	}
	for _, f := range Audit(after) {
		if f.Code == CodeNameConflict && !known[f.ID] {
			return reject(CodeNameConflict, reasonNameConflict, f.Label, f.Path)
		}
	}
	return nil
}
