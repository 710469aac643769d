package controller

import (
	"fmt"
	"strings"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

func checkLabel(it menu.Item) error {
	if it.IsDivider {
		return nil
	}
	label := strings.TrimSpace(it.Label)
	if label == "" {
		return fmt.Errorf("label is required: %w", ErrInvalidItem)
	}
	if strings.Contains(label, menu.PathSeparator) {
		return fmt.Errorf("label %q contains %q: %w", label, menu.PathSeparator, ErrInvalidItem)
	}
	if (menu.Item{Label: label}).IsSeparator() {
		return fmt.Errorf("label %q is reserved for dividers: %w", label, ErrInvalidItem)
	}
	return nil
}

// exempt reports whether an item skips the sibling name check.
func exempt(it menu.Item) bool {
	return it.IsOptionBox || it.IsSeparator()
}

// insertionPoint returns the record after which a new record goes when the
// user asked for "after target": after the target's satellite if it has one.
func insertionPoint(s *menu.Store, target menu.ID) menu.ID {
	if sat, ok := s.SatelliteOf(target); ok {
		return sat
	}
	return target
}

// Add inserts a new item after the target, or appends it when after is NoID.
// An item added as an option box must pass the promotion check at its new
// position.
func (c *Controller) Add(it menu.Item, after menu.ID) (menu.ID, error) {
	if err := checkLabel(it); err != nil {
		return menu.NoID, err
	}
	it.Label = strings.TrimSpace(it.Label)
	wantOptionBox := it.IsOptionBox && !it.IsDivider
	it.IsOptionBox = false

	var id menu.ID
	err := c.gesture(GestureAdd, func(s *menu.Store) error {
		v := menu.NewValidator(s)
		if !wantOptionBox && !it.IsSeparator() {
			if err := v.NameConflict(it.Label, it.Path); err != nil {
				return err
			}
		}

		var err error
		if after == menu.NoID {
			id = s.Append(it)
		} else {
			point := after
			if !wantOptionBox {
				point = insertionPoint(s, after)
			}
			if id, err = s.InsertAfter(point, it); err != nil {
				return err
			}
		}
		if !wantOptionBox {
			return nil
		}

		if err := menu.Normalize(s); err != nil {
			return err
		}
		res := v.CheckOptionBoxPromotion(menu.Project(s), id)
		if err := v.PromotionError(res, id); err != nil {
			return err
		}
		return s.Update(id, func(rec *menu.Item) { rec.IsOptionBox = true })
	})
	if err != nil {
		return menu.NoID, err
	}
	return id, nil
}

// Edit commits the editor fields of an existing item. A changed path relocates
// the item to the end of the target folder.
func (c *Controller) Edit(id menu.ID, it menu.Item) error {
	return c.gesture(GestureEdit, func(s *menu.Store) error {
		cur, ok := s.Get(id)
		if !ok {
			return fmt.Errorf("edit %d: %w", id, menu.ErrNotFound)
		}
		if cur.IsSeparator() {
			return fmt.Errorf("dividers have no editable fields: %w", ErrInvalidItem)
		}
		it.IsDivider = false
		if err := checkLabel(it); err != nil {
			return err
		}

		// A relocated option box is demoted and competes with its new siblings.
		path := menu.ParsePath(it.Path)
		moved := !path.Equal(cur.Segments())
		if !cur.IsOptionBox || moved {
			v := menu.NewValidator(s)
			if err := v.NameConflict(it.Label, it.Path, id); err != nil {
				return err
			}
		}

		err := s.Update(id, func(rec *menu.Item) {
			rec.Label = strings.TrimSpace(it.Label)
			rec.Command = it.Command
			rec.CommandKind = it.CommandKind
			rec.Icon = it.Icon
		})
		if err != nil {
			return err
		}

		if moved {
			return menu.Relocate(s, id, path)
		}
		return nil
	})
}

// AddDivider inserts a divider after a target item, at the end of a target
// folder, or at the end of the top level for a zero ref.
func (c *Controller) AddDivider(target menu.Ref) (menu.ID, error) {
	var id menu.ID
	err := c.gesture(GestureDivider, func(s *menu.Store) error {
		divider := menu.Item{IsDivider: true}
		if target.IsZero() {
			id = s.Append(divider)
			return nil
		}

		node, err := menu.Project(s).Resolve(target)
		if err != nil {
			return err
		}
		if node.Kind == menu.FolderNode {
			divider.Path = node.Path().String()
			id = s.Append(divider)
			return nil
		}

		it, _ := s.Get(node.Item)
		divider.Path = it.Path
		id, err = s.InsertAfter(insertionPoint(s, node.Item), divider)
		return err
	})
	if err != nil {
		return menu.NoID, err
	}
	return id, nil
}

// Drop applies a completed drag-and-drop gesture.
func (c *Controller) Drop(d menu.Drop) error {
	return c.gesture(GestureDrop, func(s *menu.Store) error {
		r := menu.NewResolver(s, menu.Project(s))
		m, err := r.Resolve(d)
		if err != nil {
			return err
		}
		return r.Apply(m)
	})
}

// Rename changes the label of an item or the name of a folder. Renaming a
// folder moves every item below it.
func (c *Controller) Rename(ref menu.Ref, label string) error {
	label = strings.TrimSpace(label)
	if err := checkLabel(menu.Item{Label: label}); err != nil {
		return err
	}

	return c.gesture(GestureRename, func(s *menu.Store) error {
		t := menu.Project(s)
		node, err := t.Resolve(ref)
		if err != nil {
			return err
		}
		v := menu.NewValidator(s)

		if node.Kind == menu.LeafNode {
			it, _ := s.Get(node.Item)
			if it.IsSeparator() {
				return fmt.Errorf("dividers cannot be renamed: %w", ErrInvalidItem)
			}
			if !it.IsOptionBox {
				if err := v.NameConflict(label, it.Path, node.Item); err != nil {
					return err
				}
			}
			return s.Update(node.Item, func(rec *menu.Item) { rec.Label = label })
		}

		if label == node.Name {
			return nil
		}
		if err := v.NameConflict(label, node.Dir().String(), node.Leaves()...); err != nil {
			return err
		}
		if err := t.Rename(node, label); err != nil {
			return err
		}
		return menu.Sync(s, t)
	})
}

// Delete removes an item together with its satellite, or a folder together
// with every item whose path is the folder or below it.
func (c *Controller) Delete(ref menu.Ref) (int, error) {
	var removed int
	err := c.gesture(GestureDelete, func(s *menu.Store) error {
		var ids []menu.ID
		if ref.ID != menu.NoID {
			if _, ok := s.Get(ref.ID); !ok {
				return fmt.Errorf("delete %s: %w", ref, menu.ErrNotFound)
			}
			ids = append(ids, ref.ID)
			if sat, ok := s.SatelliteOf(ref.ID); ok {
				ids = append(ids, sat)
			}
		} else {
			folder := menu.ParsePath(ref.Folder)
			if len(folder) == 0 {
				return fmt.Errorf("delete %s: %w", ref, menu.ErrNotFound)
			}
			for _, e := range s.Entries() {
				if e.Item.Segments().HasPrefix(folder) {
					ids = append(ids, e.ID)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("delete %s: %w", ref, menu.ErrNotFound)
			}
		}
		removed = s.Remove(ids...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SetOptionBox promotes an item to an option box of the item displayed above
// it, or demotes it. Demotion is always legal.
func (c *Controller) SetOptionBox(id menu.ID, on bool) error {
	return c.gesture(GestureOptionBox, func(s *menu.Store) error {
		if _, ok := s.Get(id); !ok {
			return fmt.Errorf("option box %d: %w", id, menu.ErrNotFound)
		}
		if on {
			v := menu.NewValidator(s)
			res := v.CheckOptionBoxPromotion(menu.Project(s), id)
			if err := v.PromotionError(res, id); err != nil {
				return err
			}
		}
		return s.Update(id, func(rec *menu.Item) { rec.IsOptionBox = on })
	})
}
