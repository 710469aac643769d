package controller

import "github.com/mchmarny/menubuilder/pkg/menu"

// NodeView is the serializable form of a displayed tree node.
type NodeView struct {
	Kind      string      `json:"kind"`
	Name      string      `json:"name"`
	Display   string      `json:"display"`
	Path      string      `json:"path"`
	ID        menu.ID     `json:"id,omitempty"`
	OptionBox bool        `json:"optionBox,omitempty"`
	Divider   bool        `json:"divider,omitempty"`
	Children  []*NodeView `json:"children,omitempty"`
}

// View returns the displayed hierarchy of the current store.
func (c *Controller) View() []*NodeView {
	return viewChildren(c.Tree().Root())
}

func viewChildren(n *menu.Node) []*NodeView {
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	out := make([]*NodeView, 0, len(children))
	for _, ch := range children {
		v := &NodeView{
			Kind:      ch.Kind.String(),
			Name:      ch.Name,
			Display:   ch.Display(),
			Path:      ch.Dir().String(),
			ID:        ch.Item,
			OptionBox: ch.Decoration == menu.DecorOptionBox,
			Divider:   ch.Decoration == menu.DecorDivider,
			Children:  viewChildren(ch),
		}
		out = append(out, v)
	}
	return out
}
