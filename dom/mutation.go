package dom

import (
	"golang.org/x/net/html"
)

// AppendChild inserts child as the last child of n.
func (n *Node) AppendChild(child *Node) (*Node, error) {
	if err := n.InsertBefore(child, nil); err != nil {
		return nil, err
	}
	return child, nil
}

// InsertBefore inserts node before ref, or at the end when ref is nil.
// Inserting a fragment moves its children.
func (n *Node) InsertBefore(node, ref *Node) error {
	if err := n.validateInsert(node, ref); err != nil {
		return err
	}
	if ref == node {
		ref = node.NextSibling()
	}

	var moved []*html.Node
	if node.fragment {
		for c := node.raw.FirstChild; c != nil; c = c.NextSibling {
			moved = append(moved, c)
		}
	} else {
		moved = []*html.Node{node.raw}
	}

	for _, raw := range moved {
		if old := raw.Parent; old != nil {
			oldParent := node.doc.wrap(old)
			old.RemoveChild(raw)
			oldParent.childrenChanged(node.doc.wrap(raw), false)
		}
		n.doc.adopt(node.doc, raw)
		if ref == nil {
			n.raw.AppendChild(raw)
		} else {
			n.raw.InsertBefore(raw, ref.raw)
		}
		n.childrenChanged(n.doc.wrap(raw), true)
	}
	return nil
}

// RemoveChild removes child from n.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.raw.Parent != n.raw {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}
	n.raw.RemoveChild(child.raw)
	n.childrenChanged(child, false)
	return child, nil
}

// ReplaceChild replaces old with node.
func (n *Node) ReplaceChild(node, old *Node) (*Node, error) {
	if old == nil || old.raw.Parent != n.raw {
		return nil, ErrNotFound("The node to be replaced is not a child of this node.")
	}
	if node == old {
		return old, nil
	}
	ref := old.NextSibling()
	if ref == node {
		ref = node.NextSibling()
	}
	if err := n.validateInsert(node, nil); err != nil {
		// A document element may be replaced by another element.
		if !(n.NodeType() == DocumentNode && old.IsElement() && node.IsElement()) {
			return nil, err
		}
	}
	if _, err := n.RemoveChild(old); err != nil {
		return nil, err
	}
	if err := n.InsertBefore(node, ref); err != nil {
		return nil, err
	}
	return old, nil
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if p := n.ParentNode(); p != nil {
		_, _ = p.RemoveChild(n)
	}
}

func (n *Node) validateInsert(node, ref *Node) error {
	switch n.NodeType() {
	case DocumentNode, DocumentFragmentNode, ElementNode:
	default:
		return ErrHierarchyRequest("This node type does not support children.")
	}
	if node == nil {
		return ErrHierarchyRequest("The new child is null.")
	}
	if node.Contains(n) {
		return ErrHierarchyRequest("The new child contains the parent.")
	}
	if ref != nil && ref.raw.Parent != n.raw {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	switch node.NodeType() {
	case DocumentNode:
		return ErrHierarchyRequest("Nodes of type '#document' may not be inserted.")
	case TextNode:
		if n.NodeType() == DocumentNode {
			return ErrHierarchyRequest("Nodes of type '#text' may not be inserted inside nodes of type '#document'.")
		}
	case DocumentTypeNode:
		if n.NodeType() != DocumentNode {
			return ErrHierarchyRequest("Doctypes may only be inserted into documents.")
		}
	case ElementNode:
		if n.NodeType() == DocumentNode {
			for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c != node.raw {
					return ErrHierarchyRequest("Only one element on document allowed.")
				}
			}
		}
	}
	return nil
}

func (n *Node) appendRaw(raw *html.Node) {
	n.raw.AppendChild(raw)
	n.childrenChanged(n.doc.wrap(raw), true)
}

func (n *Node) removeAllChildren() {
	for c := n.raw.FirstChild; c != nil; {
		next := c.NextSibling
		n.raw.RemoveChild(c)
		n.childrenChanged(n.doc.wrap(c), false)
		c = next
	}
}

// childrenChanged runs the insertion and removal steps that keep element
// state consistent with the tree.
func (n *Node) childrenChanged(child *Node, inserted bool) {
	if !inserted {
		clearModalFlags(child)
	}
	if sel := owningSelect(n); sel != nil {
		sel.resetSelectedness()
	}
	if inserted && child.IsElement() {
		if child.Is("select") {
			child.resetSelectedness()
		}
		descendants(child.raw, func(r *html.Node) bool {
			if r.Type == html.ElementNode && r.Namespace == "" && r.Data == "select" {
				child.doc.wrap(r).resetSelectedness()
			}
			return true
		})
	}
}

// owningSelect returns the select whose option list a child of n would be
// part of: n itself, or n's parent when n is an optgroup.
func owningSelect(n *Node) *Node {
	if n.Is("select") {
		return n
	}
	if n.Is("optgroup") {
		if p := n.ParentNode(); p.Is("select") {
			return p
		}
	}
	return nil
}

// CloneNode returns a parentless copy of n. Deep copies include the
// descendants. Option selectedness is copied along with the attributes.
// Document nodes cannot be cloned and yield nil.
func (n *Node) CloneNode(deep bool) *Node {
	if n.NodeType() == DocumentNode {
		return nil
	}
	c := n.doc.wrap(n.cloneRaw(n.raw, deep))
	c.fragment = n.fragment
	return c
}

func (n *Node) cloneRaw(r *html.Node, deep bool) *html.Node {
	c := &html.Node{
		Type:      r.Type,
		DataAtom:  r.DataAtom,
		Data:      r.Data,
		Namespace: r.Namespace,
		Attr:      append([]html.Attribute(nil), r.Attr...),
	}
	if src, ok := n.doc.nodes[r]; ok && src.option != nil {
		st := *src.option
		n.doc.wrap(c).option = &st
	}
	if deep {
		for child := r.FirstChild; child != nil; child = child.NextSibling {
			c.AppendChild(n.cloneRaw(child, true))
		}
	}
	return c
}
