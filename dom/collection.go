package dom

import (
	"golang.org/x/net/html"
)

// HTMLCollection is a live, ordered collection of elements. Every query
// walks the tree, so the collection always reflects the current DOM.
type HTMLCollection struct {
	root    *Node
	collect func(root *Node) []*Node
}

func newFilteredCollection(root *Node, filter func(*Node) bool) *HTMLCollection {
	return &HTMLCollection{
		root: root,
		collect: func(root *Node) []*Node {
			var out []*Node
			descendants(root.raw, func(r *html.Node) bool {
				el := root.doc.wrap(r)
				if filter(el) {
					out = append(out, el)
				}
				return true
			})
			return out
		},
	}
}

func newChildrenCollection(root *Node) *HTMLCollection {
	return &HTMLCollection{
		root: root,
		collect: func(root *Node) []*Node {
			return root.ChildElements()
		},
	}
}

// NewStaticCollection returns a collection over a fixed element list. It is
// used for the multi-element results of document.all.namedItem.
func NewStaticCollection(root *Node, elements []*Node) *HTMLCollection {
	snapshot := append([]*Node(nil), elements...)
	return &HTMLCollection{
		root:    root,
		collect: func(*Node) []*Node { return snapshot },
	}
}

// Root returns the node the collection is rooted at.
func (c *HTMLCollection) Root() *Node {
	return c.root
}

// Elements returns the current members in tree order.
func (c *HTMLCollection) Elements() []*Node {
	return c.collect(c.root)
}

// Length returns the number of members.
func (c *HTMLCollection) Length() int {
	return len(c.Elements())
}

// Item returns the member at index, or nil.
func (c *HTMLCollection) Item(index int) *Node {
	els := c.Elements()
	if index < 0 || index >= len(els) {
		return nil
	}
	return els[index]
}

// NamedItem returns the first member whose id is name, or which is an HTML
// element whose name attribute is name. The empty string matches nothing.
func (c *HTMLCollection) NamedItem(name string) *Node {
	if name == "" {
		return nil
	}
	for _, el := range c.Elements() {
		if el.ID() == name {
			return el
		}
		if el.IsHTMLElement() {
			if v, ok := el.GetAttribute("name"); ok && v == name {
				return el
			}
		}
	}
	return nil
}

// SupportedNames returns the property names exposed for named access: for
// each member in tree order its id, then its name if it is an HTML element,
// skipping empty and repeated names.
func (c *HTMLCollection) SupportedNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	for _, el := range c.Elements() {
		add(el.ID())
		if el.IsHTMLElement() {
			add(el.AttributeOr("name", ""))
		}
	}
	return names
}

// AllCollection is document.all: every element of the document in tree
// order.
//
// The script binding is a callable object. Unlike browsers, where
// document.all is falsy, has typeof "undefined" and compares loosely equal
// to undefined, it is truthy, has typeof "function" and
// document.all == undefined is false. goja has no [[IsHTMLDDA]] hook.
type AllCollection struct {
	doc *Document
}

// allNamedElements are the elements whose name attribute participates in
// document.all named lookup.
var allNamedElements = map[string]bool{
	"a": true, "button": true, "embed": true, "form": true, "frame": true,
	"frameset": true, "iframe": true, "img": true, "input": true, "map": true,
	"meta": true, "object": true, "select": true, "textarea": true,
}

// Elements returns all elements in tree order.
func (a *AllCollection) Elements() []*Node {
	var out []*Node
	descendants(a.doc.node.raw, func(r *html.Node) bool {
		out = append(out, a.doc.wrap(r))
		return true
	})
	return out
}

// Length returns the number of elements in the document.
func (a *AllCollection) Length() int {
	n := 0
	descendants(a.doc.node.raw, func(*html.Node) bool {
		n++
		return true
	})
	return n
}

// Item returns the element at index, or nil.
func (a *AllCollection) Item(index int) *Node {
	if index < 0 {
		return nil
	}
	var found *html.Node
	i := 0
	descendants(a.doc.node.raw, func(r *html.Node) bool {
		if i == index {
			found = r
			return false
		}
		i++
		return true
	})
	return a.doc.wrap(found)
}

func (a *AllCollection) isNamed(el *Node, name string) bool {
	if el.ID() == name {
		return true
	}
	if el.IsHTMLElement() && allNamedElements[el.raw.Data] {
		v, ok := el.GetAttribute("name")
		return ok && v == name
	}
	return false
}

// NamedItems returns every element whose id is name, or whose name
// attribute is name for the elements that support it.
func (a *AllCollection) NamedItems(name string) []*Node {
	if name == "" {
		return nil
	}
	var out []*Node
	for _, el := range a.Elements() {
		if a.isNamed(el, name) {
			out = append(out, el)
		}
	}
	return out
}

// SupportedNames returns the names exposed for named access in tree order.
func (a *AllCollection) SupportedNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	for _, el := range a.Elements() {
		add(el.ID())
		if el.IsHTMLElement() && allNamedElements[el.raw.Data] {
			add(el.AttributeOr("name", ""))
		}
	}
	return names
}
