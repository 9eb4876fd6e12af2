package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Node is a position in a document tree.
type Node struct {
	raw      *html.Node
	doc      *Document
	fragment bool

	// Per-element state that has no content attribute.
	option *optionState
	dialog *dialogState
}

// Raw returns the underlying parser node.
func (n *Node) Raw() *html.Node {
	return n.raw
}

// OwnerDocument returns the document the node belongs to. For the document
// node itself it returns nil.
func (n *Node) OwnerDocument() *Document {
	if n == n.doc.node {
		return nil
	}
	return n.doc
}

// Document returns the node document, including for the document node.
func (n *Node) Document() *Document {
	return n.doc
}

// NodeType returns the DOM node type.
func (n *Node) NodeType() NodeType {
	switch n.raw.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	case html.CommentNode:
		return CommentNode
	case html.DoctypeNode:
		return DocumentTypeNode
	case html.DocumentNode:
		if n.fragment {
			return DocumentFragmentNode
		}
		return DocumentNode
	}
	return 0
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.raw.Type == html.ElementNode
}

// IsHTMLElement reports whether n is an element in the HTML namespace.
func (n *Node) IsHTMLElement() bool {
	return n.IsElement() && n.raw.Namespace == ""
}

// Is reports whether n is an HTML element with the given local name.
func (n *Node) Is(localName string) bool {
	return n.IsHTMLElement() && n.raw.Data == localName
}

// NodeName returns the node name: the qualified tag name (uppercased for
// HTML elements) or one of the #-prefixed names.
func (n *Node) NodeName() string {
	switch n.NodeType() {
	case ElementNode:
		return n.TagName()
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case DocumentNode:
		return "#document"
	case DocumentFragmentNode:
		return "#document-fragment"
	case DocumentTypeNode:
		return n.raw.Data
	}
	return ""
}

// NodeValue returns the character data of text and comment nodes. ok is
// false for node types whose nodeValue is null.
func (n *Node) NodeValue() (value string, ok bool) {
	switch n.raw.Type {
	case html.TextNode, html.CommentNode:
		return n.raw.Data, true
	}
	return "", false
}

// SetNodeValue replaces character data; other node types ignore it.
func (n *Node) SetNodeValue(value string) {
	switch n.raw.Type {
	case html.TextNode, html.CommentNode:
		n.raw.Data = value
	}
}

// ParentNode returns the parent, or nil.
func (n *Node) ParentNode() *Node {
	return n.doc.wrap(n.raw.Parent)
}

// ParentElement returns the parent if it is an element.
func (n *Node) ParentElement() *Node {
	p := n.ParentNode()
	if p.IsElement() {
		return p
	}
	return nil
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	return n.doc.wrap(n.raw.FirstChild)
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	return n.doc.wrap(n.raw.LastChild)
}

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node {
	return n.doc.wrap(n.raw.NextSibling)
}

// PreviousSibling returns the previous sibling, or nil.
func (n *Node) PreviousSibling() *Node {
	return n.doc.wrap(n.raw.PrevSibling)
}

// HasChildNodes reports whether n has children.
func (n *Node) HasChildNodes() bool {
	return n.raw.FirstChild != nil
}

// ChildNodes returns a snapshot of the children.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, n.doc.wrap(c))
	}
	return out
}

// ChildElements returns a snapshot of the element children.
func (n *Node) ChildElements() []*Node {
	var out []*Node
	for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, n.doc.wrap(c))
		}
	}
	return out
}

// Contains reports whether other is an inclusive descendant of n.
func (n *Node) Contains(other *Node) bool {
	if other == nil {
		return false
	}
	for r := other.raw; r != nil; r = r.Parent {
		if r == n.raw {
			return true
		}
	}
	return false
}

// IsConnected reports whether n is in its document's tree.
func (n *Node) IsConnected() bool {
	return n.doc.node.Contains(n)
}

// TextContent returns the concatenated text of n's descendants for
// elements and fragments, the data for character data nodes, and the empty
// string for documents and doctypes.
func (n *Node) TextContent() string {
	switch n.raw.Type {
	case html.TextNode, html.CommentNode:
		return n.raw.Data
	case html.ElementNode:
		return rawText(n.raw)
	case html.DocumentNode:
		if n.fragment {
			return rawText(n.raw)
		}
	}
	return ""
}

// SetTextContent replaces the children of n with a single text node, or
// sets the data of a character data node.
func (n *Node) SetTextContent(text string) {
	switch n.raw.Type {
	case html.TextNode, html.CommentNode:
		n.raw.Data = text
		return
	case html.DocumentNode:
		if !n.fragment {
			return
		}
	case html.DoctypeNode:
		return
	}
	n.removeAllChildren()
	if text != "" {
		n.appendRaw(&html.Node{Type: html.TextNode, Data: text})
	}
}

func rawText(r *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(r)
	return sb.String()
}

// stripAndCollapse implements "strip and collapse ASCII whitespace".
func stripAndCollapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, isASCIIWhitespace), " ")
}

func isASCIIWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

// descendants calls fn for each element below root in tree order until fn
// returns false.
func descendants(root *html.Node, fn func(*html.Node) bool) bool {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if !fn(c) {
			return false
		}
		if !descendants(c, fn) {
			return false
		}
	}
	return true
}
