package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// TagName returns the qualified name, uppercased for HTML elements.
func (n *Node) TagName() string {
	if !n.IsElement() {
		return ""
	}
	if n.raw.Namespace == "" {
		return strings.ToUpper(n.raw.Data)
	}
	return n.raw.Data
}

// LocalName returns the element's local name.
func (n *Node) LocalName() string {
	if !n.IsElement() {
		return ""
	}
	return n.raw.Data
}

// NamespaceURI returns the element namespace URI.
func (n *Node) NamespaceURI() string {
	if !n.IsElement() {
		return ""
	}
	switch n.raw.Namespace {
	case "":
		return HTMLNamespace
	case "svg":
		return SVGNamespace
	case "math":
		return MathMLNamespace
	}
	return n.raw.Namespace
}

func (n *Node) attrName(name string) string {
	if n.IsHTMLElement() {
		return strings.ToLower(name)
	}
	return name
}

func rawAttr(r *html.Node, key string) string {
	for _, a := range r.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// GetAttribute returns the value of the named attribute.
func (n *Node) GetAttribute(name string) (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	key := n.attrName(name)
	for _, a := range n.raw.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttributeOr returns the named attribute or def when it is absent.
func (n *Node) AttributeOr(name, def string) string {
	if v, ok := n.GetAttribute(name); ok {
		return v
	}
	return def
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets the named attribute, appending it when new.
func (n *Node) SetAttribute(name, value string) error {
	if !n.IsElement() {
		return nil
	}
	if !isValidName(name) {
		return ErrInvalidCharacter("'" + name + "' is not a valid attribute name.")
	}
	key := n.attrName(name)
	for i := range n.raw.Attr {
		if n.raw.Attr[i].Key == key {
			n.raw.Attr[i].Val = value
			n.attributeChanged(key, &value)
			return nil
		}
	}
	n.raw.Attr = append(n.raw.Attr, html.Attribute{Key: key, Val: value})
	n.attributeChanged(key, &value)
	return nil
}

// RemoveAttribute removes the named attribute if present.
func (n *Node) RemoveAttribute(name string) {
	if !n.IsElement() {
		return
	}
	key := n.attrName(name)
	for i, a := range n.raw.Attr {
		if a.Key == key {
			n.raw.Attr = append(n.raw.Attr[:i], n.raw.Attr[i+1:]...)
			n.attributeChanged(key, nil)
			return
		}
	}
}

// ToggleAttribute adds or removes a boolean attribute so that its presence
// matches on.
func (n *Node) ToggleAttribute(name string, on bool) {
	if on {
		if !n.HasAttribute(name) {
			_ = n.SetAttribute(name, "")
		}
		return
	}
	n.RemoveAttribute(name)
}

// Attributes returns a copy of the attribute list in source order.
func (n *Node) Attributes() []html.Attribute {
	if !n.IsElement() {
		return nil
	}
	return append([]html.Attribute(nil), n.raw.Attr...)
}

// attributeChanged runs the attribute change steps of the elements that
// have them. value is nil on removal.
func (n *Node) attributeChanged(key string, value *string) {
	switch {
	case key == "selected" && n.Is("option"):
		st := n.optionState()
		if !st.dirty {
			st.selectedness = value != nil
			if sel := n.optionSelect(); sel != nil {
				if value != nil && !sel.IsMultiple() {
					sel.deselectOthers(n)
				}
				sel.resetSelectedness()
			}
		}
	case key == "open" && n.Is("dialog"):
		if value == nil {
			n.dialogState().modal = false
		}
	}
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.AttributeOr("id", "")
}

// ClassName returns the class attribute.
func (n *Node) ClassName() string {
	return n.AttributeOr("class", "")
}

// ClassList returns the class tokens in order without duplicates.
func (n *Node) ClassList() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range strings.FieldsFunc(n.ClassName(), isASCIIWhitespace) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// HasClass reports whether the class attribute contains token.
func (n *Node) HasClass(token string) bool {
	for _, c := range strings.FieldsFunc(n.ClassName(), isASCIIWhitespace) {
		if c == token {
			return true
		}
	}
	return false
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	if n.IsElement() && isRawTextElement(n.raw) {
		return rawText(n.raw)
	}
	var sb strings.Builder
	for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// SetInnerHTML replaces the children of n with the result of parsing src
// as a fragment in the context of n.
func (n *Node) SetInnerHTML(src string) error {
	ctx := n.raw
	if !n.IsElement() {
		ctx = &html.Node{Type: html.ElementNode, Data: "body"}
	}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return ErrSyntax(err.Error())
	}
	n.removeAllChildren()
	for _, raw := range nodes {
		n.appendRaw(raw)
	}
	return nil
}

// OuterHTML serializes n including its own tag.
func (n *Node) OuterHTML() string {
	var sb strings.Builder
	_ = html.Render(&sb, n.raw)
	return sb.String()
}

func isRawTextElement(r *html.Node) bool {
	if r.Namespace != "" {
		return false
	}
	switch r.Data {
	case "script", "style", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}

// Children returns the live collection of element children.
func (n *Node) Children() *HTMLCollection {
	return newChildrenCollection(n)
}

// GetElementsByTagName returns a live collection of descendants matching
// qualifiedName: "*" matches all, HTML elements match case-insensitively.
func (n *Node) GetElementsByTagName(qualifiedName string) *HTMLCollection {
	lower := strings.ToLower(qualifiedName)
	return newFilteredCollection(n, func(el *Node) bool {
		if qualifiedName == "*" {
			return true
		}
		if el.IsHTMLElement() {
			return el.raw.Data == lower
		}
		return el.raw.Data == qualifiedName
	})
}

// GetElementsByClassName returns a live collection of descendants carrying
// every class in classNames. An empty list matches nothing.
func (n *Node) GetElementsByClassName(classNames string) *HTMLCollection {
	classes := strings.FieldsFunc(classNames, isASCIIWhitespace)
	return newFilteredCollection(n, func(el *Node) bool {
		if len(classes) == 0 {
			return false
		}
		for _, c := range classes {
			if !el.HasClass(c) {
				return false
			}
		}
		return true
	})
}
