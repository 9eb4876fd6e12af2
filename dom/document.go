package dom

import (
	"strings"

	"github.com/chrisuehlinger/htmlemu/browser"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an HTML document.
type Document struct {
	node       *Node
	nodes      map[*html.Node]*Node
	url        string
	readyState string
	profile    *browser.Profile
	dispatcher EventDispatcher
	all        *AllCollection
}

// Option configures a Document.
type Option func(*Document)

// WithProfile sets the browser profile whose quirks the document follows.
func WithProfile(p *browser.Profile) Option {
	return func(d *Document) {
		d.profile = p
	}
}

// WithURL sets the document URL.
func WithURL(url string) Option {
	return func(d *Document) {
		d.url = url
	}
}

func newDocument(root *html.Node, opts ...Option) *Document {
	d := &Document{
		nodes:      make(map[*html.Node]*Node),
		url:        "about:blank",
		readyState: "complete",
		profile:    browser.Default(),
	}
	d.node = &Node{raw: root, doc: d}
	d.nodes[root] = d.node
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDocument returns an empty document with no children.
func NewDocument(opts ...Option) *Document {
	return newDocument(&html.Node{Type: html.DocumentNode}, opts...)
}

// ParseHTML parses src with the HTML5 parsing algorithm.
func ParseHTML(src string, opts ...Option) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	d := newDocument(root, opts...)
	descendants(root, func(r *html.Node) bool {
		if r.Namespace == "" && r.Data == "select" {
			d.wrap(r).resetSelectedness()
		}
		return true
	})
	return d, nil
}

func (d *Document) wrap(raw *html.Node) *Node {
	if raw == nil {
		return nil
	}
	if n, ok := d.nodes[raw]; ok {
		return n
	}
	n := &Node{raw: raw, doc: d}
	d.nodes[raw] = n
	return n
}

// adopt moves the subtree rooted at raw from another document into d.
func (d *Document) adopt(from *Document, raw *html.Node) {
	if from == d {
		return
	}
	var move func(*html.Node)
	move = func(r *html.Node) {
		n, ok := from.nodes[r]
		if ok {
			delete(from.nodes, r)
			n.doc = d
			d.nodes[r] = n
		}
		for c := r.FirstChild; c != nil; c = c.NextSibling {
			move(c)
		}
	}
	move(raw)
}

// AsNode returns the document node.
func (d *Document) AsNode() *Node {
	return d.node
}

// Wrap returns the node for a raw parser node belonging to d.
func (d *Document) Wrap(raw *html.Node) *Node {
	return d.wrap(raw)
}

// Profile returns the browser profile of the document.
func (d *Document) Profile() *browser.Profile {
	return d.profile
}

// URL returns the document URL.
func (d *Document) URL() string {
	return d.url
}

// SetURL sets the document URL.
func (d *Document) SetURL(url string) {
	d.url = url
}

// ReadyState returns "loading", "interactive" or "complete".
func (d *Document) ReadyState() string {
	return d.readyState
}

// SetReadyState is called by the page loader as loading progresses.
func (d *Document) SetReadyState(state string) {
	d.readyState = state
}

// SetEventDispatcher installs the bridge used to fire events from DOM
// algorithms.
func (d *Document) SetEventDispatcher(ed EventDispatcher) {
	d.dispatcher = ed
}

// Doctype returns the doctype node, or nil.
func (d *Document) Doctype() *Node {
	for c := d.node.raw.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			return d.wrap(c)
		}
	}
	return nil
}

// DocumentElement returns the root element, or nil.
func (d *Document) DocumentElement() *Node {
	for c := d.node.raw.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

func (d *Document) htmlChild(name string) *Node {
	root := d.DocumentElement()
	if !root.Is("html") {
		return nil
	}
	for c := root.raw.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Namespace == "" && c.Data == name {
			return d.wrap(c)
		}
	}
	return nil
}

// Head returns the head element, or nil.
func (d *Document) Head() *Node {
	return d.htmlChild("head")
}

// Body returns the body (or frameset) element, or nil.
func (d *Document) Body() *Node {
	if b := d.htmlChild("body"); b != nil {
		return b
	}
	return d.htmlChild("frameset")
}

func (d *Document) titleElement() *Node {
	var found *html.Node
	descendants(d.node.raw, func(r *html.Node) bool {
		if r.Data == "title" && (r.Namespace == "" || r.Namespace == "svg") {
			found = r
			return false
		}
		return true
	})
	return d.wrap(found)
}

// Title returns the text of the first title element with whitespace
// stripped and collapsed.
func (d *Document) Title() string {
	t := d.titleElement()
	if t == nil {
		return ""
	}
	return stripAndCollapse(t.TextContent())
}

// SetTitle replaces the text of the title element, creating one in head
// when missing. Without a head nothing happens.
func (d *Document) SetTitle(title string) {
	t := d.titleElement()
	if t == nil {
		head := d.Head()
		if head == nil {
			return
		}
		t = d.CreateElement("title")
		_, _ = head.AppendChild(t)
	}
	t.SetTextContent(title)
}

// CreateElement creates an HTML element. localName is lowercased.
func (d *Document) CreateElement(localName string) *Node {
	name := strings.ToLower(localName)
	raw := &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
	return d.wrap(raw)
}

// CreateElementChecked validates localName before creating the element.
func (d *Document) CreateElementChecked(localName string) (*Node, error) {
	if !isValidName(localName) {
		return nil, ErrInvalidCharacter("The tag name provided ('" + localName + "') is not a valid name.")
	}
	return d.CreateElement(localName), nil
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(data string) *Node {
	return d.wrap(&html.Node{Type: html.TextNode, Data: data})
}

// CreateComment creates a comment node.
func (d *Document) CreateComment(data string) *Node {
	return d.wrap(&html.Node{Type: html.CommentNode, Data: data})
}

// CreateDocumentFragment creates an empty fragment.
func (d *Document) CreateDocumentFragment() *Node {
	n := d.wrap(&html.Node{Type: html.DocumentNode})
	n.fragment = true
	return n
}

// GetElementByID returns the first element in tree order with the id.
func (d *Document) GetElementByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	descendants(d.node.raw, func(r *html.Node) bool {
		if rawAttr(r, "id") == id {
			found = r
			return false
		}
		return true
	})
	return d.wrap(found)
}

// GetElementsByTagName returns a live collection for qualifiedName.
func (d *Document) GetElementsByTagName(qualifiedName string) *HTMLCollection {
	return d.node.GetElementsByTagName(qualifiedName)
}

// GetElementsByClassName returns a live collection of elements carrying all
// the given classes.
func (d *Document) GetElementsByClassName(classNames string) *HTMLCollection {
	return d.node.GetElementsByClassName(classNames)
}

// GetElementsByName returns a live collection of HTML elements whose name
// attribute equals name.
func (d *Document) GetElementsByName(name string) *HTMLCollection {
	return newFilteredCollection(d.node, func(n *Node) bool {
		v, ok := n.GetAttribute("name")
		return ok && v == name && n.IsHTMLElement()
	})
}

// Forms returns the live collection of form elements.
func (d *Document) Forms() *HTMLCollection {
	return newFilteredCollection(d.node, func(n *Node) bool { return n.Is("form") })
}

// Images returns the live collection of img elements.
func (d *Document) Images() *HTMLCollection {
	return newFilteredCollection(d.node, func(n *Node) bool { return n.Is("img") })
}

// Links returns a and area elements with an href attribute.
func (d *Document) Links() *HTMLCollection {
	return newFilteredCollection(d.node, func(n *Node) bool {
		return (n.Is("a") || n.Is("area")) && n.HasAttribute("href")
	})
}

// Anchors returns a elements with a name attribute.
func (d *Document) Anchors() *HTMLCollection {
	return newFilteredCollection(d.node, func(n *Node) bool {
		return n.Is("a") && n.HasAttribute("name")
	})
}

// Scripts returns the live collection of script elements.
func (d *Document) Scripts() *HTMLCollection {
	return newFilteredCollection(d.node, func(n *Node) bool { return n.Is("script") })
}

// All returns document.all.
func (d *Document) All() *AllCollection {
	if d.all == nil {
		d.all = &AllCollection{doc: d}
	}
	return d.all
}

// QuerySelector returns the first element matching selectors.
func (d *Document) QuerySelector(selectors string) (*Node, error) {
	return d.node.QuerySelector(selectors)
}

// QuerySelectorAll returns all elements matching selectors.
func (d *Document) QuerySelectorAll(selectors string) ([]*Node, error) {
	return d.node.QuerySelectorAll(selectors)
}

// isValidName is a permissive check of the XML Name production sufficient
// for createElement.
func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == ':' || r == '_' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r > 0x7f:
		case i > 0 && (r == '-' || r == '.' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
