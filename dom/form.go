package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type optionState struct {
	selectedness bool
	dirty        bool
}

func (n *Node) optionState() *optionState {
	if n.option == nil {
		n.option = &optionState{selectedness: n.HasAttribute("selected")}
	}
	return n.option
}

// optionSelect returns the select whose list of options contains n.
func (n *Node) optionSelect() *Node {
	p := n.ParentNode()
	if p == nil {
		return nil
	}
	if p.Is("select") {
		return p
	}
	if p.Is("optgroup") {
		if gp := p.ParentNode(); gp.Is("select") {
			return gp
		}
	}
	return nil
}

// OptionSelected returns the selectedness of an option.
func (n *Node) OptionSelected() bool {
	return n.optionState().selectedness
}

// SetOptionSelected sets selectedness and dirtiness, then asks the owning
// select for a reset.
func (n *Node) SetOptionSelected(selected bool) {
	st := n.optionState()
	st.selectedness = selected
	st.dirty = true
	if sel := n.optionSelect(); sel != nil {
		if selected && !sel.IsMultiple() {
			sel.deselectOthers(n)
		}
		sel.resetSelectedness()
	}
}

// OptionDisabled reports whether the option or its optgroup is disabled.
func (n *Node) OptionDisabled() bool {
	if n.HasAttribute("disabled") {
		return true
	}
	p := n.ParentNode()
	return p.Is("optgroup") && p.HasAttribute("disabled")
}

// OptionText returns the option text with whitespace stripped and
// collapsed, ignoring script descendants.
func (n *Node) OptionText() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(r *html.Node) {
		for c := r.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				if c.Data == "script" && (c.Namespace == "" || c.Namespace == "svg") {
					continue
				}
				walk(c)
			}
		}
	}
	walk(n.raw)
	return stripAndCollapse(sb.String())
}

// OptionValue returns the value attribute, falling back to the text.
func (n *Node) OptionValue() string {
	if v, ok := n.GetAttribute("value"); ok {
		return v
	}
	return n.OptionText()
}

// OptionLabel returns the label attribute, falling back to the text.
func (n *Node) OptionLabel() string {
	if v, ok := n.GetAttribute("label"); ok {
		return v
	}
	return n.OptionText()
}

// OptionIndex returns the index of the option in its select's list, or 0.
func (n *Node) OptionIndex() int {
	sel := n.optionSelect()
	if sel == nil {
		return 0
	}
	for i, o := range sel.optionList() {
		if o == n {
			return i
		}
	}
	return 0
}

// IsMultiple reports whether a select allows multiple selection.
func (n *Node) IsMultiple() bool {
	return n.HasAttribute("multiple")
}

// DisplaySize returns the select display size: the size attribute when it
// is a valid positive integer, else 4 for multiple selects and 1 otherwise.
func (n *Node) DisplaySize() int {
	if v, ok := n.GetAttribute("size"); ok {
		if size, ok := parseNonNegative(v); ok && size > 0 {
			return int(size)
		}
	}
	if n.IsMultiple() {
		return 4
	}
	return 1
}

func (n *Node) optionList() []*Node {
	var out []*Node
	for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Namespace != "" {
			continue
		}
		switch c.Data {
		case "option":
			out = append(out, n.doc.wrap(c))
		case "optgroup":
			for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
				if gc.Type == html.ElementNode && gc.Namespace == "" && gc.Data == "option" {
					out = append(out, n.doc.wrap(gc))
				}
			}
		}
	}
	return out
}

func (n *Node) deselectOthers(keep *Node) {
	for _, o := range n.optionList() {
		if o != keep {
			o.optionState().selectedness = false
		}
	}
}

// resetSelectedness runs the selectedness setting algorithm for a
// single-select with display size 1: exactly one option ends up selected
// when any is available.
func (n *Node) resetSelectedness() {
	if n.IsMultiple() || n.DisplaySize() != 1 {
		return
	}
	opts := n.optionList()
	var selected []*Node
	for _, o := range opts {
		if o.optionState().selectedness {
			selected = append(selected, o)
		}
	}
	switch {
	case len(selected) == 0:
		for _, o := range opts {
			if !o.OptionDisabled() {
				o.optionState().selectedness = true
				return
			}
		}
	case len(selected) > 1:
		for _, o := range selected[:len(selected)-1] {
			o.optionState().selectedness = false
		}
	}
}

// SelectedIndex returns the index of the first selected option, or -1.
func (n *Node) SelectedIndex() int {
	for i, o := range n.optionList() {
		if o.OptionSelected() {
			return i
		}
	}
	return -1
}

// SetSelectedIndex deselects all options and selects the one at index.
func (n *Node) SetSelectedIndex(index int) {
	for i, o := range n.optionList() {
		st := o.optionState()
		st.selectedness = i == index
		if i == index {
			st.dirty = true
		}
	}
}

// SelectValue returns the value of the first selected option, or "".
func (n *Node) SelectValue() string {
	for _, o := range n.optionList() {
		if o.OptionSelected() {
			return o.OptionValue()
		}
	}
	return ""
}

// SetSelectValue selects the first option whose value equals v and
// deselects every other option.
func (n *Node) SetSelectValue(v string) {
	matched := false
	for _, o := range n.optionList() {
		st := o.optionState()
		if !matched && o.OptionValue() == v {
			st.selectedness = true
			st.dirty = true
			matched = true
			continue
		}
		st.selectedness = false
	}
}

// SelectType returns "select-one" or "select-multiple".
func (n *Node) SelectType() string {
	if n.IsMultiple() {
		return "select-multiple"
	}
	return "select-one"
}

// SelectedOptions returns the selected options in tree order.
func (n *Node) SelectedOptions() *HTMLCollection {
	return &HTMLCollection{
		root: n,
		collect: func(root *Node) []*Node {
			var out []*Node
			for _, o := range root.optionList() {
				if o.OptionSelected() {
					out = append(out, o)
				}
			}
			return out
		},
	}
}

// OptionsCollection is the HTMLOptionsCollection of a select element.
type OptionsCollection struct {
	*HTMLCollection
	sel *Node
}

// Options returns the live options collection of a select element.
func (n *Node) Options() *OptionsCollection {
	return &OptionsCollection{
		HTMLCollection: &HTMLCollection{
			root:    n,
			collect: func(root *Node) []*Node { return root.optionList() },
		},
		sel: n,
	}
}

// Select returns the select element the collection is rooted at.
func (oc *OptionsCollection) Select() *Node {
	return oc.sel
}

// SetLength truncates the collection or appends blank options. Values
// above the profile's limit are ignored.
func (oc *OptionsCollection) SetLength(length uint32) {
	if max := oc.sel.doc.profile.Quirks.OptionsMaxLength; max > 0 && int64(length) > int64(max) {
		return
	}
	opts := oc.Elements()
	current := len(opts)
	switch {
	case int(length) > current:
		for i := current; i < int(length); i++ {
			_, _ = oc.sel.AppendChild(oc.sel.doc.CreateElement("option"))
		}
	case int(length) < current:
		for _, o := range opts[length:] {
			o.Remove()
		}
	}
}

// Add inserts element before the before node, or at the end when before is
// nil.
func (oc *OptionsCollection) Add(element, before *Node) error {
	if element.Contains(oc.sel) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}
	if before != nil && (before == oc.sel || !oc.sel.Contains(before)) {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	if element == before {
		return nil
	}
	parent := oc.sel
	if before != nil {
		parent = before.ParentNode()
	}
	return parent.InsertBefore(element, before)
}

// AddAt inserts element before the option at index, or at the end when no
// option has that index.
func (oc *OptionsCollection) AddAt(element *Node, index int) error {
	return oc.Add(element, oc.Item(index))
}

// Remove removes the option at index if there is one.
func (oc *OptionsCollection) Remove(index int) {
	if o := oc.Item(index); o != nil {
		o.Remove()
	}
}

// Set stores option at index. A nil option removes the option at index.
// Past the end the collection is padded with blank options so that the new
// option lands at index.
func (oc *OptionsCollection) Set(index uint32, option *Node) error {
	if option == nil {
		oc.Remove(int(index))
		return nil
	}
	length := oc.Length()
	if int64(index) >= int64(length) {
		for i := length; i < int(index); i++ {
			if _, err := oc.sel.AppendChild(oc.sel.doc.CreateElement("option")); err != nil {
				return err
			}
		}
		_, err := oc.sel.AppendChild(option)
		return err
	}
	old := oc.Item(int(index))
	_, err := old.ParentNode().ReplaceChild(option, old)
	return err
}

// SelectedIndex returns the select's selected index.
func (oc *OptionsCollection) SelectedIndex() int {
	return oc.sel.SelectedIndex()
}

// SetSelectedIndex sets the select's selected index.
func (oc *OptionsCollection) SetSelectedIndex(index int) {
	oc.sel.SetSelectedIndex(index)
}

// parseNonNegative implements the rules for parsing non-negative integers.
func parseNonNegative(s string) (int64, bool) {
	v, ok := parseInteger(s)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// parseInteger implements the rules for parsing integers: leading ASCII
// whitespace, an optional sign, then at least one digit. Trailing garbage
// is ignored.
func parseInteger(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\f\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// Overflowing values are out of every reflected range.
		v = 1 << 62
	}
	if neg {
		v = -v
	}
	return v, true
}
