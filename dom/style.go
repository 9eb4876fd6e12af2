package dom

import (
	"strings"

	"github.com/aymerick/douceur/parser"
)

// StyleDeclaration is the inline style of an element. Reads parse the
// style attribute; writes serialize back into it.
type StyleDeclaration struct {
	el *Node
}

type declaration struct {
	property  string
	value     string
	important bool
}

// Style returns the inline style declaration of an element.
func (n *Node) Style() *StyleDeclaration {
	return &StyleDeclaration{el: n}
}

func (s *StyleDeclaration) parse() []declaration {
	text, ok := s.el.GetAttribute("style")
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	// The parser drops the value of a final declaration without ';'.
	if !strings.HasSuffix(strings.TrimSpace(text), ";") {
		text += ";"
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return nil
	}
	var out []declaration
	index := make(map[string]int)
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		if prop == "" {
			continue
		}
		nd := declaration{property: prop, value: strings.TrimSpace(d.Value), important: d.Important}
		if i, ok := index[prop]; ok {
			out[i] = nd
			continue
		}
		index[prop] = len(out)
		out = append(out, nd)
	}
	return out
}

func (s *StyleDeclaration) write(decls []declaration) {
	if len(decls) == 0 {
		if s.el.HasAttribute("style") {
			_ = s.el.SetAttribute("style", "")
		}
		return
	}
	_ = s.el.SetAttribute("style", serializeDeclarations(decls))
}

func serializeDeclarations(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		p := d.property + ": " + d.value
		if d.important {
			p += " !important"
		}
		parts = append(parts, p+";")
	}
	return strings.Join(parts, " ")
}

// CSSText returns the serialized declarations.
func (s *StyleDeclaration) CSSText() string {
	return serializeDeclarations(s.parse())
}

// SetCSSText replaces the declarations.
func (s *StyleDeclaration) SetCSSText(text string) {
	_ = s.el.SetAttribute("style", text)
	s.write(s.parse())
}

// Length returns the number of declarations.
func (s *StyleDeclaration) Length() int {
	return len(s.parse())
}

// Item returns the property name at index, or "".
func (s *StyleDeclaration) Item(index int) string {
	decls := s.parse()
	if index < 0 || index >= len(decls) {
		return ""
	}
	return decls[index].property
}

// GetPropertyValue returns the value of property, or "".
func (s *StyleDeclaration) GetPropertyValue(property string) string {
	property = strings.ToLower(property)
	for _, d := range s.parse() {
		if d.property == property {
			return d.value
		}
	}
	return ""
}

// GetPropertyPriority returns "important" or "".
func (s *StyleDeclaration) GetPropertyPriority(property string) string {
	property = strings.ToLower(property)
	for _, d := range s.parse() {
		if d.property == property && d.important {
			return "important"
		}
	}
	return ""
}

// SetProperty sets property; an empty value removes it.
func (s *StyleDeclaration) SetProperty(property, value, priority string) {
	property = strings.ToLower(strings.TrimSpace(property))
	if property == "" {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		s.RemoveProperty(property)
		return
	}
	important := strings.EqualFold(priority, "important")
	decls := s.parse()
	for i := range decls {
		if decls[i].property == property {
			decls[i].value = value
			decls[i].important = important
			s.write(decls)
			return
		}
	}
	s.write(append(decls, declaration{property: property, value: value, important: important}))
}

// RemoveProperty removes property and returns its previous value.
func (s *StyleDeclaration) RemoveProperty(property string) string {
	property = strings.ToLower(property)
	decls := s.parse()
	for i, d := range decls {
		if d.property == property {
			s.write(append(decls[:i], decls[i+1:]...))
			return d.value
		}
	}
	return ""
}

// CSSPropertyName converts a camel-cased IDL name such as backgroundColor
// to its CSS form background-color. cssFloat maps to float.
func CSSPropertyName(idl string) string {
	if idl == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for _, r := range idl {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
