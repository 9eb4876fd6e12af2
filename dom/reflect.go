package dom

import (
	"strconv"
	"strings"
)

// ReflectKind selects the conversion rules of a reflected attribute.
type ReflectKind int

const (
	ReflectString ReflectKind = iota
	ReflectBool
	ReflectLong
	ReflectUnsignedLong
	ReflectEnum
)

// Reflect describes an IDL attribute that reflects a content attribute.
type Reflect struct {
	Property  string
	Attribute string
	Kind      ReflectKind

	// Default is returned by numeric getters when the attribute is missing
	// or invalid.
	Default int64
	// Min and Max clamp unsigned long values when Max is non-zero. With
	// only Min set, values below Min fall back to Default.
	Min, Max int64

	// Keywords, Missing and Invalid define an enumerated attribute. An
	// empty Invalid means invalid values map to Missing.
	Keywords []string
	Missing  string
	Invalid  string
}

func str(prop, attr string) Reflect {
	return Reflect{Property: prop, Attribute: attr, Kind: ReflectString}
}

func boolean(prop, attr string) Reflect {
	return Reflect{Property: prop, Attribute: attr, Kind: ReflectBool}
}

func ulong(prop, attr string, def int64) Reflect {
	return Reflect{Property: prop, Attribute: attr, Kind: ReflectUnsignedLong, Default: def}
}

func clamped(prop, attr string, def, min, max int64) Reflect {
	return Reflect{Property: prop, Attribute: attr, Kind: ReflectUnsignedLong, Default: def, Min: min, Max: max}
}

func long(prop, attr string, def int64) Reflect {
	return Reflect{Property: prop, Attribute: attr, Kind: ReflectLong, Default: def}
}

func enum(prop, attr, missing, invalid string, keywords ...string) Reflect {
	return Reflect{Property: prop, Attribute: attr, Kind: ReflectEnum, Missing: missing, Invalid: invalid, Keywords: keywords}
}

var cellHAlign = []Reflect{
	str("align", "align"), str("ch", "char"), str("chOff", "charoff"), str("vAlign", "valign"),
}

var reflections = map[string][]Reflect{
	"HTMLElement": {
		str("title", "title"), str("lang", "lang"), str("accessKey", "accesskey"),
		enum("dir", "dir", "", "", "ltr", "rtl", "auto"),
		boolean("hidden", "hidden"), boolean("inert", "inert"),
	},
	"HTMLTableCellElement": append([]Reflect{
		boolean("noWrap", "nowrap"),
		clamped("colSpan", "colspan", 1, 1, 1000),
		clamped("rowSpan", "rowspan", 1, 0, 65534),
		str("abbr", "abbr"), str("axis", "axis"), str("headers", "headers"),
		str("scope", "scope"), str("bgColor", "bgcolor"),
		str("width", "width"), str("height", "height"),
	}, cellHAlign...),
	"HTMLTableRowElement": append([]Reflect{str("bgColor", "bgcolor")}, cellHAlign...),
	"HTMLTableSectionElement": cellHAlign,
	"HTMLTableElement": {
		str("align", "align"), str("border", "border"), str("frame", "frame"),
		str("rules", "rules"), str("summary", "summary"), str("width", "width"),
		str("bgColor", "bgcolor"), str("cellPadding", "cellpadding"), str("cellSpacing", "cellspacing"),
	},
	"HTMLDialogElement": {boolean("open", "open")},
	"HTMLDetailsElement": {boolean("open", "open"), str("name", "name")},
	"HTMLSelectElement": {
		str("name", "name"), boolean("multiple", "multiple"), boolean("disabled", "disabled"),
		boolean("required", "required"), boolean("autofocus", "autofocus"), ulong("size", "size", 0),
	},
	"HTMLOptionElement": {boolean("disabled", "disabled"), boolean("defaultSelected", "selected")},
	"HTMLOptGroupElement": {boolean("disabled", "disabled"), str("label", "label")},
	"HTMLInputElement": {
		str("name", "name"), boolean("disabled", "disabled"), boolean("readOnly", "readonly"),
		boolean("required", "required"), boolean("autofocus", "autofocus"), boolean("multiple", "multiple"),
		boolean("defaultChecked", "checked"), str("defaultValue", "value"),
		str("placeholder", "placeholder"), str("alt", "alt"), str("src", "src"),
		str("accept", "accept"), str("pattern", "pattern"), str("min", "min"), str("max", "max"), str("step", "step"),
	},
	"HTMLButtonElement": {
		str("name", "name"), str("value", "value"), boolean("disabled", "disabled"), boolean("autofocus", "autofocus"),
		enum("type", "type", "submit", "submit", "submit", "reset", "button"),
	},
	"HTMLTextAreaElement": {
		str("name", "name"), boolean("disabled", "disabled"), boolean("readOnly", "readonly"),
		boolean("required", "required"), str("placeholder", "placeholder"),
		clamped("rows", "rows", 2, 1, 0), clamped("cols", "cols", 20, 1, 0),
	},
	"HTMLAnchorElement": {
		str("name", "name"), str("target", "target"), str("rel", "rel"), str("hreflang", "hreflang"),
		str("type", "type"), str("download", "download"), str("charset", "charset"), str("coords", "coords"),
		str("shape", "shape"), str("rev", "rev"),
	},
	"HTMLAreaElement": {str("alt", "alt"), str("coords", "coords"), str("shape", "shape"), str("target", "target")},
	"HTMLImageElement": {
		str("alt", "alt"), str("src", "src"), str("name", "name"), str("useMap", "usemap"),
		boolean("isMap", "ismap"), str("align", "align"), str("border", "border"),
		ulong("hspace", "hspace", 0), ulong("vspace", "vspace", 0),
	},
	"HTMLFormElement": {
		str("name", "name"), str("action", "action"), str("target", "target"),
		str("acceptCharset", "accept-charset"), boolean("noValidate", "novalidate"),
		enum("method", "method", "get", "get", "get", "post", "dialog"),
		enum("enctype", "enctype", "application/x-www-form-urlencoded", "application/x-www-form-urlencoded",
			"application/x-www-form-urlencoded", "multipart/form-data", "text/plain"),
	},
	"HTMLDivElement":       {str("align", "align")},
	"HTMLParagraphElement": {str("align", "align")},
	"HTMLHeadingElement":   {str("align", "align")},
	"HTMLHRElement":        {str("align", "align"), str("color", "color"), boolean("noShade", "noshade"), str("size", "size"), str("width", "width")},
	"HTMLOListElement":     {boolean("reversed", "reversed"), long("start", "start", 1), str("type", "type"), boolean("compact", "compact")},
	"HTMLUListElement":     {boolean("compact", "compact"), str("type", "type")},
	"HTMLLIElement":        {long("value", "value", 0), str("type", "type")},
	"HTMLScriptElement":    {str("src", "src"), str("type", "type"), str("charset", "charset"), boolean("defer", "defer"), boolean("noModule", "nomodule"), str("event", "event"), str("htmlFor", "for")},
	"HTMLIFrameElement":    {str("src", "src"), str("name", "name"), str("width", "width"), str("height", "height"), boolean("allowFullscreen", "allowfullscreen"), str("srcdoc", "srcdoc")},
	"HTMLLabelElement":     {str("htmlFor", "for")},
	"HTMLMetaElement":      {str("name", "name"), str("content", "content"), str("httpEquiv", "http-equiv"), str("scheme", "scheme")},
	"HTMLBodyElement":      {str("text", "text"), str("link", "link"), str("vLink", "vlink"), str("aLink", "alink"), str("bgColor", "bgcolor"), str("background", "background")},
	"HTMLFontElement":      {str("color", "color"), str("face", "face"), str("size", "size")},
	"HTMLLinkElement":      {str("rel", "rel"), str("media", "media"), str("hreflang", "hreflang"), str("type", "type"), boolean("disabled", "disabled")},
	"HTMLStyleElement":     {str("media", "media"), boolean("disabled", "disabled")},
	"HTMLFieldSetElement":  {str("name", "name"), boolean("disabled", "disabled")},
	"HTMLQuoteElement":     {str("cite", "cite")},
	"HTMLModElement":       {str("cite", "cite"), str("dateTime", "datetime")},
	"HTMLTimeElement":      {str("dateTime", "datetime")},
	"HTMLDataElement":      {str("value", "value")},
}

// Reflections returns the reflected attributes declared directly on iface.
func Reflections(iface string) []Reflect {
	return reflections[iface]
}

// Get returns the IDL value: a string, a bool or an int64 depending on the
// kind.
func (r Reflect) Get(n *Node) interface{} {
	v, present := n.GetAttribute(r.Attribute)
	switch r.Kind {
	case ReflectBool:
		return present
	case ReflectLong:
		if present {
			if i, ok := parseInteger(v); ok && i >= -2147483648 && i <= 2147483647 {
				return i
			}
		}
		return r.Default
	case ReflectUnsignedLong:
		i, ok := int64(0), false
		if present {
			i, ok = parseNonNegative(v)
		}
		if r.Max > 0 || r.Min > 0 {
			if !ok {
				return r.Default
			}
			if i < r.Min {
				if r.Max == 0 {
					return r.Default
				}
				i = r.Min
			}
			if r.Max > 0 && i > r.Max {
				i = r.Max
			}
			return i
		}
		if !ok || i > 2147483647 {
			return r.Default
		}
		return i
	case ReflectEnum:
		if !present {
			return r.Missing
		}
		lower := strings.ToLower(v)
		for _, kw := range r.Keywords {
			if kw == lower {
				return kw
			}
		}
		if r.Invalid != "" {
			return r.Invalid
		}
		return r.Missing
	}
	return v
}

// SetString stores a string or enumerated value.
func (r Reflect) SetString(n *Node, v string) {
	_ = n.SetAttribute(r.Attribute, v)
}

// SetBool adds or removes a boolean attribute.
func (r Reflect) SetBool(n *Node, v bool) {
	n.ToggleAttribute(r.Attribute, v)
}

// SetUint32 stores an unsigned long. Values above the signed 32-bit range
// store the default instead.
func (r Reflect) SetUint32(n *Node, v uint32) {
	value := int64(v)
	if value > 2147483647 {
		value = r.Default
	}
	_ = n.SetAttribute(r.Attribute, strconv.FormatInt(value, 10))
}

// SetInt32 stores a long.
func (r Reflect) SetInt32(n *Node, v int32) {
	_ = n.SetAttribute(r.Attribute, strconv.FormatInt(int64(v), 10))
}
