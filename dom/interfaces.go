package dom

import (
	"sort"
	"strings"
)

var htmlInterfaces = map[string]string{
	"a":          "HTMLAnchorElement",
	"area":       "HTMLAreaElement",
	"audio":      "HTMLAudioElement",
	"base":       "HTMLBaseElement",
	"blockquote": "HTMLQuoteElement",
	"body":       "HTMLBodyElement",
	"br":         "HTMLBRElement",
	"button":     "HTMLButtonElement",
	"canvas":     "HTMLCanvasElement",
	"caption":    "HTMLTableCaptionElement",
	"col":        "HTMLTableColElement",
	"colgroup":   "HTMLTableColElement",
	"data":       "HTMLDataElement",
	"datalist":   "HTMLDataListElement",
	"del":        "HTMLModElement",
	"details":    "HTMLDetailsElement",
	"dialog":     "HTMLDialogElement",
	"dir":        "HTMLDirectoryElement",
	"div":        "HTMLDivElement",
	"dl":         "HTMLDListElement",
	"embed":      "HTMLEmbedElement",
	"fieldset":   "HTMLFieldSetElement",
	"font":       "HTMLFontElement",
	"form":       "HTMLFormElement",
	"frame":      "HTMLFrameElement",
	"frameset":   "HTMLFrameSetElement",
	"h1":         "HTMLHeadingElement",
	"h2":         "HTMLHeadingElement",
	"h3":         "HTMLHeadingElement",
	"h4":         "HTMLHeadingElement",
	"h5":         "HTMLHeadingElement",
	"h6":         "HTMLHeadingElement",
	"head":       "HTMLHeadElement",
	"hr":         "HTMLHRElement",
	"html":       "HTMLHtmlElement",
	"iframe":     "HTMLIFrameElement",
	"img":        "HTMLImageElement",
	"input":      "HTMLInputElement",
	"ins":        "HTMLModElement",
	"label":      "HTMLLabelElement",
	"legend":     "HTMLLegendElement",
	"li":         "HTMLLIElement",
	"link":       "HTMLLinkElement",
	"listing":    "HTMLPreElement",
	"map":        "HTMLMapElement",
	"marquee":    "HTMLMarqueeElement",
	"menu":       "HTMLMenuElement",
	"meta":       "HTMLMetaElement",
	"meter":      "HTMLMeterElement",
	"object":     "HTMLObjectElement",
	"ol":         "HTMLOListElement",
	"optgroup":   "HTMLOptGroupElement",
	"option":     "HTMLOptionElement",
	"output":     "HTMLOutputElement",
	"p":          "HTMLParagraphElement",
	"param":      "HTMLParamElement",
	"picture":    "HTMLPictureElement",
	"pre":        "HTMLPreElement",
	"progress":   "HTMLProgressElement",
	"q":          "HTMLQuoteElement",
	"script":     "HTMLScriptElement",
	"select":     "HTMLSelectElement",
	"slot":       "HTMLSlotElement",
	"source":     "HTMLSourceElement",
	"span":       "HTMLSpanElement",
	"style":      "HTMLStyleElement",
	"table":      "HTMLTableElement",
	"tbody":      "HTMLTableSectionElement",
	"td":         "HTMLTableCellElement",
	"template":   "HTMLTemplateElement",
	"textarea":   "HTMLTextAreaElement",
	"tfoot":      "HTMLTableSectionElement",
	"th":         "HTMLTableCellElement",
	"thead":      "HTMLTableSectionElement",
	"time":       "HTMLTimeElement",
	"title":      "HTMLTitleElement",
	"tr":         "HTMLTableRowElement",
	"track":      "HTMLTrackElement",
	"ul":         "HTMLUListElement",
	"video":      "HTMLVideoElement",
	"xmp":        "HTMLPreElement",
}

// Elements defined by HTML that use HTMLElement directly.
var plainHTMLElements = map[string]bool{
	"abbr": true, "acronym": true, "address": true, "article": true, "aside": true,
	"b": true, "basefont": true, "bdi": true, "bdo": true, "big": true,
	"center": true, "cite": true, "code": true, "dd": true, "dfn": true,
	"dt": true, "em": true, "figcaption": true, "figure": true, "footer": true,
	"header": true, "hgroup": true, "i": true, "kbd": true, "main": true,
	"mark": true, "nav": true, "nobr": true, "noembed": true, "noframes": true,
	"noscript": true, "plaintext": true, "rb": true, "rp": true, "rt": true,
	"rtc": true, "ruby": true, "s": true, "samp": true, "search": true,
	"section": true, "small": true, "strike": true, "strong": true, "sub": true,
	"summary": true, "sup": true, "tt": true, "u": true, "var": true, "wbr": true,
}

var interfaceParents = map[string]string{
	"HTMLAudioElement": "HTMLMediaElement",
	"HTMLVideoElement": "HTMLMediaElement",
	"HTMLMediaElement": "HTMLElement",
	"HTMLElement":      "Element",
	"SVGElement":       "Element",
	"MathMLElement":    "Element",
	"Element":          "Node",
	"CharacterData":    "Node",
	"Text":             "CharacterData",
	"Comment":          "CharacterData",
	"Document":         "Node",
	"HTMLDocument":     "Document",
	"DocumentFragment": "Node",
	"DocumentType":     "Node",
}

// InterfaceName returns the most derived DOM interface implemented by n.
func InterfaceName(n *Node) string {
	switch n.NodeType() {
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "HTMLDocument"
	case DocumentFragmentNode:
		return "DocumentFragment"
	case DocumentTypeNode:
		return "DocumentType"
	case ElementNode:
	default:
		return "Node"
	}
	switch n.raw.Namespace {
	case "":
		return ElementInterface(n.raw.Data)
	case "svg":
		return "SVGElement"
	case "math":
		return "MathMLElement"
	}
	return "Element"
}

// ElementInterface returns the interface of an HTML element by local name.
func ElementInterface(localName string) string {
	if iface, ok := htmlInterfaces[localName]; ok {
		return iface
	}
	if plainHTMLElements[localName] || isCustomElementName(localName) {
		return "HTMLElement"
	}
	return "HTMLUnknownElement"
}

// InterfaceParent returns the interface that iface inherits from, or "".
func InterfaceParent(iface string) string {
	if p, ok := interfaceParents[iface]; ok {
		return p
	}
	if strings.HasPrefix(iface, "HTML") && strings.HasSuffix(iface, "Element") {
		return "HTMLElement"
	}
	return ""
}

// InterfaceNames returns every element interface known to the engine.
func InterfaceNames() []string {
	seen := map[string]bool{"HTMLElement": true, "HTMLUnknownElement": true, "HTMLMediaElement": true}
	names := []string{"HTMLElement", "HTMLUnknownElement", "HTMLMediaElement"}
	for _, iface := range htmlInterfaces {
		if !seen[iface] {
			seen[iface] = true
			names = append(names, iface)
		}
	}
	sort.Strings(names[3:])
	return names
}

var reservedCustomNames = map[string]bool{
	"annotation-xml": true, "color-profile": true, "font-face": true,
	"font-face-src": true, "font-face-uri": true, "font-face-format": true,
	"font-face-name": true, "missing-glyph": true,
}

func isCustomElementName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' || !strings.Contains(name, "-") {
		return false
	}
	if reservedCustomNames[name] {
		return false
	}
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			return false
		}
	}
	return true
}
