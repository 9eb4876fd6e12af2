package js

import (
	"net/url"
	"strings"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// windowHandlers are the event handlers of the window. Body elements
// forward some of them.
var windowHandlers = append([]string{"beforeunload", "hashchange", "message", "unload"}, handlerEvents...)

// BindDocument makes doc the document of the runtime and returns its
// wrapper.
func (b *DOMBinder) BindDocument(doc *dom.Document) *goja.Object {
	vm := b.runtime.vm
	b.document = doc
	b.allObj, b.allTarget = nil, nil
	b.docObj = b.objectFor(doc.AsNode())
	vm.Set("document", b.docObj)
	b.runtime.window.Set("location", b.newLocation(doc.URL()))
	return b.docObj
}

// DocumentObject returns the wrapper of the bound document.
func (b *DOMBinder) DocumentObject() *goja.Object {
	return b.docObj
}

func (b *DOMBinder) bindDocumentPrototype(proto *goja.Object) {
	vm := b.runtime.vm
	doc := func(n *dom.Node) *dom.Document { return n.Document() }
	collection := func(name string, get func(d *dom.Document) *dom.HTMLCollection) {
		b.accessor(proto, name, func(n *dom.Node) goja.Value {
			return b.cachedObject(n, name, func() *goja.Object { return b.newHTMLCollection(get(doc(n))) })
		}, nil)
	}

	b.accessor(proto, "documentElement", func(n *dom.Node) goja.Value { return b.BindNode(doc(n).DocumentElement()) }, nil)
	b.accessor(proto, "head", func(n *dom.Node) goja.Value { return b.BindNode(doc(n).Head()) }, nil)
	b.accessor(proto, "body", func(n *dom.Node) goja.Value { return b.BindNode(doc(n).Body()) }, nil)
	b.accessor(proto, "doctype", func(n *dom.Node) goja.Value { return b.BindNode(doc(n).Doctype()) }, nil)
	b.accessor(proto, "title", func(n *dom.Node) goja.Value {
		return b.str(doc(n).Title())
	}, func(n *dom.Node, v goja.Value) {
		doc(n).SetTitle(v.String())
	})
	b.accessor(proto, "URL", func(n *dom.Node) goja.Value { return b.str(doc(n).URL()) }, nil)
	b.accessor(proto, "documentURI", func(n *dom.Node) goja.Value { return b.str(doc(n).URL()) }, nil)
	b.accessor(proto, "readyState", func(n *dom.Node) goja.Value { return b.str(doc(n).ReadyState()) }, nil)
	b.accessor(proto, "compatMode", func(n *dom.Node) goja.Value {
		if doc(n).Doctype() == nil {
			return b.str("BackCompat")
		}
		return b.str("CSS1Compat")
	}, nil)
	b.accessor(proto, "characterSet", func(n *dom.Node) goja.Value { return b.str("UTF-8") }, nil)
	b.accessor(proto, "contentType", func(n *dom.Node) goja.Value { return b.str("text/html") }, nil)
	b.accessor(proto, "defaultView", func(n *dom.Node) goja.Value { return b.runtime.window }, nil)
	b.accessor(proto, "location", func(n *dom.Node) goja.Value { return b.runtime.window.Get("location") }, nil)
	b.accessor(proto, "all", func(n *dom.Node) goja.Value { return b.allObject() }, nil)
	collection("forms", (*dom.Document).Forms)
	collection("images", (*dom.Document).Images)
	collection("links", (*dom.Document).Links)
	collection("anchors", (*dom.Document).Anchors)
	collection("scripts", (*dom.Document).Scripts)
	b.accessor(proto, "children", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "children", func() *goja.Object { return b.newHTMLCollection(n.Children()) })
	}, nil)
	b.defineHandlers(proto, func(n *dom.Node, eventType string) *goja.Object { return b.objectFor(n) })
	b.accessor(proto, "onreadystatechange", func(n *dom.Node) goja.Value {
		return b.events.GetHandler(b.objectFor(n), "readystatechange")
	}, func(n *dom.Node, v goja.Value) {
		b.events.SetHandler(b.objectFor(n), "readystatechange", v)
	})

	b.method(proto, "getElementById", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.BindNode(doc(n).GetElementByID(call.Argument(0).String()))
	})
	b.method(proto, "getElementsByTagName", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.newHTMLCollection(doc(n).GetElementsByTagName(call.Argument(0).String()))
	})
	b.method(proto, "getElementsByClassName", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.newHTMLCollection(doc(n).GetElementsByClassName(call.Argument(0).String()))
	})
	b.method(proto, "getElementsByName", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.newNodeList(doc(n).GetElementsByName(call.Argument(0).String()).Elements)
	})
	b.method(proto, "createElement", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "createElement", "Document")
		el, err := doc(n).CreateElementChecked(call.Arguments[0].String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return b.objectFor(el)
	})
	b.method(proto, "createTextNode", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "createTextNode", "Document")
		return b.objectFor(doc(n).CreateTextNode(call.Arguments[0].String()))
	})
	b.method(proto, "createComment", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "createComment", "Document")
		return b.objectFor(doc(n).CreateComment(call.Arguments[0].String()))
	})
	b.method(proto, "createDocumentFragment", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.objectFor(doc(n).CreateDocumentFragment())
	})
	b.method(proto, "createEvent", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "createEvent", "Document")
		switch strings.ToLower(call.Arguments[0].String()) {
		case "event", "events", "htmlevents", "uievent", "uievents", "mouseevent", "mouseevents", "keyboardevent":
			return b.events.createUninitializedEvent(false)
		case "customevent":
			return b.events.createUninitializedEvent(true)
		}
		b.runtime.throwDOMError(dom.ErrNotSupported("The provided event type ('" + call.Arguments[0].String() + "') is invalid."))
		return nil
	})
	b.method(proto, "querySelector", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		el, err := doc(n).QuerySelector(call.Argument(0).String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return b.BindNode(el)
	})
	b.method(proto, "querySelectorAll", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		els, err := doc(n).QuerySelectorAll(call.Argument(0).String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return b.newNodeList(func() []*dom.Node { return els })
	})
	b.method(proto, "hasFocus", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return vm.ToValue(false)
	})
}

// bindWindowHandlers defines the on<type> properties of the window.
func (b *DOMBinder) bindWindowHandlers() {
	vm := b.runtime.vm
	window := b.runtime.window
	for _, ev := range windowHandlers {
		eventType := ev
		getter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return b.events.GetHandler(window, eventType)
		})
		setter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
			b.events.SetHandler(window, eventType, call.Argument(0))
			return goja.Undefined()
		})
		window.DefineAccessorProperty("on"+eventType, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
	}
}

// newLocation builds a read-only location object for rawURL.
func (b *DOMBinder) newLocation(rawURL string) *goja.Object {
	vm := b.runtime.vm
	loc := vm.NewObject()
	u, err := url.Parse(rawURL)
	if err != nil {
		u = &url.URL{Scheme: "about", Opaque: "blank"}
	}
	hash := ""
	if u.Fragment != "" {
		hash = "#" + u.Fragment
	}
	search := ""
	if u.RawQuery != "" {
		search = "?" + u.RawQuery
	}
	origin := "null"
	if u.Scheme == "http" || u.Scheme == "https" {
		origin = u.Scheme + "://" + u.Host
	}
	href := u.String()
	loc.Set("href", href)
	loc.Set("protocol", u.Scheme+":")
	loc.Set("host", u.Host)
	loc.Set("hostname", u.Hostname())
	loc.Set("port", u.Port())
	loc.Set("pathname", u.EscapedPath())
	loc.Set("search", search)
	loc.Set("hash", hash)
	loc.Set("origin", origin)
	loc.Set("toString", func(call goja.FunctionCall) goja.Value { return vm.ToValue(href) })
	b.runtime.setToStringTag(loc, "Location")
	return loc
}
