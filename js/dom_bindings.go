package js

import (
	"math"
	"strings"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// toUint32 converts a value to an unsigned 32-bit integer the way Web IDL
// does for unsigned long arguments.
func toUint32(v goja.Value) uint32 {
	if v == nil {
		return 0
	}
	f := v.ToFloat()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(math.Mod(f, 4294967296))))
}

// toInt32 converts a value for long arguments.
func toInt32(v goja.Value) int32 {
	return int32(toUint32(v))
}

// DOMBinder maps DOM nodes to script objects. Each node gets exactly one
// wrapper whose prototype is the interface object of the node's most
// derived interface.
type DOMBinder struct {
	runtime  *Runtime
	events   *EventBinder
	document *dom.Document
	docObj   *goja.Object

	objects map[*dom.Node]*goja.Object
	nodes   map[*goja.Object]*dom.Node

	protos map[string]*goja.Object
	ctors  map[string]*goja.Object

	collections map[*goja.Object]*collectionObject
	tokenLists  map[*goja.Object]*tokenListObject
	styles      map[*goja.Object]*styleObject
	cached      map[*dom.Node]map[string]*goja.Object
	protoNames  map[*goja.Object]map[string]bool
	allObj      *goja.Object
	allTarget   *goja.Object

	inputValues  map[*dom.Node]string
	inputChecked map[*dom.Node]bool
}

// NewDOMBinder creates a new DOM binder.
func NewDOMBinder(runtime *Runtime, events *EventBinder) *DOMBinder {
	b := &DOMBinder{
		runtime:      runtime,
		events:       events,
		objects:      make(map[*dom.Node]*goja.Object),
		nodes:        make(map[*goja.Object]*dom.Node),
		protos:       make(map[string]*goja.Object),
		ctors:        make(map[string]*goja.Object),
		collections:  make(map[*goja.Object]*collectionObject),
		tokenLists:   make(map[*goja.Object]*tokenListObject),
		styles:       make(map[*goja.Object]*styleObject),
		cached:       make(map[*dom.Node]map[string]*goja.Object),
		protoNames:   make(map[*goja.Object]map[string]bool),
		inputValues:  make(map[*dom.Node]string),
		inputChecked: make(map[*dom.Node]bool),
	}
	events.SetNodeWrapper(b.objectFor)
	b.setupPrototypes()
	b.bindWindowHandlers()
	return b
}

// Document returns the bound document, or nil.
func (b *DOMBinder) Document() *dom.Document {
	return b.document
}

var baseInterfaces = []struct{ name, parent string }{
	{"Node", "EventTarget"},
	{"CharacterData", "Node"},
	{"Text", "CharacterData"},
	{"Comment", "CharacterData"},
	{"Document", "Node"},
	{"HTMLDocument", "Document"},
	{"DocumentFragment", "Node"},
	{"DocumentType", "Node"},
	{"Element", "Node"},
	{"HTMLElement", "Element"},
	{"SVGElement", "Element"},
	{"MathMLElement", "Element"},
}

// setupPrototypes creates the interface objects and their prototype chain
// so instanceof and Object.prototype.toString work.
func (b *DOMBinder) setupPrototypes() {
	vm := b.runtime.vm
	b.protos["EventTarget"] = b.events.targetProto
	b.ctors["EventTarget"] = vm.Get("EventTarget").ToObject(vm)

	for _, iface := range baseInterfaces {
		b.defineInterface(iface.name, iface.parent, nil)
	}
	for _, iface := range dom.InterfaceNames() {
		if _, ok := b.protos[iface]; !ok {
			parent := dom.InterfaceParent(iface)
			b.defineInterface(iface, parent, nil)
		}
	}

	b.bindNodePrototype(b.protos["Node"], b.ctors["Node"])
	b.bindCharacterDataPrototype(b.protos["CharacterData"])
	b.bindElementPrototype(b.protos["Element"])
	b.bindHTMLElementPrototype(b.protos["HTMLElement"])
	b.bindDocumentPrototype(b.protos["Document"])
	b.bindDocumentTypePrototype(b.protos["DocumentType"])
	b.bindFormPrototypes()
	b.bindDialogPrototype(b.protos["HTMLDialogElement"])
	b.bindLinkPrototypes()
	for _, iface := range dom.InterfaceNames() {
		for _, r := range dom.Reflections(iface) {
			b.defineReflection(b.protos[iface], r)
		}
	}
	b.setupCollectionPrototypes()
	b.setupStylePrototype()

	// Constructible node interfaces.
	b.replaceConstructor("Text", func(call goja.ConstructorCall) *goja.Object {
		data := ""
		if v := call.Argument(0); !goja.IsUndefined(v) {
			data = v.String()
		}
		return b.objectFor(b.ensureDocument().CreateTextNode(data))
	})
	b.replaceConstructor("Comment", func(call goja.ConstructorCall) *goja.Object {
		data := ""
		if v := call.Argument(0); !goja.IsUndefined(v) {
			data = v.String()
		}
		return b.objectFor(b.ensureDocument().CreateComment(data))
	})
	b.replaceConstructor("DocumentFragment", func(call goja.ConstructorCall) *goja.Object {
		return b.objectFor(b.ensureDocument().CreateDocumentFragment())
	})

	option := b.runtime.constructor("HTMLOptionElement", b.protos["HTMLOptionElement"], b.constructOption)
	b.protos["HTMLOptionElement"].DefineDataProperty("constructor", b.ctors["HTMLOptionElement"], goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	option.DefineDataProperty("name", vm.ToValue("Option"), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	vm.Set("Option", option)
}

// defineInterface creates the prototype and interface object of name.
func (b *DOMBinder) defineInterface(name, parent string, fn func(goja.ConstructorCall) *goja.Object) *goja.Object {
	vm := b.runtime.vm
	if parent != "" {
		if _, ok := b.protos[parent]; !ok {
			b.defineInterface(parent, dom.InterfaceParent(parent), nil)
		}
	}
	proto := vm.NewObject()
	if p := b.protos[parent]; p != nil {
		proto.SetPrototype(p)
	}
	ctor := b.runtime.constructor(name, proto, fn)
	if pc := b.ctors[parent]; pc != nil {
		ctor.SetPrototype(pc)
	}
	b.protos[name] = proto
	b.ctors[name] = ctor
	vm.Set(name, ctor)
	return proto
}

// replaceConstructor swaps the interface object of name for a
// constructible one that shares the prototype.
func (b *DOMBinder) replaceConstructor(name string, fn func(goja.ConstructorCall) *goja.Object) {
	proto := b.protos[name]
	ctor := b.runtime.constructor(name, proto, fn)
	if pc := b.ctors[dom.InterfaceParent(name)]; pc != nil {
		ctor.SetPrototype(pc)
	}
	b.ctors[name] = ctor
	b.runtime.vm.Set(name, ctor)
}

// ensureDocument returns the bound document, creating an empty one for
// runtimes used without a page.
func (b *DOMBinder) ensureDocument() *dom.Document {
	if b.document == nil {
		b.BindDocument(dom.NewDocument(dom.WithProfile(b.runtime.profile)))
	}
	return b.document
}

// protoFor returns the prototype for a node's interface.
func (b *DOMBinder) protoFor(n *dom.Node) *goja.Object {
	if p, ok := b.protos[dom.InterfaceName(n)]; ok {
		return p
	}
	if n.IsHTMLElement() {
		return b.protos["HTMLElement"]
	}
	if n.IsElement() {
		return b.protos["Element"]
	}
	return b.protos["Node"]
}

// objectFor returns the wrapper of n, creating it on first use.
func (b *DOMBinder) objectFor(n *dom.Node) *goja.Object {
	if n == nil {
		return nil
	}
	if obj, ok := b.objects[n]; ok {
		return obj
	}
	obj := b.runtime.vm.NewObject()
	obj.SetPrototype(b.protoFor(n))
	b.objects[n] = obj
	b.nodes[obj] = n
	return obj
}

// BindNode returns the script value for n; nil maps to null.
func (b *DOMBinder) BindNode(n *dom.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	return b.objectFor(n)
}

// NodeOf returns the DOM node behind a script value, or nil.
func (b *DOMBinder) NodeOf(v goja.Value) *dom.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return b.nodes[obj]
}

func (b *DOMBinder) thisNode(call goja.FunctionCall) *dom.Node {
	n := b.NodeOf(call.This)
	if n == nil {
		panic(b.runtime.vm.NewTypeError("Illegal invocation"))
	}
	return n
}

// nodeArg returns argument i as a node or throws a TypeError.
func (b *DOMBinder) nodeArg(call goja.FunctionCall, i int, method, iface string) *dom.Node {
	n := b.NodeOf(call.Argument(i))
	if n == nil {
		panic(b.runtime.vm.NewTypeError("Failed to execute '%s' on '%s': parameter %d is not of type 'Node'.", method, iface, i+1))
	}
	return n
}

// accessor defines a property on proto whose getter and optional setter
// receive the node behind this.
func (b *DOMBinder) accessor(proto *goja.Object, name string, get func(n *dom.Node) goja.Value, set func(n *dom.Node, v goja.Value)) {
	vm := b.runtime.vm
	getter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return get(b.thisNode(call))
	})
	var setter goja.Value
	if set != nil {
		setter = vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(b.thisNode(call), call.Argument(0))
			return goja.Undefined()
		})
	}
	proto.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// method defines an operation on proto.
func (b *DOMBinder) method(proto *goja.Object, name string, fn func(n *dom.Node, call goja.FunctionCall) goja.Value) {
	proto.Set(name, func(call goja.FunctionCall) goja.Value {
		return fn(b.thisNode(call), call)
	})
}

// cachedObject returns the per-node object stored under key, creating it
// with build on first use. It keeps live collections identical across
// accesses.
func (b *DOMBinder) cachedObject(n *dom.Node, key string, build func() *goja.Object) *goja.Object {
	m := b.cached[n]
	if m == nil {
		m = make(map[string]*goja.Object)
		b.cached[n] = m
	}
	if obj, ok := m[key]; ok {
		return obj
	}
	obj := build()
	m[key] = obj
	return obj
}

func (b *DOMBinder) str(s string) goja.Value {
	return b.runtime.vm.ToValue(s)
}

func (b *DOMBinder) nullableString(s string, ok bool) goja.Value {
	if !ok {
		return goja.Null()
	}
	return b.str(s)
}

var nodeConstants = []struct {
	name  string
	value dom.NodeType
}{
	{"ELEMENT_NODE", dom.ElementNode},
	{"ATTRIBUTE_NODE", dom.AttributeNode},
	{"TEXT_NODE", dom.TextNode},
	{"CDATA_SECTION_NODE", dom.CDATASectionNode},
	{"COMMENT_NODE", dom.CommentNode},
	{"DOCUMENT_NODE", dom.DocumentNode},
	{"DOCUMENT_TYPE_NODE", dom.DocumentTypeNode},
	{"DOCUMENT_FRAGMENT_NODE", dom.DocumentFragmentNode},
}

func (b *DOMBinder) bindNodePrototype(proto, ctor *goja.Object) {
	vm := b.runtime.vm
	for _, c := range nodeConstants {
		ctor.DefineDataProperty(c.name, vm.ToValue(int(c.value)), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)
		proto.DefineDataProperty(c.name, vm.ToValue(int(c.value)), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}

	b.accessor(proto, "nodeType", func(n *dom.Node) goja.Value { return vm.ToValue(int(n.NodeType())) }, nil)
	b.accessor(proto, "nodeName", func(n *dom.Node) goja.Value { return b.str(n.NodeName()) }, nil)
	b.accessor(proto, "nodeValue", func(n *dom.Node) goja.Value {
		return b.nullableString(n.NodeValue())
	}, func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		n.SetNodeValue(v.String())
	})
	b.accessor(proto, "textContent", func(n *dom.Node) goja.Value {
		switch n.NodeType() {
		case dom.DocumentNode, dom.DocumentTypeNode:
			return goja.Null()
		}
		return b.str(n.TextContent())
	}, func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		n.SetTextContent(v.String())
	})
	b.accessor(proto, "parentNode", func(n *dom.Node) goja.Value { return b.BindNode(n.ParentNode()) }, nil)
	b.accessor(proto, "parentElement", func(n *dom.Node) goja.Value { return b.BindNode(n.ParentElement()) }, nil)
	b.accessor(proto, "firstChild", func(n *dom.Node) goja.Value { return b.BindNode(n.FirstChild()) }, nil)
	b.accessor(proto, "lastChild", func(n *dom.Node) goja.Value { return b.BindNode(n.LastChild()) }, nil)
	b.accessor(proto, "previousSibling", func(n *dom.Node) goja.Value { return b.BindNode(n.PreviousSibling()) }, nil)
	b.accessor(proto, "nextSibling", func(n *dom.Node) goja.Value { return b.BindNode(n.NextSibling()) }, nil)
	b.accessor(proto, "isConnected", func(n *dom.Node) goja.Value { return vm.ToValue(n.IsConnected()) }, nil)
	b.accessor(proto, "ownerDocument", func(n *dom.Node) goja.Value {
		if d := n.OwnerDocument(); d != nil {
			return b.BindNode(d.AsNode())
		}
		return goja.Null()
	}, nil)
	b.accessor(proto, "childNodes", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "childNodes", func() *goja.Object {
			return b.newNodeList(n.ChildNodes)
		})
	}, nil)

	b.method(proto, "hasChildNodes", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return vm.ToValue(n.HasChildNodes())
	})
	b.method(proto, "appendChild", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0, "appendChild", "Node")
		if _, err := n.AppendChild(child); err != nil {
			b.runtime.throwDOMError(err)
		}
		return call.Argument(0)
	})
	b.method(proto, "insertBefore", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0, "insertBefore", "Node")
		var ref *dom.Node
		if v := call.Argument(1); !goja.IsNull(v) && !goja.IsUndefined(v) {
			ref = b.nodeArg(call, 1, "insertBefore", "Node")
		}
		if err := n.InsertBefore(child, ref); err != nil {
			b.runtime.throwDOMError(err)
		}
		return call.Argument(0)
	})
	b.method(proto, "removeChild", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0, "removeChild", "Node")
		if _, err := n.RemoveChild(child); err != nil {
			b.runtime.throwDOMError(err)
		}
		return call.Argument(0)
	})
	b.method(proto, "replaceChild", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		node := b.nodeArg(call, 0, "replaceChild", "Node")
		old := b.nodeArg(call, 1, "replaceChild", "Node")
		if _, err := n.ReplaceChild(node, old); err != nil {
			b.runtime.throwDOMError(err)
		}
		return call.Argument(1)
	})
	b.method(proto, "contains", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		other := b.NodeOf(call.Argument(0))
		return vm.ToValue(other != nil && n.Contains(other))
	})
	b.method(proto, "cloneNode", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		c := n.CloneNode(call.Argument(0).ToBoolean())
		if c == nil {
			b.runtime.throwDOMError(dom.ErrNotSupported("Documents cannot be cloned."))
		}
		return b.objectFor(c)
	})
	b.method(proto, "isSameNode", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.NodeOf(call.Argument(0)) == n)
	})
}

func (b *DOMBinder) bindCharacterDataPrototype(proto *goja.Object) {
	vm := b.runtime.vm
	data := func(n *dom.Node) goja.Value {
		v, _ := n.NodeValue()
		return b.str(v)
	}
	setData := func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		n.SetNodeValue(v.String())
	}
	b.accessor(proto, "data", data, setData)
	b.accessor(proto, "length", func(n *dom.Node) goja.Value {
		v, _ := n.NodeValue()
		return vm.ToValue(utf16Length(v))
	}, nil)
	b.method(proto, "appendData", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		v, _ := n.NodeValue()
		n.SetNodeValue(v + call.Argument(0).String())
		return goja.Undefined()
	})
	b.method(proto, "remove", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		n.Remove()
		return goja.Undefined()
	})
}

func utf16Length(s string) int {
	length := 0
	for _, r := range s {
		if r >= 0x10000 {
			length += 2
		} else {
			length++
		}
	}
	return length
}

func (b *DOMBinder) bindDocumentTypePrototype(proto *goja.Object) {
	b.accessor(proto, "name", func(n *dom.Node) goja.Value { return b.str(n.NodeName()) }, nil)
	b.accessor(proto, "publicId", func(n *dom.Node) goja.Value { return b.str(rawAttr(n, "public")) }, nil)
	b.accessor(proto, "systemId", func(n *dom.Node) goja.Value { return b.str(rawAttr(n, "system")) }, nil)
}

func rawAttr(n *dom.Node, key string) string {
	for _, a := range n.Raw().Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (b *DOMBinder) bindElementPrototype(proto *goja.Object) {
	vm := b.runtime.vm

	b.accessor(proto, "tagName", func(n *dom.Node) goja.Value { return b.str(n.TagName()) }, nil)
	b.accessor(proto, "localName", func(n *dom.Node) goja.Value { return b.str(n.LocalName()) }, nil)
	b.accessor(proto, "namespaceURI", func(n *dom.Node) goja.Value {
		if ns := n.NamespaceURI(); ns != "" {
			return b.str(ns)
		}
		return goja.Null()
	}, nil)
	b.accessor(proto, "prefix", func(n *dom.Node) goja.Value { return goja.Null() }, nil)
	b.accessor(proto, "id", func(n *dom.Node) goja.Value { return b.str(n.ID()) }, func(n *dom.Node, v goja.Value) {
		_ = n.SetAttribute("id", v.String())
	})
	b.accessor(proto, "className", func(n *dom.Node) goja.Value { return b.str(n.ClassName()) }, func(n *dom.Node, v goja.Value) {
		_ = n.SetAttribute("class", v.String())
	})
	b.accessor(proto, "classList", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "classList", func() *goja.Object { return b.newTokenList(n, "class") })
	}, nil)
	b.accessor(proto, "innerHTML", func(n *dom.Node) goja.Value { return b.str(n.InnerHTML()) }, func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		if err := n.SetInnerHTML(v.String()); err != nil {
			b.runtime.throwDOMError(err)
		}
	})
	b.accessor(proto, "outerHTML", func(n *dom.Node) goja.Value { return b.str(n.OuterHTML()) }, nil)
	b.accessor(proto, "children", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "children", func() *goja.Object { return b.newHTMLCollection(n.Children()) })
	}, nil)
	b.accessor(proto, "childElementCount", func(n *dom.Node) goja.Value { return vm.ToValue(len(n.ChildElements())) }, nil)
	b.accessor(proto, "firstElementChild", func(n *dom.Node) goja.Value {
		kids := n.ChildElements()
		if len(kids) == 0 {
			return goja.Null()
		}
		return b.objectFor(kids[0])
	}, nil)
	b.accessor(proto, "lastElementChild", func(n *dom.Node) goja.Value {
		kids := n.ChildElements()
		if len(kids) == 0 {
			return goja.Null()
		}
		return b.objectFor(kids[len(kids)-1])
	}, nil)
	b.accessor(proto, "nextElementSibling", func(n *dom.Node) goja.Value {
		for s := n.NextSibling(); s != nil; s = s.NextSibling() {
			if s.IsElement() {
				return b.objectFor(s)
			}
		}
		return goja.Null()
	}, nil)
	b.accessor(proto, "previousElementSibling", func(n *dom.Node) goja.Value {
		for s := n.PreviousSibling(); s != nil; s = s.PreviousSibling() {
			if s.IsElement() {
				return b.objectFor(s)
			}
		}
		return goja.Null()
	}, nil)

	b.method(proto, "getAttribute", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.nullableString(n.GetAttribute(call.Argument(0).String()))
	})
	b.method(proto, "setAttribute", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("Failed to execute 'setAttribute' on 'Element': 2 arguments required, but only %d present.", len(call.Arguments)))
		}
		name := call.Arguments[0].String()
		if err := n.SetAttribute(name, call.Arguments[1].String()); err != nil {
			b.runtime.throwDOMError(err)
		}
		b.attributeChanged(n, name)
		return goja.Undefined()
	})
	b.method(proto, "removeAttribute", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		n.RemoveAttribute(name)
		b.attributeChanged(n, name)
		return goja.Undefined()
	})
	b.method(proto, "hasAttribute", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return vm.ToValue(n.HasAttribute(call.Argument(0).String()))
	})
	b.method(proto, "hasAttributes", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return vm.ToValue(len(n.Attributes()) > 0)
	})
	b.method(proto, "toggleAttribute", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		on := !n.HasAttribute(name)
		if force := call.Argument(1); !goja.IsUndefined(force) {
			on = force.ToBoolean()
		}
		n.ToggleAttribute(name, on)
		b.attributeChanged(n, name)
		return vm.ToValue(on)
	})
	b.method(proto, "getAttributeNames", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		attrs := n.Attributes()
		names := make([]interface{}, len(attrs))
		for i, a := range attrs {
			names[i] = a.Key
		}
		return vm.NewArray(names...)
	})
	b.method(proto, "getElementsByTagName", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.newHTMLCollection(n.GetElementsByTagName(call.Argument(0).String()))
	})
	b.method(proto, "getElementsByClassName", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		return b.newHTMLCollection(n.GetElementsByClassName(call.Argument(0).String()))
	})
	b.method(proto, "querySelector", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		el, err := n.QuerySelector(call.Argument(0).String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return b.BindNode(el)
	})
	b.method(proto, "querySelectorAll", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		els, err := n.QuerySelectorAll(call.Argument(0).String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return b.newNodeList(func() []*dom.Node { return els })
	})
	b.method(proto, "matches", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		ok, err := n.Matches(call.Argument(0).String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return vm.ToValue(ok)
	})
	b.method(proto, "closest", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		el, err := n.Closest(call.Argument(0).String())
		if err != nil {
			b.runtime.throwDOMError(err)
		}
		return b.BindNode(el)
	})
	b.method(proto, "remove", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		n.Remove()
		return goja.Undefined()
	})
	b.method(proto, "append", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			child := b.NodeOf(arg)
			if child == nil {
				child = n.Document().CreateTextNode(arg.String())
			}
			if _, err := n.AppendChild(child); err != nil {
				b.runtime.throwDOMError(err)
			}
		}
		return goja.Undefined()
	})
}

// attributeChanged resets a handler compiled from an on* attribute.
func (b *DOMBinder) attributeChanged(n *dom.Node, name string) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "on") {
		return
	}
	eventType := strings.TrimPrefix(name, "on")
	if n.Is("body") && bodyForwardsToWindow[eventType] {
		b.events.AttributeChanged(b.runtime.window, eventType)
		return
	}
	b.events.AttributeChanged(b.objectFor(n), eventType)
}

// Event handlers exposed as on<type> properties of elements, documents and
// the window.
var handlerEvents = []string{
	"abort", "blur", "cancel", "change", "click", "close", "contextmenu",
	"dblclick", "error", "focus", "input", "keydown", "keypress", "keyup",
	"load", "mousedown", "mousemove", "mouseout", "mouseover", "mouseup",
	"reset", "resize", "scroll", "select", "submit", "toggle", "wheel",
}

// bodyForwardsToWindow lists the handlers that body elements forward to
// their window.
var bodyForwardsToWindow = map[string]bool{
	"blur": true, "error": true, "focus": true, "load": true,
	"resize": true, "scroll": true, "unload": true, "beforeunload": true,
}

// defineHandlers adds on<type> accessors to proto. target maps the node
// behind this to the object that owns the handler.
func (b *DOMBinder) defineHandlers(proto *goja.Object, target func(n *dom.Node, eventType string) *goja.Object) {
	for _, ev := range handlerEvents {
		eventType := ev
		b.accessor(proto, "on"+eventType, func(n *dom.Node) goja.Value {
			return b.events.GetHandler(target(n, eventType), eventType)
		}, func(n *dom.Node, v goja.Value) {
			b.events.SetHandler(target(n, eventType), eventType, v)
		})
	}
}

func (b *DOMBinder) bindHTMLElementPrototype(proto *goja.Object) {
	b.defineHandlers(proto, func(n *dom.Node, eventType string) *goja.Object {
		if n.Is("body") && bodyForwardsToWindow[eventType] {
			return b.runtime.window
		}
		return b.objectFor(n)
	})
	b.accessor(proto, "style", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "style", func() *goja.Object { return b.newStyleObject(n) })
	}, func(n *dom.Node, v goja.Value) {
		n.Style().SetCSSText(v.String())
	})
	b.accessor(proto, "innerText", func(n *dom.Node) goja.Value { return b.str(n.TextContent()) }, func(n *dom.Node, v goja.Value) {
		n.SetTextContent(v.String())
	})
	b.method(proto, "click", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.events.FireEvent(b.objectFor(n), "click", EventOptions{Bubbles: true, Cancelable: true})
		return goja.Undefined()
	})
	b.method(proto, "focus", func(n *dom.Node, call goja.FunctionCall) goja.Value { return goja.Undefined() })
	b.method(proto, "blur", func(n *dom.Node, call goja.FunctionCall) goja.Value { return goja.Undefined() })
}

// defineReflection binds an IDL attribute that reflects a content
// attribute.
func (b *DOMBinder) defineReflection(proto *goja.Object, r dom.Reflect) {
	vm := b.runtime.vm
	b.accessor(proto, r.Property, func(n *dom.Node) goja.Value {
		return vm.ToValue(r.Get(n))
	}, func(n *dom.Node, v goja.Value) {
		switch r.Kind {
		case dom.ReflectBool:
			r.SetBool(n, v.ToBoolean())
		case dom.ReflectUnsignedLong:
			r.SetUint32(n, toUint32(v))
		case dom.ReflectLong:
			r.SetInt32(n, toInt32(v))
		default:
			r.SetString(n, v.String())
		}
	})
}
