package js

import (
	"strconv"
	"strings"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// arrayIndex reports whether key is the canonical form of an array index.
func arrayIndex(key string) (uint32, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	v, err := strconv.ParseUint(key, 10, 32)
	if err != nil || v == 4294967295 {
		return 0, false
	}
	return uint32(v), true
}

// protoHas reports whether key names a property somewhere on the chain
// starting at proto. Named collection items never shadow such properties.
// The name set is computed once per prototype.
func (b *DOMBinder) protoHas(proto *goja.Object, key string) bool {
	names := b.protoNames[proto]
	if names == nil {
		names = make(map[string]bool)
		for p := proto; p != nil; p = p.Prototype() {
			for _, k := range p.GetOwnPropertyNames() {
				names[k] = true
			}
		}
		b.protoNames[proto] = names
	}
	return names[key]
}

// collectionObject backs NodeList, HTMLCollection and HTMLOptionsCollection
// wrappers. Indexed and named properties are resolved on every access so
// the wrappers stay live.
type collectionObject struct {
	b       *DOMBinder
	obj     *goja.Object
	proto   *goja.Object
	items   func() []*dom.Node
	coll    *dom.HTMLCollection
	options *dom.OptionsCollection

	expando map[string]goja.Value
	keys    []string
}

func (c *collectionObject) length() int {
	return len(c.items())
}

func (c *collectionObject) item(idx uint32) *dom.Node {
	items := c.items()
	if int64(idx) >= int64(len(items)) {
		return nil
	}
	return items[idx]
}

// named returns the element exposed under name, or nil.
func (c *collectionObject) named(name string) *dom.Node {
	if c.coll == nil || name == "" || c.b.protoHas(c.proto, name) {
		return nil
	}
	return c.coll.NamedItem(name)
}

func (c *collectionObject) Get(key string) goja.Value {
	if idx, ok := arrayIndex(key); ok {
		if n := c.item(idx); n != nil {
			return c.b.objectFor(n)
		}
		return nil
	}
	if v, ok := c.expando[key]; ok {
		return v
	}
	if n := c.named(key); n != nil {
		return c.b.objectFor(n)
	}
	return nil
}

func (c *collectionObject) Set(key string, val goja.Value) bool {
	if idx, ok := arrayIndex(key); ok {
		if c.options == nil {
			return false
		}
		c.setOption(idx, val)
		return true
	}
	if c.options != nil {
		switch key {
		case "length":
			c.options.SetLength(toUint32(val))
			return true
		case "selectedIndex":
			c.options.SetSelectedIndex(int(toInt32(val)))
			return true
		}
	}
	if key == "length" || c.named(key) != nil {
		return false
	}
	if c.expando == nil {
		c.expando = make(map[string]goja.Value)
	}
	if _, ok := c.expando[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.expando[key] = val
	return true
}

// setOption implements the indexed setter of HTMLOptionsCollection.
func (c *collectionObject) setOption(idx uint32, val goja.Value) {
	var opt *dom.Node
	if !goja.IsNull(val) && !goja.IsUndefined(val) {
		opt = c.b.NodeOf(val)
		if opt == nil || !opt.Is("option") {
			panic(c.b.runtime.vm.NewTypeError("Failed to set an indexed property on 'HTMLOptionsCollection': parameter 2 is not of type 'HTMLOptionElement'."))
		}
	}
	if err := c.options.Set(idx, opt); err != nil {
		c.b.runtime.throwDOMError(err)
	}
}

func (c *collectionObject) Has(key string) bool {
	if idx, ok := arrayIndex(key); ok {
		return c.item(idx) != nil
	}
	if _, ok := c.expando[key]; ok {
		return true
	}
	return c.named(key) != nil
}

func (c *collectionObject) Delete(key string) bool {
	if idx, ok := arrayIndex(key); ok {
		return c.item(idx) == nil
	}
	if _, ok := c.expando[key]; ok {
		delete(c.expando, key)
		for i, k := range c.keys {
			if k == key {
				c.keys = append(c.keys[:i], c.keys[i+1:]...)
				break
			}
		}
		return true
	}
	return c.named(key) == nil
}

// Keys lists the indices followed by expandos. Named properties are not
// enumerable.
func (c *collectionObject) Keys() []string {
	n := c.length()
	keys := make([]string, 0, n+len(c.keys))
	for i := 0; i < n; i++ {
		keys = append(keys, strconv.Itoa(i))
	}
	return append(keys, c.keys...)
}

func (b *DOMBinder) newCollectionObject(c *collectionObject) *goja.Object {
	c.b = b
	obj := b.runtime.vm.NewDynamicObject(c)
	obj.SetPrototype(c.proto)
	c.obj = obj
	b.collections[obj] = c
	return obj
}

// newHTMLCollection wraps a live HTMLCollection.
func (b *DOMBinder) newHTMLCollection(hc *dom.HTMLCollection) *goja.Object {
	return b.newCollectionObject(&collectionObject{
		proto: b.protos["HTMLCollection"],
		items: hc.Elements,
		coll:  hc,
	})
}

// newNodeList wraps a node list computed by items on every access.
func (b *DOMBinder) newNodeList(items func() []*dom.Node) *goja.Object {
	return b.newCollectionObject(&collectionObject{
		proto: b.protos["NodeList"],
		items: items,
	})
}

// newOptionsCollection wraps the options of a select element.
func (b *DOMBinder) newOptionsCollection(oc *dom.OptionsCollection) *goja.Object {
	return b.newCollectionObject(&collectionObject{
		proto:   b.protos["HTMLOptionsCollection"],
		items:   oc.Elements,
		coll:    oc.HTMLCollection,
		options: oc,
	})
}

func (b *DOMBinder) thisCollection(call goja.FunctionCall) *collectionObject {
	if obj, ok := call.This.(*goja.Object); ok {
		if c, ok := b.collections[obj]; ok {
			return c
		}
	}
	panic(b.runtime.vm.NewTypeError("Illegal invocation"))
}

func (b *DOMBinder) requireArgs(call goja.FunctionCall, n int, method, iface string) {
	if len(call.Arguments) < n {
		panic(b.runtime.vm.NewTypeError("Failed to execute '%s' on '%s': %d argument required, but only %d present.", method, iface, n, len(call.Arguments)))
	}
}

// setupCollectionPrototypes creates the collection interfaces.
func (b *DOMBinder) setupCollectionPrototypes() {
	vm := b.runtime.vm
	arrayProto := vm.Get("Array").ToObject(vm).Get("prototype").ToObject(vm)
	values := arrayProto.Get("values")

	nodeList := b.defineInterface("NodeList", "", nil)
	nodeList.DefineAccessorProperty("length", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.thisCollection(call).length())
	}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	nodeList.Set("item", func(call goja.FunctionCall) goja.Value {
		c := b.thisCollection(call)
		b.requireArgs(call, 1, "item", "NodeList")
		return b.BindNode(c.item(toUint32(call.Argument(0))))
	})
	for _, name := range []string{"forEach", "entries", "keys"} {
		nodeList.Set(name, arrayProto.Get(name))
	}
	nodeList.Set("values", values)
	nodeList.DefineDataPropertySymbol(goja.SymIterator, values, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)

	coll := b.defineInterface("HTMLCollection", "", nil)
	coll.DefineAccessorProperty("length", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.thisCollection(call).length())
	}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	coll.Set("item", func(call goja.FunctionCall) goja.Value {
		c := b.thisCollection(call)
		b.requireArgs(call, 1, "item", "HTMLCollection")
		return b.BindNode(c.item(toUint32(call.Argument(0))))
	})
	coll.Set("namedItem", func(call goja.FunctionCall) goja.Value {
		c := b.thisCollection(call)
		b.requireArgs(call, 1, "namedItem", "HTMLCollection")
		return b.BindNode(c.coll.NamedItem(call.Argument(0).String()))
	})
	coll.DefineDataPropertySymbol(goja.SymIterator, values, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)

	b.setupOptionsCollectionPrototype(b.defineInterface("HTMLOptionsCollection", "HTMLCollection", nil))
	b.setupAllCollectionPrototype(b.defineInterface("HTMLAllCollection", "", nil), values)
	b.setupTokenListPrototype(b.defineInterface("DOMTokenList", "", nil), values)
}

func (b *DOMBinder) setupOptionsCollectionPrototype(proto *goja.Object) {
	vm := b.runtime.vm
	const iface = "HTMLOptionsCollection"
	options := func(call goja.FunctionCall) *dom.OptionsCollection {
		c := b.thisCollection(call)
		if c.options == nil {
			panic(vm.NewTypeError("Illegal invocation"))
		}
		return c.options
	}

	proto.DefineAccessorProperty("length", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(options(call).Length())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		options(call).SetLength(toUint32(call.Argument(0)))
		return goja.Undefined()
	}), goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.DefineAccessorProperty("selectedIndex", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(options(call).SelectedIndex())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		options(call).SetSelectedIndex(int(toInt32(call.Argument(0))))
		return goja.Undefined()
	}), goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.Set("add", func(call goja.FunctionCall) goja.Value {
		oc := options(call)
		b.requireArgs(call, 1, "add", iface)
		b.addOption(oc, call.Argument(0), call.Argument(1), iface)
		return goja.Undefined()
	})
	proto.Set("remove", func(call goja.FunctionCall) goja.Value {
		oc := options(call)
		b.requireArgs(call, 1, "remove", iface)
		oc.Remove(int(toInt32(call.Argument(0))))
		return goja.Undefined()
	})
}

// addOption implements add(element, before) of select elements and their
// options collection. before is an element, an index, or null.
func (b *DOMBinder) addOption(oc *dom.OptionsCollection, element, before goja.Value, iface string) {
	el := b.NodeOf(element)
	if el == nil || !(el.Is("option") || el.Is("optgroup")) {
		panic(b.runtime.vm.NewTypeError("Failed to execute 'add' on '%s': The provided value is not of type '(HTMLOptGroupElement or HTMLOptionElement)'.", iface))
	}
	var err error
	switch {
	case goja.IsNull(before) || goja.IsUndefined(before):
		err = oc.Add(el, nil)
	case b.NodeOf(before) != nil:
		ref := b.NodeOf(before)
		if !ref.IsHTMLElement() {
			panic(b.runtime.vm.NewTypeError("Failed to execute 'add' on '%s': The provided value is not of type '(HTMLElement or long)'.", iface))
		}
		err = oc.Add(el, ref)
	default:
		err = oc.AddAt(el, int(toInt32(before)))
	}
	if err != nil {
		b.runtime.throwDOMError(err)
	}
}

// setupAllCollectionPrototype creates HTMLAllCollection.prototype and the
// document.all object, a proxy over a function so it can be called.
func (b *DOMBinder) setupAllCollectionPrototype(proto *goja.Object, values goja.Value) {
	vm := b.runtime.vm
	const iface = "HTMLAllCollection"
	thisAll := func(call goja.FunctionCall) *dom.AllCollection {
		if obj, ok := call.This.(*goja.Object); ok && obj != nil && (obj == b.allObj || obj == b.allTarget) {
			return b.ensureDocument().All()
		}
		panic(vm.NewTypeError("Illegal invocation"))
	}

	proto.DefineAccessorProperty("length", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(thisAll(call).Length())
	}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.Set("item", func(call goja.FunctionCall) goja.Value {
		return b.allItem(thisAll(call), call.Arguments)
	})
	proto.Set("namedItem", func(call goja.FunctionCall) goja.Value {
		all := thisAll(call)
		b.requireArgs(call, 1, "namedItem", iface)
		return b.allNamed(all, call.Argument(0).String())
	})
	proto.DefineDataPropertySymbol(goja.SymIterator, values, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
}

// allItem implements item(nameOrIndex) and the legacy call syntax.
func (b *DOMBinder) allItem(all *dom.AllCollection, args []goja.Value) goja.Value {
	if len(args) == 0 || goja.IsUndefined(args[0]) {
		return goja.Null()
	}
	key := args[0].String()
	if idx, ok := arrayIndex(key); ok {
		return b.BindNode(all.Item(int(idx)))
	}
	return b.allNamed(all, key)
}

// allNamed returns null, the single element named name, or a collection of
// every element sharing it.
func (b *DOMBinder) allNamed(all *dom.AllCollection, name string) goja.Value {
	els := all.NamedItems(name)
	switch len(els) {
	case 0:
		return goja.Null()
	case 1:
		return b.objectFor(els[0])
	}
	return b.newHTMLCollection(dom.NewStaticCollection(b.document.AsNode(), els))
}

// allObject returns document.all for the bound document. It is an ordinary
// callable object, so typeof reports "function", it is truthy and it is
// not loosely equal to undefined.
func (b *DOMBinder) allObject() *goja.Object {
	if b.allObj != nil {
		return b.allObj
	}
	vm := b.runtime.vm
	proto := b.protos["HTMLAllCollection"]
	target := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.allItem(b.document.All(), call.Arguments)
	}).(*goja.Object)
	target.Delete("name")
	target.Delete("length")
	target.SetPrototype(proto)

	all := func() *dom.AllCollection { return b.document.All() }
	hasOwn := func(target *goja.Object, key string) bool {
		for _, k := range target.GetOwnPropertyNames() {
			if k == key {
				return true
			}
		}
		return false
	}
	get := func(target *goja.Object, key string) goja.Value {
		if idx, ok := arrayIndex(key); ok {
			if n := all().Item(int(idx)); n != nil {
				return b.objectFor(n)
			}
			return goja.Undefined()
		}
		if key == "length" {
			return vm.ToValue(all().Length())
		}
		if hasOwn(target, key) || b.protoHas(proto, key) {
			return target.Get(key)
		}
		if els := all().NamedItems(key); len(els) > 0 {
			return b.allNamed(all(), key)
		}
		return goja.Undefined()
	}
	has := func(target *goja.Object, key string) bool {
		if idx, ok := arrayIndex(key); ok {
			return int64(idx) < int64(all().Length())
		}
		return key == "length" || hasOwn(target, key) || b.protoHas(proto, key) || len(all().NamedItems(key)) > 0
	}

	proxy := vm.NewProxy(target, &goja.ProxyTrapConfig{
		Get: func(target *goja.Object, key string, receiver goja.Value) goja.Value {
			return get(target, key)
		},
		GetIdx: func(target *goja.Object, idx int, receiver goja.Value) goja.Value {
			return get(target, strconv.Itoa(idx))
		},
		GetSym: func(target *goja.Object, sym *goja.Symbol, receiver goja.Value) goja.Value {
			return proto.GetSymbol(sym)
		},
		Has: func(target *goja.Object, key string) bool {
			return has(target, key)
		},
		HasIdx: func(target *goja.Object, idx int) bool {
			return has(target, strconv.Itoa(idx))
		},
		OwnKeys: func(target *goja.Object) *goja.Object {
			n := all().Length()
			keys := make([]interface{}, 0, n)
			for i := 0; i < n; i++ {
				keys = append(keys, strconv.Itoa(i))
			}
			for _, k := range target.GetOwnPropertyNames() {
				keys = append(keys, k)
			}
			return vm.NewArray(keys...)
		},
		GetOwnPropertyDescriptor: func(target *goja.Object, key string) goja.PropertyDescriptor {
			if idx, ok := arrayIndex(key); ok {
				return b.allIndexDescriptor(idx)
			}
			return b.ownDescriptor(target, key)
		},
		GetOwnPropertyDescriptorIdx: func(target *goja.Object, idx int) goja.PropertyDescriptor {
			return b.allIndexDescriptor(uint32(idx))
		},
		Apply: func(target *goja.Object, this goja.Value, args []goja.Value) goja.Value {
			return b.allItem(all(), args)
		},
	})
	b.allTarget = target
	b.allObj = vm.ToValue(proxy).(*goja.Object)
	return b.allObj
}

func (b *DOMBinder) allIndexDescriptor(idx uint32) goja.PropertyDescriptor {
	n := b.document.All().Item(int(idx))
	if n == nil {
		return goja.PropertyDescriptor{}
	}
	return goja.PropertyDescriptor{
		Value:        b.objectFor(n),
		Writable:     goja.FLAG_FALSE,
		Enumerable:   goja.FLAG_TRUE,
		Configurable: goja.FLAG_TRUE,
	}
}

// ownDescriptor reads an own property descriptor of obj through
// Object.getOwnPropertyDescriptor.
func (b *DOMBinder) ownDescriptor(obj *goja.Object, key string) goja.PropertyDescriptor {
	vm := b.runtime.vm
	getDesc, ok := goja.AssertFunction(vm.Get("Object").ToObject(vm).Get("getOwnPropertyDescriptor"))
	if !ok {
		return goja.PropertyDescriptor{}
	}
	v, err := getDesc(goja.Undefined(), obj, vm.ToValue(key))
	if err != nil || goja.IsUndefined(v) {
		return goja.PropertyDescriptor{}
	}
	d := v.ToObject(vm)
	desc := goja.PropertyDescriptor{
		Configurable: goja.ToFlag(d.Get("configurable").ToBoolean()),
		Enumerable:   goja.ToFlag(d.Get("enumerable").ToBoolean()),
	}
	if g := d.Get("get"); g != nil {
		desc.Getter = g
		desc.Setter = d.Get("set")
		return desc
	}
	desc.Value = d.Get("value")
	desc.Writable = goja.ToFlag(d.Get("writable").ToBoolean())
	return desc
}

// tokenListObject is the DOMTokenList over a space-separated attribute.
type tokenListObject struct {
	b    *DOMBinder
	el   *dom.Node
	attr string
}

func (t *tokenListObject) tokens() []string {
	v, _ := t.el.GetAttribute(t.attr)
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(v) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

func (t *tokenListObject) write(tokens []string) {
	_ = t.el.SetAttribute(t.attr, strings.Join(tokens, " "))
}

func (t *tokenListObject) Get(key string) goja.Value {
	if idx, ok := arrayIndex(key); ok {
		if toks := t.tokens(); int64(idx) < int64(len(toks)) {
			return t.b.str(toks[idx])
		}
	}
	return nil
}

func (t *tokenListObject) Set(key string, val goja.Value) bool {
	return false
}

func (t *tokenListObject) Has(key string) bool {
	idx, ok := arrayIndex(key)
	return ok && int64(idx) < int64(len(t.tokens()))
}

func (t *tokenListObject) Delete(key string) bool {
	return !t.Has(key)
}

func (t *tokenListObject) Keys() []string {
	toks := t.tokens()
	keys := make([]string, len(toks))
	for i := range toks {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

func (b *DOMBinder) newTokenList(el *dom.Node, attr string) *goja.Object {
	t := &tokenListObject{b: b, el: el, attr: attr}
	obj := b.runtime.vm.NewDynamicObject(t)
	obj.SetPrototype(b.protos["DOMTokenList"])
	b.tokenLists[obj] = t
	return obj
}

func (b *DOMBinder) setupTokenListPrototype(proto *goja.Object, values goja.Value) {
	vm := b.runtime.vm
	this := func(call goja.FunctionCall) *tokenListObject {
		if obj, ok := call.This.(*goja.Object); ok {
			if t, ok := b.tokenLists[obj]; ok {
				return t
			}
		}
		panic(vm.NewTypeError("Illegal invocation"))
	}
	validate := func(method, tok string) {
		if tok == "" {
			panic(b.runtime.domException("SyntaxError", "Failed to execute '"+method+"' on 'DOMTokenList': The token provided must not be empty."))
		}
		if strings.ContainsAny(tok, " \t\n\f\r") {
			panic(b.runtime.domException("InvalidCharacterError", "Failed to execute '"+method+"' on 'DOMTokenList': The token provided ('"+tok+"') contains HTML space characters, which are not valid in tokens."))
		}
	}
	indexOf := func(toks []string, tok string) int {
		for i, t := range toks {
			if t == tok {
				return i
			}
		}
		return -1
	}

	proto.DefineAccessorProperty("length", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(len(this(call).tokens()))
	}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.DefineAccessorProperty("value", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		t := this(call)
		v, _ := t.el.GetAttribute(t.attr)
		return vm.ToValue(v)
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		t := this(call)
		_ = t.el.SetAttribute(t.attr, call.Argument(0).String())
		return goja.Undefined()
	}), goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.Set("item", func(call goja.FunctionCall) goja.Value {
		toks := this(call).tokens()
		idx := toUint32(call.Argument(0))
		if int64(idx) >= int64(len(toks)) {
			return goja.Null()
		}
		return vm.ToValue(toks[idx])
	})
	proto.Set("contains", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(indexOf(this(call).tokens(), call.Argument(0).String()) >= 0)
	})
	proto.Set("add", func(call goja.FunctionCall) goja.Value {
		t := this(call)
		toks := t.tokens()
		for _, arg := range call.Arguments {
			tok := arg.String()
			validate("add", tok)
			if indexOf(toks, tok) < 0 {
				toks = append(toks, tok)
			}
		}
		t.write(toks)
		return goja.Undefined()
	})
	proto.Set("remove", func(call goja.FunctionCall) goja.Value {
		t := this(call)
		toks := t.tokens()
		for _, arg := range call.Arguments {
			tok := arg.String()
			validate("remove", tok)
			if i := indexOf(toks, tok); i >= 0 {
				toks = append(toks[:i], toks[i+1:]...)
			}
		}
		if t.el.HasAttribute(t.attr) {
			t.write(toks)
		}
		return goja.Undefined()
	})
	proto.Set("toggle", func(call goja.FunctionCall) goja.Value {
		t := this(call)
		tok := call.Argument(0).String()
		validate("toggle", tok)
		toks := t.tokens()
		i := indexOf(toks, tok)
		force := call.Argument(1)
		if i >= 0 {
			if goja.IsUndefined(force) || !force.ToBoolean() {
				t.write(append(toks[:i], toks[i+1:]...))
				return vm.ToValue(false)
			}
			return vm.ToValue(true)
		}
		if goja.IsUndefined(force) || force.ToBoolean() {
			t.write(append(toks, tok))
			return vm.ToValue(true)
		}
		return vm.ToValue(false)
	})
	proto.Set("replace", func(call goja.FunctionCall) goja.Value {
		t := this(call)
		old, repl := call.Argument(0).String(), call.Argument(1).String()
		validate("replace", old)
		validate("replace", repl)
		toks := t.tokens()
		i := indexOf(toks, old)
		if i < 0 {
			return vm.ToValue(false)
		}
		toks[i] = repl
		t.write(toks)
		return vm.ToValue(true)
	})
	proto.Set("toString", func(call goja.FunctionCall) goja.Value {
		t := this(call)
		v, _ := t.el.GetAttribute(t.attr)
		return vm.ToValue(v)
	})
	proto.DefineDataPropertySymbol(goja.SymIterator, values, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
}
