package js

import (
	"strconv"
	"strings"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// cssProperties are the CSS properties exposed as camel-cased properties
// of CSSStyleDeclaration.
var cssProperties = map[string]bool{}

func init() {
	for _, p := range strings.Fields(`
		align-content align-items align-self animation background
		background-attachment background-color background-image
		background-position background-repeat background-size border
		border-bottom border-bottom-color border-bottom-style
		border-bottom-width border-collapse border-color border-left
		border-left-color border-left-style border-left-width border-radius
		border-right border-right-color border-right-style border-right-width
		border-spacing border-style border-top border-top-color
		border-top-style border-top-width border-width bottom box-shadow
		box-sizing caption-side clear clip color content cursor direction
		display empty-cells flex flex-basis flex-direction flex-flow
		flex-grow flex-shrink flex-wrap float font font-family font-size
		font-style font-variant font-weight gap grid grid-area
		grid-template-columns grid-template-rows height justify-content left
		letter-spacing line-height list-style list-style-image
		list-style-position list-style-type margin margin-bottom margin-left
		margin-right margin-top max-height max-width min-height min-width
		opacity order outline outline-color outline-style outline-width
		overflow overflow-x overflow-y padding padding-bottom padding-left
		padding-right padding-top page-break-after page-break-before position
		quotes right table-layout text-align text-decoration text-indent
		text-overflow text-shadow text-transform top transform transition
		unicode-bidi vertical-align visibility white-space width word-break
		word-spacing word-wrap z-index zoom`) {
		cssProperties[p] = true
	}
}

// styleProperty maps a script property name to a CSS property, reporting
// false for names that are not style properties.
func styleProperty(key string) (string, bool) {
	if strings.Contains(key, "-") {
		return key, cssProperties[key]
	}
	name := dom.CSSPropertyName(key)
	return name, cssProperties[name]
}

// styleObject is the CSSStyleDeclaration of an element's style attribute.
type styleObject struct {
	b     *DOMBinder
	el    *dom.Node
	proto *goja.Object
}

func (s *styleObject) decl() *dom.StyleDeclaration {
	return s.el.Style()
}

func (s *styleObject) Get(key string) goja.Value {
	if idx, ok := arrayIndex(key); ok {
		if int64(idx) < int64(s.decl().Length()) {
			return s.b.str(s.decl().Item(int(idx)))
		}
		return nil
	}
	if s.b.protoHas(s.proto, key) {
		return nil
	}
	if name, ok := styleProperty(key); ok {
		return s.b.str(s.decl().GetPropertyValue(name))
	}
	return nil
}

func (s *styleObject) Set(key string, val goja.Value) bool {
	if _, ok := arrayIndex(key); ok {
		return false
	}
	if key == "cssText" {
		s.decl().SetCSSText(val.String())
		return true
	}
	if name, ok := styleProperty(key); ok {
		v := ""
		if !goja.IsNull(val) {
			v = val.String()
		}
		s.decl().SetProperty(name, v, "")
		return true
	}
	return false
}

func (s *styleObject) Has(key string) bool {
	if idx, ok := arrayIndex(key); ok {
		return int64(idx) < int64(s.decl().Length())
	}
	_, ok := styleProperty(key)
	return ok
}

func (s *styleObject) Delete(key string) bool {
	return !s.Has(key)
}

func (s *styleObject) Keys() []string {
	n := s.decl().Length()
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

func (b *DOMBinder) newStyleObject(el *dom.Node) *goja.Object {
	s := &styleObject{b: b, el: el, proto: b.protos["CSSStyleDeclaration"]}
	obj := b.runtime.vm.NewDynamicObject(s)
	obj.SetPrototype(s.proto)
	b.styles[obj] = s
	return obj
}

func (b *DOMBinder) setupStylePrototype() {
	vm := b.runtime.vm
	proto := b.defineInterface("CSSStyleDeclaration", "", nil)
	this := func(call goja.FunctionCall) *dom.StyleDeclaration {
		if obj, ok := call.This.(*goja.Object); ok {
			if s, ok := b.styles[obj]; ok {
				return s.decl()
			}
		}
		panic(vm.NewTypeError("Illegal invocation"))
	}

	proto.DefineAccessorProperty("cssText", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(this(call).CSSText())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		this(call).SetCSSText(call.Argument(0).String())
		return goja.Undefined()
	}), goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.DefineAccessorProperty("length", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(this(call).Length())
	}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	proto.Set("item", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(this(call).Item(int(toUint32(call.Argument(0)))))
	})
	proto.Set("getPropertyValue", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(this(call).GetPropertyValue(call.Argument(0).String()))
	})
	proto.Set("getPropertyPriority", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(this(call).GetPropertyPriority(call.Argument(0).String()))
	})
	proto.Set("setProperty", func(call goja.FunctionCall) goja.Value {
		priority := ""
		if v := call.Argument(2); !goja.IsUndefined(v) {
			priority = v.String()
		}
		value := ""
		if v := call.Argument(1); !goja.IsNull(v) && !goja.IsUndefined(v) {
			value = v.String()
		}
		this(call).SetProperty(call.Argument(0).String(), value, priority)
		return goja.Undefined()
	})
	proto.Set("removeProperty", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(this(call).RemoveProperty(call.Argument(0).String()))
	})
}
