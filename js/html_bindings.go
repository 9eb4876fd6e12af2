package js

import (
	"strings"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// optionalString returns nil for an undefined argument.
func optionalString(v goja.Value) *string {
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	s := v.String()
	return &s
}

func (b *DOMBinder) bindFormPrototypes() {
	b.bindSelectPrototype(b.protos["HTMLSelectElement"])
	b.bindOptionPrototype(b.protos["HTMLOptionElement"])
	b.bindInputPrototype(b.protos["HTMLInputElement"])
	b.bindTextAreaPrototype(b.protos["HTMLTextAreaElement"])
}

func (b *DOMBinder) bindSelectPrototype(proto *goja.Object) {
	vm := b.runtime.vm
	const iface = "HTMLSelectElement"

	b.accessor(proto, "options", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "options", func() *goja.Object { return b.newOptionsCollection(n.Options()) })
	}, nil)
	b.accessor(proto, "length", func(n *dom.Node) goja.Value {
		return vm.ToValue(n.Options().Length())
	}, func(n *dom.Node, v goja.Value) {
		n.Options().SetLength(toUint32(v))
	})
	b.accessor(proto, "selectedIndex", func(n *dom.Node) goja.Value {
		return vm.ToValue(n.SelectedIndex())
	}, func(n *dom.Node, v goja.Value) {
		n.SetSelectedIndex(int(toInt32(v)))
	})
	b.accessor(proto, "value", func(n *dom.Node) goja.Value {
		return b.str(n.SelectValue())
	}, func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		n.SetSelectValue(v.String())
	})
	b.accessor(proto, "type", func(n *dom.Node) goja.Value { return b.str(n.SelectType()) }, nil)
	b.accessor(proto, "selectedOptions", func(n *dom.Node) goja.Value {
		return b.cachedObject(n, "selectedOptions", func() *goja.Object { return b.newHTMLCollection(n.SelectedOptions()) })
	}, nil)
	b.accessor(proto, "form", func(n *dom.Node) goja.Value { return b.BindNode(formOwner(n)) }, nil)

	b.method(proto, "add", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "add", iface)
		b.addOption(n.Options(), call.Argument(0), call.Argument(1), iface)
		return goja.Undefined()
	})
	b.method(proto, "remove", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			n.Remove()
			return goja.Undefined()
		}
		n.Options().Remove(int(toInt32(call.Arguments[0])))
		return goja.Undefined()
	})
	b.method(proto, "item", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "item", iface)
		idx := toUint32(call.Arguments[0])
		if int64(idx) >= int64(n.Options().Length()) {
			return goja.Null()
		}
		return b.BindNode(n.Options().Item(int(idx)))
	})
	b.method(proto, "namedItem", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "namedItem", iface)
		return b.BindNode(n.Options().NamedItem(call.Arguments[0].String()))
	})
}

// formOwner returns the nearest form ancestor of a control.
func formOwner(n *dom.Node) *dom.Node {
	for p := n.ParentElement(); p != nil; p = p.ParentElement() {
		if p.Is("form") {
			return p
		}
	}
	return nil
}

func (b *DOMBinder) bindOptionPrototype(proto *goja.Object) {
	vm := b.runtime.vm

	b.accessor(proto, "selected", func(n *dom.Node) goja.Value {
		return vm.ToValue(n.OptionSelected())
	}, func(n *dom.Node, v goja.Value) {
		n.SetOptionSelected(v.ToBoolean())
	})
	b.accessor(proto, "value", func(n *dom.Node) goja.Value {
		return b.str(n.OptionValue())
	}, func(n *dom.Node, v goja.Value) {
		_ = n.SetAttribute("value", v.String())
	})
	b.accessor(proto, "text", func(n *dom.Node) goja.Value {
		return b.str(n.OptionText())
	}, func(n *dom.Node, v goja.Value) {
		n.SetTextContent(v.String())
	})
	b.accessor(proto, "label", func(n *dom.Node) goja.Value {
		return b.str(n.OptionLabel())
	}, func(n *dom.Node, v goja.Value) {
		_ = n.SetAttribute("label", v.String())
	})
	b.accessor(proto, "index", func(n *dom.Node) goja.Value { return vm.ToValue(n.OptionIndex()) }, nil)
	b.accessor(proto, "form", func(n *dom.Node) goja.Value { return b.BindNode(formOwner(n)) }, nil)
}

// constructOption implements new Option(text, value, defaultSelected,
// selected).
func (b *DOMBinder) constructOption(call goja.ConstructorCall) *goja.Object {
	doc := b.ensureDocument()
	opt := doc.CreateElement("option")
	if text := call.Argument(0); !goja.IsUndefined(text) {
		if s := text.String(); s != "" {
			_, _ = opt.AppendChild(doc.CreateTextNode(s))
		}
	}
	if value := call.Argument(1); !goja.IsUndefined(value) {
		_ = opt.SetAttribute("value", value.String())
	}
	defaultSelected, selected := call.Argument(2).ToBoolean(), call.Argument(3).ToBoolean()
	if defaultSelected {
		_ = opt.SetAttribute("selected", "")
	}
	if defaultSelected || selected {
		opt.SetOptionSelected(selected)
	}
	return b.objectFor(opt)
}

var inputTypes = map[string]bool{
	"hidden": true, "text": true, "search": true, "tel": true, "url": true,
	"email": true, "password": true, "date": true, "month": true, "week": true,
	"time": true, "datetime-local": true, "number": true, "range": true,
	"color": true, "checkbox": true, "radio": true, "file": true,
	"submit": true, "image": true, "reset": true, "button": true,
}

func inputType(n *dom.Node) string {
	t := strings.ToLower(n.AttributeOr("type", ""))
	if inputTypes[t] {
		return t
	}
	return "text"
}

func (b *DOMBinder) bindInputPrototype(proto *goja.Object) {
	vm := b.runtime.vm

	b.accessor(proto, "type", func(n *dom.Node) goja.Value {
		return b.str(inputType(n))
	}, func(n *dom.Node, v goja.Value) {
		_ = n.SetAttribute("type", v.String())
	})
	b.accessor(proto, "value", func(n *dom.Node) goja.Value {
		if v, ok := b.inputValues[n]; ok {
			return b.str(v)
		}
		v := n.AttributeOr("value", "")
		if v == "" && (inputType(n) == "checkbox" || inputType(n) == "radio") && !n.HasAttribute("value") {
			v = "on"
		}
		return b.str(v)
	}, func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		b.inputValues[n] = v.String()
	})
	b.accessor(proto, "checked", func(n *dom.Node) goja.Value {
		if c, ok := b.inputChecked[n]; ok {
			return vm.ToValue(c)
		}
		return vm.ToValue(n.HasAttribute("checked"))
	}, func(n *dom.Node, v goja.Value) {
		b.inputChecked[n] = v.ToBoolean()
	})
	b.accessor(proto, "form", func(n *dom.Node) goja.Value { return b.BindNode(formOwner(n)) }, nil)
}

func (b *DOMBinder) bindTextAreaPrototype(proto *goja.Object) {
	b.accessor(proto, "type", func(n *dom.Node) goja.Value { return b.str("textarea") }, nil)
	b.accessor(proto, "defaultValue", func(n *dom.Node) goja.Value {
		return b.str(n.TextContent())
	}, func(n *dom.Node, v goja.Value) {
		n.SetTextContent(v.String())
	})
	b.accessor(proto, "value", func(n *dom.Node) goja.Value {
		if v, ok := b.inputValues[n]; ok {
			return b.str(v)
		}
		return b.str(n.TextContent())
	}, func(n *dom.Node, v goja.Value) {
		if goja.IsNull(v) {
			v = b.str("")
		}
		b.inputValues[n] = v.String()
	})
	b.accessor(proto, "form", func(n *dom.Node) goja.Value { return b.BindNode(formOwner(n)) }, nil)
}

func (b *DOMBinder) bindDialogPrototype(proto *goja.Object) {
	b.accessor(proto, "returnValue", func(n *dom.Node) goja.Value {
		return b.str(n.ReturnValue())
	}, func(n *dom.Node, v goja.Value) {
		n.SetReturnValue(v.String())
	})
	b.method(proto, "show", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		if err := n.Show(); err != nil {
			b.runtime.throwDOMError(err)
		}
		return goja.Undefined()
	})
	b.method(proto, "showModal", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		if err := n.ShowModal(); err != nil {
			b.runtime.throwDOMError(err)
		}
		return goja.Undefined()
	})
	b.method(proto, "close", func(n *dom.Node, call goja.FunctionCall) goja.Value {
		n.CloseDialog(optionalString(call.Argument(0)))
		return goja.Undefined()
	})
	if b.runtime.profile.Quirks.DialogRequestClose {
		b.method(proto, "requestClose", func(n *dom.Node, call goja.FunctionCall) goja.Value {
			n.RequestClose(optionalString(call.Argument(0)))
			return goja.Undefined()
		})
	}
}

// bindLinkPrototypes adds href handling to a, area and link elements.
func (b *DOMBinder) bindLinkPrototypes() {
	for _, iface := range []string{"HTMLAnchorElement", "HTMLAreaElement", "HTMLLinkElement"} {
		proto := b.protos[iface]
		b.accessor(proto, "href", func(n *dom.Node) goja.Value {
			return b.str(b.resolveHref(n))
		}, func(n *dom.Node, v goja.Value) {
			_ = n.SetAttribute("href", v.String())
		})
		if iface == "HTMLLinkElement" {
			continue
		}
		b.method(proto, "toString", func(n *dom.Node, call goja.FunctionCall) goja.Value {
			return b.str(b.resolveHref(n))
		})
	}
}

// resolveHref returns the href attribute resolved against the document URL.
func (b *DOMBinder) resolveHref(n *dom.Node) string {
	href, ok := n.GetAttribute("href")
	if !ok {
		return ""
	}
	return resolveURL(n.Document().URL(), href)
}
