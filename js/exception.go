package js

import (
	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// constructor returns a constructor object for an interface whose
// prototype is proto. A nil fn makes it throw "Illegal constructor".
func (r *Runtime) constructor(name string, proto *goja.Object, fn func(goja.ConstructorCall) *goja.Object) *goja.Object {
	vm := r.vm
	if fn == nil {
		fn = func(call goja.ConstructorCall) *goja.Object {
			panic(vm.NewTypeError("Illegal constructor"))
		}
	}
	ctor := vm.ToValue(fn).ToObject(vm)
	ctor.DefineDataProperty("name", vm.ToValue(name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	ctor.DefineDataProperty("prototype", proto, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	proto.DefineDataProperty("constructor", ctor, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	r.setToStringTag(proto, name)
	return ctor
}

// setToStringTag makes Object.prototype.toString report [object name].
func (r *Runtime) setToStringTag(obj *goja.Object, name string) {
	obj.DefineDataPropertySymbol(goja.SymToStringTag, r.vm.ToValue(name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
}

var exceptionConstants = []struct {
	name string
	code int
}{
	{"INDEX_SIZE_ERR", 1},
	{"DOMSTRING_SIZE_ERR", 2},
	{"HIERARCHY_REQUEST_ERR", 3},
	{"WRONG_DOCUMENT_ERR", 4},
	{"INVALID_CHARACTER_ERR", 5},
	{"NO_DATA_ALLOWED_ERR", 6},
	{"NO_MODIFICATION_ALLOWED_ERR", 7},
	{"NOT_FOUND_ERR", 8},
	{"NOT_SUPPORTED_ERR", 9},
	{"INUSE_ATTRIBUTE_ERR", 10},
	{"INVALID_STATE_ERR", 11},
	{"SYNTAX_ERR", 12},
	{"INVALID_MODIFICATION_ERR", 13},
	{"NAMESPACE_ERR", 14},
	{"INVALID_ACCESS_ERR", 15},
	{"VALIDATION_ERR", 16},
	{"TYPE_MISMATCH_ERR", 17},
	{"SECURITY_ERR", 18},
	{"NETWORK_ERR", 19},
	{"ABORT_ERR", 20},
	{"URL_MISMATCH_ERR", 21},
	{"QUOTA_EXCEEDED_ERR", 22},
	{"TIMEOUT_ERR", 23},
	{"INVALID_NODE_TYPE_ERR", 24},
	{"DATA_CLONE_ERR", 25},
}

// setupDOMException installs the DOMException constructor. Instances
// inherit from Error.prototype.
func (r *Runtime) setupDOMException() {
	vm := r.vm
	proto := vm.NewObject()
	errorProto := vm.Get("Error").ToObject(vm).Get("prototype").ToObject(vm)
	proto.SetPrototype(errorProto)

	ctor := r.constructor("DOMException", proto, func(call goja.ConstructorCall) *goja.Object {
		message := ""
		name := "Error"
		if v := call.Argument(0); !goja.IsUndefined(v) {
			message = v.String()
		}
		if v := call.Argument(1); !goja.IsUndefined(v) {
			name = v.String()
		}
		exc := call.This
		exc.Set("message", message)
		exc.Set("name", name)
		exc.Set("code", dom.ExceptionCode(name))
		return exc
	})
	for _, c := range exceptionConstants {
		ctor.DefineDataProperty(c.name, vm.ToValue(c.code), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)
		proto.DefineDataProperty(c.name, vm.ToValue(c.code), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	vm.Set("DOMException", ctor)
	r.exceptionCtor = ctor
}

// domException creates a DOMException instance.
func (r *Runtime) domException(name, message string) *goja.Object {
	exc, err := r.vm.New(r.exceptionCtor, r.vm.ToValue(message), r.vm.ToValue(name))
	if err != nil {
		fallback := r.vm.NewObject()
		fallback.Set("name", name)
		fallback.Set("message", message)
		fallback.Set("code", dom.ExceptionCode(name))
		return fallback
	}
	return exc
}

// throwDOMError throws a DOMException from a dom.DOMError and any other
// error as a TypeError.
func (r *Runtime) throwDOMError(err error) {
	if de, ok := err.(*dom.DOMError); ok {
		panic(r.domException(de.Name, de.Message))
	}
	panic(r.vm.NewTypeError(err.Error()))
}
