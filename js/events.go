package js

import (
	"sync"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
)

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// eventListener represents a registered event listener.
type eventListener struct {
	id      int
	value   goja.Value // function or object with handleEvent
	options listenerOptions
	removed bool
}

// listenerOptions represents addEventListener options.
type listenerOptions struct {
	capture bool
	once    bool
	passive bool
}

// EventTarget holds the listeners registered on one script object.
type EventTarget struct {
	listeners map[string][]*eventListener
	nextID    int
	mu        sync.RWMutex
}

// NewEventTarget creates a new EventTarget.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string][]*eventListener),
	}
}

// AddEventListener registers a listener unless an equal one is present.
func (et *EventTarget) AddEventListener(eventType string, value goja.Value, opts listenerOptions) {
	et.mu.Lock()
	defer et.mu.Unlock()

	for _, l := range et.listeners[eventType] {
		if l.value.SameAs(value) && l.options.capture == opts.capture {
			return
		}
	}
	et.nextID++
	et.listeners[eventType] = append(et.listeners[eventType], &eventListener{
		id:      et.nextID,
		value:   value,
		options: opts,
	})
}

// RemoveEventListener unregisters a listener. A listener removed during
// dispatch does not run afterwards.
func (et *EventTarget) RemoveEventListener(eventType string, value goja.Value, capture bool) {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.value.SameAs(value) && l.options.capture == capture {
			l.removed = true
			et.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

func (et *EventTarget) snapshot(eventType string) []*eventListener {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return append([]*eventListener(nil), et.listeners[eventType]...)
}

func (et *EventTarget) remove(eventType string, l *eventListener) {
	et.mu.Lock()
	defer et.mu.Unlock()
	l.removed = true
	listeners := et.listeners[eventType]
	for i, existing := range listeners {
		if existing.id == l.id {
			et.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

// HasEventListeners returns true if there are any listeners for the event type.
func (et *EventTarget) HasEventListeners(eventType string) bool {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return len(et.listeners[eventType]) > 0
}

// eventState is the Go side of a script Event object.
type eventState struct {
	typ           string
	bubbles       bool
	cancelable    bool
	trusted       bool
	initialized   bool
	dispatching   bool
	canceled      bool
	stop          bool
	stopImmediate bool
	inPassive     bool
	phase         EventPhase
	target        *goja.Object
	currentTarget *goja.Object
	path          []*goja.Object
	detail        goja.Value
	timeStamp     float64
}

// handlerEntry is the value of an event handler such as onclick. A handler
// compiled from a content attribute remembers its source so a changed
// attribute is recompiled.
type handlerEntry struct {
	value    goja.Value
	fromAttr bool
	source   string
}

// EventBinder implements event targets, Event objects and dispatch.
type EventBinder struct {
	runtime *Runtime

	targetMap map[*goja.Object]*EventTarget
	events    map[*goja.Object]*eventState
	handlers  map[*goja.Object]map[string]*handlerEntry

	eventProto       *goja.Object
	customEventProto *goja.Object
	targetProto      *goja.Object

	nodeResolver func(*goja.Object) *goja.Object
	attrResolver func(*goja.Object, string) (string, bool)
	nodeWrapper  func(*dom.Node) *goja.Object
	mu           sync.RWMutex
}

// NewEventBinder creates a new event binder.
func NewEventBinder(runtime *Runtime) *EventBinder {
	return &EventBinder{
		runtime:   runtime,
		targetMap: make(map[*goja.Object]*EventTarget),
		events:    make(map[*goja.Object]*eventState),
		handlers:  make(map[*goja.Object]map[string]*handlerEntry),
	}
}

// SetNodeResolver sets the function returning the next object on an
// event path, or nil at the end.
func (eb *EventBinder) SetNodeResolver(fn func(*goja.Object) *goja.Object) {
	eb.nodeResolver = fn
}

// SetHandlerAttributeResolver sets the function returning the source of
// the on<type> content attribute that backs an object's event handler.
func (eb *EventBinder) SetHandlerAttributeResolver(fn func(*goja.Object, string) (string, bool)) {
	eb.attrResolver = fn
}

// SetNodeWrapper sets the function mapping DOM nodes to script objects.
func (eb *EventBinder) SetNodeWrapper(fn func(*dom.Node) *goja.Object) {
	eb.nodeWrapper = fn
}

// GetOrCreateTarget gets or creates an EventTarget for a JS object.
func (eb *EventBinder) GetOrCreateTarget(obj *goja.Object) *EventTarget {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if target, ok := eb.targetMap[obj]; ok {
		return target
	}
	target := NewEventTarget()
	eb.targetMap[obj] = target
	return target
}

func (eb *EventBinder) thisTarget(call goja.FunctionCall) *goja.Object {
	if goja.IsUndefined(call.This) || goja.IsNull(call.This) {
		return eb.runtime.window
	}
	return call.This.ToObject(eb.runtime.vm)
}

func (eb *EventBinder) parseOptions(arg goja.Value) listenerOptions {
	var opts listenerOptions
	if arg == nil || goja.IsUndefined(arg) || goja.IsNull(arg) {
		return opts
	}
	obj, ok := arg.(*goja.Object)
	if !ok {
		opts.capture = arg.ToBoolean()
		return opts
	}
	if v := obj.Get("capture"); v != nil {
		opts.capture = v.ToBoolean()
	}
	if v := obj.Get("once"); v != nil {
		opts.once = v.ToBoolean()
	}
	if v := obj.Get("passive"); v != nil {
		opts.passive = v.ToBoolean()
	}
	return opts
}

// BindEventTarget adds the EventTarget methods to obj.
func (eb *EventBinder) BindEventTarget(obj *goja.Object) {
	vm := eb.runtime.vm

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("Failed to execute 'addEventListener' on 'EventTarget': 2 arguments required, but only %d present.", len(call.Arguments)))
		}
		callback := call.Arguments[1]
		if _, ok := callback.(*goja.Object); !ok {
			return goja.Undefined()
		}
		target := eb.GetOrCreateTarget(eb.thisTarget(call))
		target.AddEventListener(call.Arguments[0].String(), callback, eb.parseOptions(call.Argument(2)))
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("Failed to execute 'removeEventListener' on 'EventTarget': 2 arguments required, but only %d present.", len(call.Arguments)))
		}
		callback := call.Arguments[1]
		if _, ok := callback.(*goja.Object); !ok {
			return goja.Undefined()
		}
		target := eb.GetOrCreateTarget(eb.thisTarget(call))
		target.RemoveEventListener(call.Arguments[0].String(), callback, eb.parseOptions(call.Argument(2)).capture)
		return goja.Undefined()
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		evObj, ok := call.Argument(0).(*goja.Object)
		ev := eb.eventOf(evObj)
		if !ok || ev == nil {
			panic(vm.NewTypeError("Failed to execute 'dispatchEvent' on 'EventTarget': parameter 1 is not of type 'Event'."))
		}
		if ev.dispatching || !ev.initialized {
			panic(eb.runtime.domException("InvalidStateError", "The event is already being dispatched."))
		}
		ev.trusted = false
		return vm.ToValue(eb.dispatch(eb.thisTarget(call), evObj, ev))
	})
}

func (eb *EventBinder) eventOf(obj *goja.Object) *eventState {
	if obj == nil {
		return nil
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.events[obj]
}

// path returns the event path starting at target.
func (eb *EventBinder) path(target *goja.Object) []*goja.Object {
	path := []*goja.Object{target}
	if eb.nodeResolver == nil {
		return path
	}
	for p := eb.nodeResolver(target); p != nil; p = eb.nodeResolver(p) {
		path = append(path, p)
	}
	return path
}

// dispatch runs the capture, target and bubble phases and reports whether
// the event was not canceled.
func (eb *EventBinder) dispatch(target, evObj *goja.Object, ev *eventState) bool {
	ev.dispatching = true
	ev.target = target
	ev.path = eb.path(target)

	for i := len(ev.path) - 1; i > 0 && !ev.stop; i-- {
		ev.phase = EventPhaseCapturing
		eb.invoke(ev.path[i], evObj, ev, true)
	}
	if !ev.stop {
		ev.phase = EventPhaseAtTarget
		eb.invoke(target, evObj, ev, true)
		if !ev.stop {
			eb.invoke(target, evObj, ev, false)
		}
	}
	if ev.bubbles {
		for i := 1; i < len(ev.path) && !ev.stop; i++ {
			ev.phase = EventPhaseBubbling
			eb.invoke(ev.path[i], evObj, ev, false)
		}
	}

	ev.phase = EventPhaseNone
	ev.currentTarget = nil
	ev.dispatching = false
	ev.stop = false
	ev.stopImmediate = false
	return !ev.canceled
}

func (eb *EventBinder) invoke(obj, evObj *goja.Object, ev *eventState, capture bool) {
	vm := eb.runtime.vm
	ev.currentTarget = obj

	if !capture {
		if fn := eb.handlerFunc(obj, ev.typ); fn != nil {
			ret := eb.runtime.call(fn, obj, evObj)
			if ret != nil && ret.StrictEquals(vm.ToValue(false)) && ev.cancelable {
				ev.canceled = true
			}
			if ev.stopImmediate {
				return
			}
		}
	}

	eb.mu.RLock()
	target := eb.targetMap[obj]
	eb.mu.RUnlock()
	if target == nil {
		return
	}
	for _, l := range target.snapshot(ev.typ) {
		if l.removed || l.options.capture != capture {
			continue
		}
		if l.options.once {
			target.remove(ev.typ, l)
		}
		ev.inPassive = l.options.passive
		eb.callListener(obj, evObj, l.value)
		ev.inPassive = false
		if ev.stopImmediate {
			return
		}
	}
}

func (eb *EventBinder) callListener(this, evObj *goja.Object, value goja.Value) {
	if fn, ok := goja.AssertFunction(value); ok {
		eb.runtime.call(fn, this, evObj)
		return
	}
	obj, ok := value.(*goja.Object)
	if !ok {
		return
	}
	if fn, ok := goja.AssertFunction(obj.Get("handleEvent")); ok {
		eb.runtime.call(fn, obj, evObj)
	}
}

// GetHandler returns the event handler of obj for eventType, compiling the
// content attribute when no handler was assigned.
func (eb *EventBinder) GetHandler(obj *goja.Object, eventType string) goja.Value {
	if fn := eb.handlerValue(obj, eventType); fn != nil {
		return fn
	}
	return goja.Null()
}

// SetHandler assigns an event handler. Non-callable values clear it.
func (eb *EventBinder) SetHandler(obj *goja.Object, eventType string, value goja.Value) {
	if _, ok := goja.AssertFunction(value); !ok {
		value = goja.Null()
	}
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.handlers[obj] == nil {
		eb.handlers[obj] = make(map[string]*handlerEntry)
	}
	eb.handlers[obj][eventType] = &handlerEntry{value: value}
}

// AttributeChanged drops a handler compiled from an on<type> attribute so
// the next access recompiles it.
func (eb *EventBinder) AttributeChanged(obj *goja.Object, eventType string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.handlers[obj], eventType)
}

func (eb *EventBinder) handlerValue(obj *goja.Object, eventType string) goja.Value {
	eb.mu.RLock()
	entry := eb.handlers[obj][eventType]
	eb.mu.RUnlock()

	if entry != nil && !entry.fromAttr {
		if goja.IsNull(entry.value) {
			return nil
		}
		return entry.value
	}
	if eb.attrResolver == nil {
		return nil
	}
	source, ok := eb.attrResolver(obj, eventType)
	if !ok {
		return nil
	}
	if entry != nil && entry.source == source {
		return entry.value
	}

	fn := eb.compileHandler(eventType, source)
	eb.mu.Lock()
	if eb.handlers[obj] == nil {
		eb.handlers[obj] = make(map[string]*handlerEntry)
	}
	eb.handlers[obj][eventType] = &handlerEntry{value: fn, fromAttr: true, source: source}
	eb.mu.Unlock()
	return fn
}

func (eb *EventBinder) handlerFunc(obj *goja.Object, eventType string) goja.Callable {
	v := eb.handlerValue(obj, eventType)
	if v == nil {
		return nil
	}
	fn, _ := goja.AssertFunction(v)
	return fn
}

// compileHandler turns attribute source into a function of event. A
// syntax error is reported and yields no handler.
func (eb *EventBinder) compileHandler(eventType, source string) goja.Value {
	name := "on" + eventType
	program, err := goja.Compile(name, "(function "+name+"(event) {\n"+source+"\n})", false)
	if err != nil {
		eb.runtime.reportError(err)
		return nil
	}
	v, err := eb.runtime.vm.RunProgram(program)
	if err != nil {
		eb.runtime.reportError(err)
		return nil
	}
	return v
}

// EventOptions are the flags of an event created from Go.
type EventOptions struct {
	Bubbles    bool
	Cancelable bool
}

// CreateEvent creates an initialized Event object.
func (eb *EventBinder) CreateEvent(eventType string, opts EventOptions) *goja.Object {
	obj := eb.runtime.vm.NewObject()
	obj.SetPrototype(eb.eventProto)
	eb.register(obj, &eventState{
		typ:         eventType,
		bubbles:     opts.Bubbles,
		cancelable:  opts.Cancelable,
		initialized: true,
		timeStamp:   eb.timeStamp(),
	})
	return obj
}

func (eb *EventBinder) register(obj *goja.Object, ev *eventState) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.events[obj] = ev
}

func (eb *EventBinder) timeStamp() float64 {
	return float64(eb.runtime.timers.now().Microseconds()) / 1000
}

// FireEvent dispatches a trusted event at obj and reports whether it was
// not canceled.
func (eb *EventBinder) FireEvent(obj *goja.Object, eventType string, opts EventOptions) bool {
	evObj := eb.CreateEvent(eventType, opts)
	ev := eb.eventOf(evObj)
	ev.trusted = true
	return eb.dispatch(obj, evObj, ev)
}

// DispatchEvent fires a trusted event at a DOM node.
func (eb *EventBinder) DispatchEvent(target *dom.Node, eventType string, init dom.EventInit) bool {
	if eb.nodeWrapper == nil {
		return true
	}
	return eb.FireEvent(eb.nodeWrapper(target), eventType, EventOptions{Bubbles: init.Bubbles, Cancelable: init.Cancelable})
}

// QueueEvent fires a trusted event at a DOM node from a task.
func (eb *EventBinder) QueueEvent(target *dom.Node, eventType string, init dom.EventInit) {
	eb.runtime.eventLoop.queueMacrotask(func() {
		eb.DispatchEvent(target, eventType, init)
	})
}

// SetupEventConstructors installs EventTarget, Event and CustomEvent.
func (eb *EventBinder) SetupEventConstructors() {
	vm := eb.runtime.vm

	eb.targetProto = vm.NewObject()
	eb.BindEventTarget(eb.targetProto)
	targetCtor := eb.runtime.constructor("EventTarget", eb.targetProto, func(call goja.ConstructorCall) *goja.Object {
		return call.This
	})
	vm.Set("EventTarget", targetCtor)

	eb.eventProto = vm.NewObject()
	eb.defineEventPrototype(eb.eventProto)
	eventCtor := eb.runtime.constructor("Event", eb.eventProto, func(call goja.ConstructorCall) *goja.Object {
		eb.construct(call, "Event")
		return call.This
	})
	setPhaseConstants(eventCtor)
	setPhaseConstants(eb.eventProto)
	vm.Set("Event", eventCtor)

	eb.customEventProto = vm.NewObject()
	eb.customEventProto.SetPrototype(eb.eventProto)
	eb.customEventProto.DefineAccessorProperty("detail", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		if ev.detail == nil {
			return goja.Null()
		}
		return ev.detail
	}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	eb.customEventProto.Set("initCustomEvent", func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		if !ev.dispatching {
			eb.initEvent(ev, call)
			ev.detail = call.Argument(3)
		}
		return goja.Undefined()
	})
	eb.runtime.setToStringTag(eb.customEventProto, "CustomEvent")
	customCtor := eb.runtime.constructor("CustomEvent", eb.customEventProto, func(call goja.ConstructorCall) *goja.Object {
		ev := eb.construct(call, "CustomEvent")
		if init, ok := call.Argument(1).(*goja.Object); ok {
			if v := init.Get("detail"); v != nil && !goja.IsUndefined(v) {
				ev.detail = v
			}
		}
		return call.This
	})
	vm.Set("CustomEvent", customCtor)
}

func setPhaseConstants(obj *goja.Object) {
	obj.Set("NONE", int(EventPhaseNone))
	obj.Set("CAPTURING_PHASE", int(EventPhaseCapturing))
	obj.Set("AT_TARGET", int(EventPhaseAtTarget))
	obj.Set("BUBBLING_PHASE", int(EventPhaseBubbling))
}

func (eb *EventBinder) construct(call goja.ConstructorCall, iface string) *eventState {
	vm := eb.runtime.vm
	if len(call.Arguments) < 1 {
		panic(vm.NewTypeError("Failed to construct '%s': 1 argument required, but only 0 present.", iface))
	}
	ev := &eventState{
		typ:         call.Arguments[0].String(),
		initialized: true,
		timeStamp:   eb.timeStamp(),
	}
	if init, ok := call.Argument(1).(*goja.Object); ok {
		if v := init.Get("bubbles"); v != nil {
			ev.bubbles = v.ToBoolean()
		}
		if v := init.Get("cancelable"); v != nil {
			ev.cancelable = v.ToBoolean()
		}
	}
	eb.register(call.This, ev)
	return ev
}

func (eb *EventBinder) mustEvent(call goja.FunctionCall) *eventState {
	obj, _ := call.This.(*goja.Object)
	ev := eb.eventOf(obj)
	if ev == nil {
		panic(eb.runtime.vm.NewTypeError("Illegal invocation"))
	}
	return ev
}

func (eb *EventBinder) initEvent(ev *eventState, call goja.FunctionCall) {
	ev.typ = call.Argument(0).String()
	ev.bubbles = call.Argument(1).ToBoolean()
	ev.cancelable = call.Argument(2).ToBoolean()
	ev.initialized = true
	ev.canceled = false
	ev.stop = false
	ev.stopImmediate = false
	ev.target = nil
}

// createUninitializedEvent backs document.createEvent.
func (eb *EventBinder) createUninitializedEvent(custom bool) *goja.Object {
	obj := eb.runtime.vm.NewObject()
	if custom {
		obj.SetPrototype(eb.customEventProto)
	} else {
		obj.SetPrototype(eb.eventProto)
	}
	eb.register(obj, &eventState{timeStamp: eb.timeStamp()})
	return obj
}

func (eb *EventBinder) defineEventPrototype(proto *goja.Object) {
	vm := eb.runtime.vm
	getter := func(name string, fn func(ev *eventState) goja.Value) {
		proto.DefineAccessorProperty(name, vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return fn(eb.mustEvent(call))
		}), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	}
	objOrNull := func(o *goja.Object) goja.Value {
		if o == nil {
			return goja.Null()
		}
		return o
	}

	getter("type", func(ev *eventState) goja.Value { return vm.ToValue(ev.typ) })
	getter("target", func(ev *eventState) goja.Value { return objOrNull(ev.target) })
	getter("srcElement", func(ev *eventState) goja.Value { return objOrNull(ev.target) })
	getter("currentTarget", func(ev *eventState) goja.Value { return objOrNull(ev.currentTarget) })
	getter("eventPhase", func(ev *eventState) goja.Value { return vm.ToValue(int(ev.phase)) })
	getter("bubbles", func(ev *eventState) goja.Value { return vm.ToValue(ev.bubbles) })
	getter("cancelable", func(ev *eventState) goja.Value { return vm.ToValue(ev.cancelable) })
	getter("defaultPrevented", func(ev *eventState) goja.Value { return vm.ToValue(ev.canceled) })
	getter("composed", func(ev *eventState) goja.Value { return vm.ToValue(false) })
	getter("isTrusted", func(ev *eventState) goja.Value { return vm.ToValue(ev.trusted) })
	getter("timeStamp", func(ev *eventState) goja.Value { return vm.ToValue(ev.timeStamp) })

	proto.DefineAccessorProperty("returnValue", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(!eb.mustEvent(call).canceled)
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		if !call.Argument(0).ToBoolean() && ev.cancelable && !ev.inPassive {
			ev.canceled = true
		}
		return goja.Undefined()
	}), goja.FLAG_TRUE, goja.FLAG_TRUE)

	proto.DefineAccessorProperty("cancelBubble", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(eb.mustEvent(call).stop)
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if call.Argument(0).ToBoolean() {
			eb.mustEvent(call).stop = true
		}
		return goja.Undefined()
	}), goja.FLAG_TRUE, goja.FLAG_TRUE)

	proto.Set("preventDefault", func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		if ev.cancelable && !ev.inPassive {
			ev.canceled = true
		}
		return goja.Undefined()
	})
	proto.Set("stopPropagation", func(call goja.FunctionCall) goja.Value {
		eb.mustEvent(call).stop = true
		return goja.Undefined()
	})
	proto.Set("stopImmediatePropagation", func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		ev.stop = true
		ev.stopImmediate = true
		return goja.Undefined()
	})
	proto.Set("composedPath", func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		if !ev.dispatching {
			return vm.NewArray()
		}
		items := make([]interface{}, len(ev.path))
		for i, o := range ev.path {
			items[i] = o
		}
		return vm.NewArray(items...)
	})
	proto.Set("initEvent", func(call goja.FunctionCall) goja.Value {
		ev := eb.mustEvent(call)
		if !ev.dispatching {
			eb.initEvent(ev, call)
		}
		return goja.Undefined()
	})
	eb.runtime.setToStringTag(proto, "Event")
}

// ClearTargets clears all event target registrations.
func (eb *EventBinder) ClearTargets() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.targetMap = make(map[*goja.Object]*EventTarget)
	eb.handlers = make(map[*goja.Object]map[string]*handlerEntry)
}
