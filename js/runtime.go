// Package js runs page scripts in the goja JavaScript engine and exposes the
// DOM to them as browser host objects.
package js

import (
	"strings"
	"sync"
	"time"

	"github.com/chrisuehlinger/htmlemu/browser"
	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Runtime wraps a goja runtime with the window globals of a browser page.
type Runtime struct {
	vm        *goja.Runtime
	profile   *browser.Profile
	log       zerolog.Logger
	window    *goja.Object
	timers    *timerManager
	eventLoop *eventLoop

	exceptionCtor *goja.Object

	mu      sync.Mutex
	errors  []error
	alerts  []string
	onError func(error)
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithProfile selects the browser profile that shapes navigator and quirks.
func WithProfile(p *browser.Profile) RuntimeOption {
	return func(r *Runtime) {
		r.profile = p
	}
}

// WithLogger sets the logger used for console output and script errors.
func WithLogger(log zerolog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.log = log
	}
}

// NewRuntime creates a new JavaScript runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		vm:        goja.New(),
		profile:   browser.Default(),
		log:       zerolog.Nop(),
		timers:    newTimerManager(),
		eventLoop: newEventLoop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.setupConsole()
	r.setupDOMException()
	r.setupTimers()
	r.setupWindow()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Profile returns the browser profile of the runtime.
func (r *Runtime) Profile() *browser.Profile {
	return r.profile
}

// Window returns the global object.
func (r *Runtime) Window() *goja.Object {
	return r.window
}

// SetOnError sets a callback for JavaScript errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

func (r *Runtime) reportError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()

	r.log.Warn().Err(err).Msg("script error")
	if handler != nil {
		handler(err)
	}
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("script execution panic: %v", p)
			r.reportError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.reportError(err)
	}
	return result, err
}

// ExecuteScript compiles and runs the code of a script element in sloppy
// mode. src names the script in error messages.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("script compilation panic in %s: %v", src, p)
			r.reportError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		err = errors.Wrapf(err, "compile %s", src)
		r.reportError(err)
		return err
	}
	if _, err = r.vm.RunProgram(program); err != nil {
		err = errors.Wrap(err, src)
		r.reportError(err)
	}
	return err
}

// call invokes a callback, reporting a thrown exception.
func (r *Runtime) call(fn goja.Callable, this goja.Value, args ...goja.Value) goja.Value {
	v, err := r.safeCall(fn, this, args...)
	if err != nil {
		r.reportError(err)
		return nil
	}
	return v
}

func (r *Runtime) safeCall(fn goja.Callable, this goja.Value, args ...goja.Value) (v goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("callback panic: %v", p)
		}
	}()
	return fn(this, args...)
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

// Alerts returns the messages passed to alert, in call order.
func (r *Runtime) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.alerts...)
}

// HasPendingWork returns true if there are timers or tasks waiting.
func (r *Runtime) HasPendingWork() bool {
	return r.timers.hasPending() || r.eventLoop.hasPending()
}

// Now returns the virtual time elapsed since the runtime was created.
func (r *Runtime) Now() time.Duration {
	return r.timers.now()
}

// setupConsole maps console methods onto log levels.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	logAt := func(level zerolog.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			r.log.WithLevel(level).Str("source", "console").Msg(formatArgs(call.Arguments))
			return goja.Undefined()
		}
	}
	console.Set("log", logAt(zerolog.InfoLevel))
	console.Set("info", logAt(zerolog.InfoLevel))
	console.Set("warn", logAt(zerolog.WarnLevel))
	console.Set("error", logAt(zerolog.ErrorLevel))
	console.Set("debug", logAt(zerolog.DebugLevel))
	console.Set("trace", logAt(zerolog.TraceLevel))

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			msg := "Assertion failed"
			if len(call.Arguments) > 1 {
				msg += ": " + formatArgs(call.Arguments[1:])
			}
			r.log.Error().Str("source", "console").Msg(msg)
		}
		return goja.Undefined()
	})

	counts := make(map[string]int)
	console.Set("count", func(call goja.FunctionCall) goja.Value {
		label := "default"
		if len(call.Arguments) > 0 {
			label = call.Arguments[0].String()
		}
		counts[label]++
		r.log.Info().Str("source", "console").Msgf("%s: %d", label, counts[label])
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// setupTimers creates setTimeout, setInterval, clearTimeout, clearInterval.
func (r *Runtime) setupTimers() {
	schedule := func(call goja.FunctionCall, repeat bool) goja.Value {
		if len(call.Arguments) < 1 {
			return r.vm.ToValue(0)
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			// A string handler is evaluated as script when the timer fires.
			code := call.Arguments[0].String()
			callback = func(goja.Value, ...goja.Value) (goja.Value, error) {
				return r.vm.RunString(code)
			}
		}

		delay := int64(0)
		if len(call.Arguments) > 1 {
			delay = call.Arguments[1].ToInteger()
		}
		if delay < 0 {
			delay = 0
		}
		if repeat && delay < 4 {
			delay = 4
		}

		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = call.Arguments[2:]
		}
		d := time.Duration(delay) * time.Millisecond
		if repeat {
			return r.vm.ToValue(r.timers.setInterval(callback, d, args))
		}
		return r.vm.ToValue(r.timers.setTimeout(callback, d, args))
	}
	cancel := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.timers.clearTimer(int(call.Arguments[0].ToInteger()))
		}
		return goja.Undefined()
	}

	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value { return schedule(call, false) })
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value { return schedule(call, true) })
	r.vm.Set("clearTimeout", cancel)
	r.vm.Set("clearInterval", cancel)
}

// setupWindow installs the window globals that do not depend on a document.
func (r *Runtime) setupWindow() {
	window := r.vm.GlobalObject()
	r.vm.Set("window", window)
	r.vm.Set("self", window)
	r.vm.Set("globalThis", window)
	window.Set("parent", window)
	window.Set("top", window)
	window.Set("opener", goja.Null())

	navigator := r.vm.NewObject()
	navigator.Set("userAgent", r.profile.UserAgent)
	navigator.Set("vendor", r.profile.Vendor)
	navigator.Set("platform", r.profile.Platform)
	navigator.Set("appName", "Netscape")
	navigator.Set("appCodeName", "Mozilla")
	navigator.Set("language", "en-US")
	navigator.Set("languages", []string{"en-US", "en"})
	navigator.Set("cookieEnabled", true)
	navigator.Set("onLine", true)
	if ua := r.profile.UserAgent; strings.HasPrefix(ua, "Mozilla/") {
		navigator.Set("appVersion", strings.TrimPrefix(ua, "Mozilla/"))
	}
	r.vm.Set("navigator", navigator)

	window.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		switch {
		case len(call.Arguments) > 0:
			msg = formatValue(call.Arguments[0])
		case r.profile.Quirks.AlertUndefinedWhenEmpty:
			msg = "undefined"
		}
		r.mu.Lock()
		r.alerts = append(r.alerts, msg)
		r.mu.Unlock()
		r.log.Debug().Str("source", "alert").Msg(msg)
		return goja.Undefined()
	})
	window.Set("confirm", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(true)
	})
	window.Set("prompt", func(call goja.FunctionCall) goja.Value {
		return goja.Null()
	})

	window.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(r.vm.NewTypeError("Failed to execute 'queueMicrotask' on 'Window': parameter 1 is not of type 'Function'."))
		}
		r.eventLoop.queueMicrotask(func() { r.call(callback, goja.Undefined()) })
		return goja.Undefined()
	})

	performance := r.vm.NewObject()
	performance.Set("now", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(float64(r.timers.now()) / float64(time.Millisecond))
	})
	r.vm.Set("performance", performance)

	r.window = window
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

// formatValue converts a value the way String(v) does.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}

// Stringify converts a script value to the string String(v) would return.
func Stringify(v goja.Value) string {
	return formatValue(v)
}
