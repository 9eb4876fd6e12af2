package js

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

// ScriptLoader fetches the source of an external script. src is already
// resolved against the document URL.
type ScriptLoader func(ctx context.Context, src string) (string, error)

// ScriptExecutor handles executing scripts in an HTML document.
type ScriptExecutor struct {
	runtime     *Runtime
	domBinder   *DOMBinder
	eventBinder *EventBinder
	loader      ScriptLoader
	document    *dom.Document
}

// NewScriptExecutor creates a new script executor.
func NewScriptExecutor(runtime *Runtime) *ScriptExecutor {
	eventBinder := NewEventBinder(runtime)
	eventBinder.SetupEventConstructors()
	domBinder := NewDOMBinder(runtime, eventBinder)

	window := runtime.window
	eventBinder.BindEventTarget(window)
	runtime.setToStringTag(window, "Window")

	// Events propagate from a node to its parent, and from the document to
	// the window.
	eventBinder.SetNodeResolver(func(obj *goja.Object) *goja.Object {
		if obj == nil || obj == window {
			return nil
		}
		n := domBinder.NodeOf(obj)
		if n == nil {
			return nil
		}
		if parent := n.ParentNode(); parent != nil {
			return domBinder.objectFor(parent)
		}
		if n.NodeType() == dom.DocumentNode && domBinder.document != nil && n == domBinder.document.AsNode() {
			return window
		}
		return nil
	})

	eventBinder.SetHandlerAttributeResolver(func(obj *goja.Object, eventType string) (string, bool) {
		if obj == window {
			doc := domBinder.document
			if doc == nil || doc.Body() == nil || !bodyForwardsToWindow[eventType] {
				return "", false
			}
			return doc.Body().GetAttribute("on" + eventType)
		}
		n := domBinder.NodeOf(obj)
		if n == nil || !n.IsElement() {
			return "", false
		}
		if n.Is("body") && bodyForwardsToWindow[eventType] {
			return "", false
		}
		return n.GetAttribute("on" + eventType)
	})

	return &ScriptExecutor{
		runtime:     runtime,
		domBinder:   domBinder,
		eventBinder: eventBinder,
	}
}

// Runtime returns the JavaScript runtime.
func (se *ScriptExecutor) Runtime() *Runtime {
	return se.runtime
}

// DOMBinder returns the DOM binder.
func (se *ScriptExecutor) DOMBinder() *DOMBinder {
	return se.domBinder
}

// EventBinder returns the event binder.
func (se *ScriptExecutor) EventBinder() *EventBinder {
	return se.eventBinder
}

// SetScriptLoader installs the loader used for scripts with a src
// attribute. Without one, external scripts are skipped.
func (se *ScriptExecutor) SetScriptLoader(loader ScriptLoader) {
	se.loader = loader
}

// SetupDocument binds doc to the window and routes DOM events through the
// event binder.
func (se *ScriptExecutor) SetupDocument(doc *dom.Document) {
	se.document = doc
	doc.SetEventDispatcher(se.eventBinder)
	se.domBinder.BindDocument(doc)
}

// javaScriptTypes are the script type values that denote classic scripts.
var javaScriptTypes = map[string]bool{
	"": true, "text/javascript": true, "application/javascript": true,
	"text/ecmascript": true, "application/ecmascript": true,
	"application/x-javascript": true, "application/x-ecmascript": true,
	"text/jscript": true, "text/livescript": true, "text/x-javascript": true,
	"text/x-ecmascript": true, "text/javascript1.0": true,
	"text/javascript1.1": true, "text/javascript1.2": true,
	"text/javascript1.3": true, "text/javascript1.4": true,
	"text/javascript1.5": true,
}

func isClassicScript(script *dom.Node) bool {
	t, ok := script.GetAttribute("type")
	if !ok {
		return true
	}
	return javaScriptTypes[strings.ToLower(strings.TrimSpace(t))]
}

// ExecuteScripts runs the script elements of doc in document order. A
// failing script does not stop the ones after it.
func (se *ScriptExecutor) ExecuteScripts(ctx context.Context, doc *dom.Document) []error {
	var errs []error
	// Snapshot first so scripts inserted by script do not run.
	scripts := doc.Scripts().Elements()
	for i, script := range scripts {
		if ctx.Err() != nil {
			break
		}
		if err := se.executeScript(ctx, doc, script, i); err != nil {
			errs = append(errs, err)
		}
		se.runtime.eventLoop.drainMicrotasks()
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, errors.Wrap(err, "execute scripts"))
	}
	return errs
}

// executeScript executes a single script element.
func (se *ScriptExecutor) executeScript(ctx context.Context, doc *dom.Document, script *dom.Node, index int) error {
	if !isClassicScript(script) {
		return nil
	}

	if src, ok := script.GetAttribute("src"); ok && strings.TrimSpace(src) != "" {
		if se.loader == nil {
			se.runtime.log.Debug().Str("src", src).Msg("external script skipped")
			return nil
		}
		resolved := resolveURL(doc.URL(), src)
		code, err := se.loader(ctx, resolved)
		if err != nil {
			err = errors.Wrapf(err, "load script %s", resolved)
			se.runtime.reportError(err)
			return err
		}
		return se.ExecuteExternalScript(code, resolved)
	}

	code := script.TextContent()
	if strings.TrimSpace(code) == "" {
		return nil
	}
	name := fmt.Sprintf("inline-%d", index)
	if id := script.ID(); id != "" {
		name = id
	}
	return se.runtime.ExecuteScript(code, name)
}

// ExecuteExternalScript executes an external script with the given content.
// The scriptURL is used for error reporting.
func (se *ScriptExecutor) ExecuteExternalScript(content, scriptURL string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return se.runtime.ExecuteScript(content, scriptURL)
}

// DispatchDOMContentLoaded fires DOMContentLoaded at the document.
func (se *ScriptExecutor) DispatchDOMContentLoaded() {
	if se.document == nil {
		return
	}
	se.eventBinder.FireEvent(se.domBinder.DocumentObject(), "DOMContentLoaded", EventOptions{Bubbles: true})
	se.runtime.eventLoop.drainMicrotasks()
}

// DispatchLoadEvent fires load at the window.
func (se *ScriptExecutor) DispatchLoadEvent() {
	se.eventBinder.FireEvent(se.runtime.window, "load", EventOptions{})
	se.runtime.eventLoop.drainMicrotasks()
}

func (se *ScriptExecutor) setReadyState(state string) {
	se.document.SetReadyState(state)
	se.eventBinder.FireEvent(se.domBinder.DocumentObject(), "readystatechange", EventOptions{})
}

// Load runs the page lifecycle of doc: scripts, DOMContentLoaded, load,
// then queued tasks and timers for up to budget of virtual time. When ctx
// is done the running script is interrupted and the remaining steps are
// skipped.
func (se *ScriptExecutor) Load(ctx context.Context, doc *dom.Document, budget time.Duration) []error {
	release := se.runtime.InterruptOnDone(ctx)
	defer release()

	se.SetupDocument(doc)
	doc.SetReadyState("loading")

	errs := se.ExecuteScripts(ctx, doc)
	if ctx.Err() != nil {
		return errs
	}

	se.setReadyState("interactive")
	se.DispatchDOMContentLoaded()
	se.setReadyState("complete")
	se.DispatchLoadEvent()
	if err := ctx.Err(); err != nil {
		return append(errs, errors.Wrap(err, "dispatch load events"))
	}

	se.runtime.RunEventLoop(ctx, budget)
	if err := ctx.Err(); err != nil {
		errs = append(errs, errors.Wrap(err, "run event loop"))
	}
	return errs
}

// RunEventLoop runs tasks and timers for up to budget of virtual time.
func (se *ScriptExecutor) RunEventLoop(ctx context.Context, budget time.Duration) int {
	return se.runtime.RunEventLoop(ctx, budget)
}

// Cleanup drops pending work and listener registrations.
func (se *ScriptExecutor) Cleanup() {
	se.runtime.ClearPending()
	se.eventBinder.ClearTargets()
	se.runtime.ClearErrors()
}

// resolveURL resolves ref against base, returning ref unchanged when either
// does not parse or base is not absolute.
func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
