package webclient

import (
	"context"
	"time"

	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/chrisuehlinger/htmlemu/js"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Page is a loaded document with its script environment. A Page is not safe
// for concurrent use; Alerts and Errors may be read from any goroutine.
type Page struct {
	doc      *dom.Document
	executor *js.ScriptExecutor
	log      zerolog.Logger
}

// Document returns the live DOM of the page.
func (p *Page) Document() *dom.Document {
	return p.doc
}

// URL returns the document URL.
func (p *Page) URL() string {
	return p.doc.URL()
}

// Title returns document.title.
func (p *Page) Title() string {
	return p.doc.Title()
}

// Alerts returns the messages passed to alert() in call order.
func (p *Page) Alerts() []string {
	return p.executor.Runtime().Alerts()
}

// Errors returns the uncaught script errors in the order they happened.
func (p *Page) Errors() []error {
	return p.executor.Runtime().Errors()
}

// Evaluate runs code in the page and returns the completion value converted
// the way String() would. Work that is due immediately afterwards, such as
// promise reactions and queued events, runs before it returns.
func (p *Page) Evaluate(code string) (string, error) {
	v, err := p.executor.Runtime().Execute(code)
	if err != nil {
		return "", errors.Wrap(err, "evaluate")
	}
	p.executor.RunEventLoop(context.Background(), 0)
	return js.Stringify(v), nil
}

// RunJobs runs queued tasks and timers due within budget of virtual time
// and returns how many ran.
func (p *Page) RunJobs(budget time.Duration) int {
	n := p.executor.RunEventLoop(context.Background(), budget)
	p.log.Debug().Int("jobs", n).Dur("budget", budget).Msg("ran jobs")
	return n
}

// Close drops pending timers and listeners.
func (p *Page) Close() {
	p.executor.Cleanup()
}
