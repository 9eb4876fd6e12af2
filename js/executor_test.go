package js

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chrisuehlinger/htmlemu/browser"
	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/pkg/errors"
)

// runPage parses src and runs its full lifecycle.
func runPage(t *testing.T, src string, loader ScriptLoader) (*ScriptExecutor, []error) {
	t.Helper()
	profile := browser.Chrome()
	se := NewScriptExecutor(NewRuntime(WithProfile(profile)))
	if loader != nil {
		se.SetScriptLoader(loader)
	}
	doc, err := dom.ParseHTML(src, dom.WithProfile(profile), dom.WithURL("http://example.com/dir/page.html"))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	return se, se.Load(context.Background(), doc, time.Second)
}

func TestScriptsRunInOrder(t *testing.T) {
	se, errs := runPage(t, `<html><head>
<script>var order = ['head'];</script>
</head><body>
<script>order.push('body');</script>
<script>throw new Error('broken');</script>
<script>order.push('after error');</script>
</body></html>`, nil)

	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "broken") {
		t.Fatalf("errors = %v, want the one thrown error", errs)
	}
	checkEval(t, se, "order.join()", "head,body,after error")
}

func TestScriptsSeeFullDocument(t *testing.T) {
	se, _ := runPage(t, `<html><body>
<script>var found = document.getElementById('later') !== null;</script>
<div id="later"></div>
</body></html>`, nil)

	checkEval(t, se, "found", "true")
}

func TestNonClassicScriptsSkipped(t *testing.T) {
	se, errs := runPage(t, `<html><body>
<script>var ran = [];</script>
<script type="text/template">ran.push('template');</script>
<script type="module">ran.push('module');</script>
<script type="application/json">{"ran": true}</script>
<script type="text/javascript">ran.push('js');</script>
<script type=" TEXT/JavaScript ">ran.push('upper');</script>
<script language="javascript">ran.push('language');</script>
</body></html>`, nil)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	checkEval(t, se, "ran.join()", "js,upper,language")
}

func TestReadyStateTransitions(t *testing.T) {
	se, _ := runPage(t, `<html><body>
<script>
	var states = [document.readyState];
	document.addEventListener('readystatechange', function() { states.push(document.readyState); });
	document.addEventListener('DOMContentLoaded', function() { states.push('DOMContentLoaded'); });
	window.addEventListener('load', function() { states.push('load'); });
</script>
</body></html>`, nil)

	checkEval(t, se, "states.join()", "loading,interactive,DOMContentLoaded,complete,load")
	checkEval(t, se, "document.readyState", "complete")
}

func TestBodyOnload(t *testing.T) {
	se, errs := runPage(t, `<html><body onload="alert('load ' + document.readyState)"></body></html>`, nil)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := se.Runtime().Alerts(); len(got) != 1 || got[0] != "load complete" {
		t.Errorf("alerts = %q", got)
	}
}

func TestTimersRunAfterLoad(t *testing.T) {
	se, _ := runPage(t, `<html><body><script>
	var log = [];
	setTimeout(function() { log.push('timer'); }, 50);
	window.onload = function() { log.push('load'); };
	log.push('script');
</script></body></html>`, nil)

	checkEval(t, se, "log.join()", "script,load,timer")
}

func TestExternalScripts(t *testing.T) {
	var requested []string
	loader := func(ctx context.Context, src string) (string, error) {
		requested = append(requested, src)
		switch src {
		case "http://example.com/dir/a.js":
			return "var external = 'a';", nil
		case "http://example.com/lib/b.js":
			return "external += 'b';", nil
		}
		return "", errors.New("not found")
	}

	se, errs := runPage(t, `<html><body>
<script src="a.js"></script>
<script src="/lib/b.js"></script>
<script src="missing.js"></script>
<script>external += '!';</script>
</body></html>`, loader)

	want := []string{"http://example.com/dir/a.js", "http://example.com/lib/b.js", "http://example.com/dir/missing.js"}
	if strings.Join(requested, " ") != strings.Join(want, " ") {
		t.Errorf("requested = %q, want %q", requested, want)
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "missing.js") {
		t.Fatalf("errors = %v, want the failed load", errs)
	}
	if len(se.Runtime().Errors()) != 1 {
		t.Errorf("load failure should be recorded once, got %v", se.Runtime().Errors())
	}
	checkEval(t, se, "external", "ab!")
}

func TestExternalScriptsSkippedWithoutLoader(t *testing.T) {
	se, errs := runPage(t, `<html><body>
<script src="a.js"></script>
<script>var ok = typeof external === 'undefined';</script>
</body></html>`, nil)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	checkEval(t, se, "ok", "true")
}

func TestLoadDeadlineInterruptsRunningScript(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"inline script", `<script>while (true) {}</script><script>var after = true;</script>`},
		{"load handler", `<body onload="while (true) {}"><script>var after = true;</script></body>`},
		{"timer", `<script>var after = true; setTimeout(function() { while (true) {} }, 10);</script>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := NewScriptExecutor(NewRuntime())
			doc, err := dom.ParseHTML(tt.src)
			if err != nil {
				t.Fatalf("ParseHTML failed: %v", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			done := make(chan []error, 1)
			go func() { done <- se.Load(ctx, doc, time.Second) }()
			var errs []error
			select {
			case errs = <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("Load did not return after the context deadline")
			}

			if len(errs) == 0 || !errors.Is(errs[len(errs)-1], context.DeadlineExceeded) {
				t.Errorf("errors = %v, want context.DeadlineExceeded last", errs)
			}
			if len(se.Runtime().Errors()) == 0 {
				t.Error("interrupted script was not recorded as a script error")
			}
			// The runtime stays usable once the interrupt is cleared.
			checkEval(t, se, "1 + 1", "2")
		})
	}
}

func TestLoadCanceled(t *testing.T) {
	se := NewScriptExecutor(NewRuntime())
	doc, err := dom.ParseHTML(`<html><body><script>var ran = true;</script></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := se.Load(ctx, doc, time.Second)
	if len(errs) == 0 || !errors.Is(errs[0], context.Canceled) {
		t.Fatalf("errors = %v, want context.Canceled", errs)
	}
	checkEval(t, se, "typeof ran", "undefined")
}

func TestCleanup(t *testing.T) {
	se, _ := runPage(t, `<html><body><script>
	setTimeout(function() {}, 10000);
	document.addEventListener('x', function() { alert('x'); });
	undefinedFunction();
</script></body></html>`, nil)

	if !se.Runtime().HasPendingWork() || len(se.Runtime().Errors()) == 0 {
		t.Fatal("expected pending work and an error before cleanup")
	}
	se.Cleanup()
	if se.Runtime().HasPendingWork() || len(se.Runtime().Errors()) != 0 {
		t.Error("Cleanup left work or errors behind")
	}
	evalString(t, se, "document.dispatchEvent(new Event('x'))")
	if len(se.Runtime().Alerts()) != 0 {
		t.Error("listeners survived Cleanup")
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"http://example.com/dir/page.html", "a.js", "http://example.com/dir/a.js"},
		{"http://example.com/dir/page.html", "../b.js", "http://example.com/b.js"},
		{"http://example.com/dir/page.html", "https://cdn.example.org/c.js", "https://cdn.example.org/c.js"},
		{"http://example.com/dir/page.html", " //cdn.example.org/d.js ", "http://cdn.example.org/d.js"},
		{"", "a.js", "a.js"},
	}
	for _, tt := range tests {
		if got := resolveURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}
