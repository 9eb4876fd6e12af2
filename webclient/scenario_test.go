package webclient

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var allBrowsers = []string{"chrome", "edge", "firefox", "firefox-esr"}

type scenario struct {
	name string
	html string
	// want holds the expected alerts per browser; the "" entry applies to
	// every browser without its own entry.
	want map[string][]string
}

func (sc scenario) expected(browserName string) []string {
	if w, ok := sc.want[browserName]; ok {
		return w
	}
	return sc.want[""]
}

func runScenarios(t *testing.T, scenarios []scenario) {
	t.Helper()
	for _, sc := range scenarios {
		for _, b := range allBrowsers {
			sc, b := sc, b
			t.Run(sc.name+"/"+b, func(t *testing.T) {
				page, err := newClient(t, b).LoadHTML(context.Background(), sc.html, "http://example.com/test.html")
				require.NoError(t, err)
				require.Empty(t, page.Errors())
				if diff := cmp.Diff(sc.expected(b), page.Alerts()); diff != "" {
					t.Errorf("alerts mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestHTMLCollectionScenarios(t *testing.T) {
	runScenarios(t, []scenario{
		{
			name: "live access",
			html: `<html><head><script>
function test() {
  var c = document.getElementsByTagName('div');
  alert(c.length);
  alert(c.item(-1));
  alert(c.item('a').id);
  alert(c[2]);
  alert(c.namedItem('d2') === c.d2);
  alert(c instanceof HTMLCollection);
  alert(Object.prototype.toString.call(c));
  document.body.appendChild(document.createElement('div'));
  alert(c.length);
}
</script></head><body onload="test()"><div id="d1"></div><div id="d2"></div></body></html>`,
			want: map[string][]string{
				"": {"2", "null", "d1", "undefined", "true", "true", "[object HTMLCollection]", "3"},
			},
		},
		{
			name: "enumeration",
			html: `<html><body><form id="f"><input name="a"><input name="b"></form><script>
  var c = document.getElementById('f').children;
  alert(Object.keys(c));
  var names = [];
  for (var el of c) names.push(el.name);
  alert(names);
  alert(Array.prototype.map.call(c, function(e) { return e.tagName; }));
</script></body></html>`,
			want: map[string][]string{
				"": {"0,1", "a,b", "INPUT,INPUT"},
			},
		},
	})
}

func TestHTMLAllCollectionScenarios(t *testing.T) {
	runScenarios(t, []scenario{
		{
			name: "items",
			html: `<html><head><title>all</title></head><body>
<div id="d1"></div><input name="dup"><input name="dup">
<script>
  alert(document.all[0].tagName);
  alert(document.all.item(1).tagName);
  alert(document.all('d1').id);
  alert(document.all.d1 === document.getElementById('d1'));
  alert(document.all.item('dup').length);
  alert(document.all.namedItem('missing'));
  alert(document.all.missing);
  alert(document.all instanceof HTMLAllCollection);
</script></body></html>`,
			want: map[string][]string{
				"": {"HTML", "HEAD", "d1", "true", "2", "null", "undefined", "true"},
			},
		},
	})
}

func TestHTMLDialogElementScenarios(t *testing.T) {
	chromium := []string{
		"false", "true", "InvalidStateError", "false first", "close first",
		"InvalidStateError", "function", "close second",
	}
	runScenarios(t, []scenario{
		{
			name: "show and close",
			html: `<html><body><dialog id="d"></dialog><script>
  var d = document.getElementById('d');
  d.addEventListener('close', function() { alert('close ' + d.returnValue); });
  alert(d.open);
  d.show();
  alert(d.open);
  try { d.showModal(); alert('no exception'); } catch (e) { alert(e.name); }
  d.close('first');
  alert(d.open + ' ' + d.returnValue);
  setTimeout(function() {
    d.showModal();
    try { d.show(); alert('no exception'); } catch (e) { alert(e.name); }
    alert(typeof d.requestClose);
    d.close('second');
  }, 10);
</script></body></html>`,
			want: map[string][]string{
				"chrome": chromium,
				"edge":   chromium,
				"firefox": {
					"false", "true", "InvalidStateError", "false first", "close first",
					"InvalidStateError", "undefined", "close second",
				},
				"firefox-esr": {
					"false", "true", "InvalidStateError", "false first", "close first",
					"no exception", "undefined", "close second",
				},
			},
		},
		{
			name: "open attribute",
			html: `<html><body><dialog id="d" open></dialog><script>
  var d = document.getElementById('d');
  alert(d.open);
  d.open = false;
  alert(d.hasAttribute('open'));
  d.open = 'yes';
  alert(d.getAttribute('open') === '');
</script></body></html>`,
			want: map[string][]string{
				"": {"true", "false", "true"},
			},
		},
	})
}

func TestHTMLOptionsCollectionScenarios(t *testing.T) {
	runScenarios(t, []scenario{
		{
			name: "mutation",
			html: `<html><body><select id="s"><option>a</option><option>b</option></select><script>
  var s = document.getElementById('s');
  var o = s.options;
  alert(o.length);
  o.length = 4;
  alert(o.length + ' ' + o[3].text + '|');
  o[6] = new Option('g', 'gv');
  alert(o.length + ' ' + o[6].value);
  o[6] = null;
  alert(o.length);
  o.add(new Option('z'), 0);
  alert(o[0].text);
  o.remove(0);
  alert(o[0].text);
  o.length = 1;
  alert(o.length + ' ' + s.selectedIndex);
  try { o[0] = document.createElement('div'); } catch (e) { alert(e.name); }
  try { o.add(new Option('x'), new Option('y')); } catch (e) { alert(e.name); }
  o.length = 100001;
  alert(o.length);
</script></body></html>`,
			want: map[string][]string{
				"": {"2", "4 |", "7 gv", "6", "z", "a", "1 0", "TypeError", "NotFoundError", "1"},
			},
		},
	})
}

func TestReflectionScenarios(t *testing.T) {
	runScenarios(t, []scenario{
		{
			name: "noWrap and spans",
			html: `<html><body><table><tr><td id="c">x</td></tr></table><script>
  var td = document.getElementById('c');
  alert(td.noWrap);
  td.noWrap = 'foo';
  alert(td.noWrap + ' [' + td.getAttribute('nowrap') + ']');
  td.noWrap = '';
  alert(td.noWrap + ' ' + td.hasAttribute('nowrap'));
  td.setAttribute('nowrap', 'nowrap');
  alert(td.noWrap);
  alert(td.colSpan);
  td.setAttribute('colspan', '2000');
  alert(td.colSpan);
  td.setAttribute('colspan', '0');
  alert(td.colSpan);
  td.rowSpan = 3;
  alert(td.getAttribute('rowspan'));
</script></body></html>`,
			want: map[string][]string{
				"": {"false", "true []", "false false", "true", "1", "1000", "1", "3"},
			},
		},
	})
}
