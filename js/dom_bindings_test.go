package js

import (
	"testing"

	"github.com/chrisuehlinger/htmlemu/browser"
	"github.com/chrisuehlinger/htmlemu/dom"
)

// loadPage binds src to a fresh executor without running its scripts.
func loadPage(t *testing.T, profile *browser.Profile, src string) (*ScriptExecutor, *dom.Document) {
	t.Helper()
	if profile == nil {
		profile = browser.Chrome()
	}
	r := NewRuntime(WithProfile(profile))
	se := NewScriptExecutor(r)
	doc, err := dom.ParseHTML(src, dom.WithProfile(profile), dom.WithURL("http://example.com/dir/page.html"))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	se.SetupDocument(doc)
	return se, doc
}

// evalString runs code and returns String(result).
func evalString(t *testing.T, se *ScriptExecutor, code string) string {
	t.Helper()
	v, err := se.Runtime().Execute(code)
	if err != nil {
		t.Fatalf("Execute failed: %v\n%s", err, code)
	}
	return Stringify(v)
}

func checkEval(t *testing.T, se *ScriptExecutor, code, want string) {
	t.Helper()
	if got := evalString(t, se, code); got != want {
		t.Errorf("%s\n got: %q\nwant: %q", code, got, want)
	}
}

func TestDOMBinderDocument(t *testing.T) {
	se, _ := loadPage(t, nil, `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body><div id="test">Hello</div></body>
</html>`)

	checkEval(t, se, "typeof document", "object")
	checkEval(t, se, "document.getElementById('test').textContent", "Hello")
	checkEval(t, se, "document.title", "Test")
	checkEval(t, se, "document.documentElement.tagName", "HTML")
	checkEval(t, se, "document.body.nodeName", "BODY")
	checkEval(t, se, "document.compatMode", "CSS1Compat")
	checkEval(t, se, "document.doctype.name", "html")
	checkEval(t, se, "document.defaultView === window", "true")
	checkEval(t, se, "document.textContent", "null")
	checkEval(t, se, "location.hostname + location.pathname", "example.com/dir/page.html")

	evalString(t, se, "document.title = 'Changed'")
	checkEval(t, se, "document.title", "Changed")
}

func TestDOMBinderWrapperIdentity(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><div id="a"></div></body></html>`)

	checkEval(t, se, "document.getElementById('a') === document.body.firstChild", "true")
	checkEval(t, se, "document.body.childNodes === document.body.childNodes", "true")
	checkEval(t, se, "document.getElementById('a').parentNode === document.body", "true")
	checkEval(t, se, "document.getElementById('missing')", "null")
}

func TestDOMBinderPrototypeChain(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body></body></html>`)

	checkEval(t, se, `
		var d = document.createElement('div');
		[d instanceof HTMLDivElement, d instanceof HTMLElement, d instanceof Element,
		 d instanceof Node, d instanceof EventTarget].join()`, "true,true,true,true,true")
	checkEval(t, se, "String(document.createElement('div'))", "[object HTMLDivElement]")
	checkEval(t, se, "Object.prototype.toString.call(document.createElement('th'))", "[object HTMLTableCellElement]")
	checkEval(t, se, "Object.prototype.toString.call(document.createElement('foo'))", "[object HTMLUnknownElement]")
	checkEval(t, se, "Object.prototype.toString.call(document.createElement('x-foo'))", "[object HTMLElement]")
	checkEval(t, se, "document instanceof HTMLDocument && document instanceof Document", "true")
	checkEval(t, se, "document.createTextNode('x') instanceof CharacterData", "true")
	checkEval(t, se, "Node.ELEMENT_NODE + ',' + document.body.DOCUMENT_NODE", "1,9")
}

func TestDOMBinderIllegalConstructor(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body></body></html>`)

	for _, iface := range []string{"HTMLDivElement", "HTMLElement", "Node", "HTMLCollection", "HTMLAllCollection", "HTMLOptionsCollection"} {
		code := "var m; try { new " + iface + "(); } catch (e) { m = (e instanceof TypeError) + ':' + e.message; } m"
		checkEval(t, se, code, "true:Illegal constructor")
	}
	checkEval(t, se, "new Text('abc').data", "abc")
	checkEval(t, se, "new DocumentFragment().nodeType", "11")
}

func TestDOMBinderIllegalInvocation(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body></body></html>`)

	checkEval(t, se, `
		var getter = Object.getOwnPropertyDescriptor(Node.prototype, 'nodeName').get;
		var m; try { getter.call({}); } catch (e) { m = e instanceof TypeError; } m`, "true")
}

func TestDOMBinderTreeMutation(t *testing.T) {
	se, doc := loadPage(t, nil, `<html><body><ul id="list"><li>1</li></ul></body></html>`)

	evalString(t, se, `
		var list = document.getElementById('list');
		var li = document.createElement('li');
		li.textContent = '2';
		list.appendChild(li);
		var first = document.createElement('li');
		first.textContent = '0';
		list.insertBefore(first, list.firstChild);
	`)
	checkEval(t, se, "list.textContent", "012")
	checkEval(t, se, "list.childElementCount + ',' + list.lastElementChild.textContent", "3,2")

	evalString(t, se, "list.removeChild(list.firstChild)")
	if got := doc.GetElementByID("list").TextContent(); got != "12" {
		t.Errorf("Go side sees %q after removeChild", got)
	}

	checkEval(t, se, `
		var m; try { document.body.appendChild(document.documentElement); }
		catch (e) { m = [e.name, e.code, e instanceof DOMException].join(); } m`, "HierarchyRequestError,3,true")
	checkEval(t, se, `
		var m; try { list.removeChild(document.createElement('p')); }
		catch (e) { m = e.name; } m`, "NotFoundError")
	checkEval(t, se, `
		var m; try { document.createElement('1bad'); }
		catch (e) { m = e.name; } m`, "InvalidCharacterError")
}

func TestDOMBinderCloneNode(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><div id="src" class="a"><b>x</b></div></body></html>`)

	checkEval(t, se, `
		var src = document.getElementById('src');
		var shallow = src.cloneNode(false);
		var deep = src.cloneNode(true);
		[shallow.className, shallow.childNodes.length, deep.innerHTML, deep.parentNode, deep === src].join()`,
		"a,0,<b>x</b>,,false")
}

func TestDOMBinderAttributes(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><div id="d" data-x="1"></div></body></html>`)

	checkEval(t, se, "var d = document.getElementById('d'); d.getAttribute('data-x')", "1")
	checkEval(t, se, "d.getAttribute('missing')", "null")
	checkEval(t, se, "d.setAttribute('TITLE', 't'); d.getAttribute('title') + d.title", "tt")
	checkEval(t, se, "d.getAttributeNames().join()", "id,data-x,title")
	checkEval(t, se, "d.toggleAttribute('hidden') + ',' + d.hidden", "true,true")
	checkEval(t, se, "d.removeAttribute('hidden'); d.hasAttribute('hidden')", "false")
	checkEval(t, se, "d.className = 'a b'; d.classList.add('c'); d.classList.remove('a'); d.className", "b c")
	checkEval(t, se, "d.classList.length + ',' + d.classList.contains('c') + ',' + d.classList[0]", "2,true,b")
	checkEval(t, se, "d.classList.toggle('b') + ',' + d.className", "false,c")
}

func TestDOMBinderNoWrapReflection(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><table><tr><td id="c">x</td></tr></table></body></html>`)

	checkEval(t, se, "var td = document.getElementById('c'); td.noWrap", "false")
	checkEval(t, se, "td.noWrap = 'foo'; td.noWrap + ',' + td.getAttribute('nowrap')", "true,")
	checkEval(t, se, "td.noWrap = ''; td.noWrap + ',' + td.hasAttribute('nowrap')", "false,false")
	checkEval(t, se, "td.setAttribute('nowrap', 'nowrap'); td.noWrap", "true")
	checkEval(t, se, "td.noWrap = 0; td.hasAttribute('nowrap')", "false")
	checkEval(t, se, "td.colSpan + ',' + td.rowSpan", "1,1")
	checkEval(t, se, "td.setAttribute('colspan', '5000'); td.colSpan", "1000")
	checkEval(t, se, "td.setAttribute('colspan', 'abc'); td.colSpan", "1")
}

func TestDOMBinderInnerHTML(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><div id="d"></div></body></html>`)

	checkEval(t, se, `
		var d = document.getElementById('d');
		d.innerHTML = '<span>x</span><b>y</b>';
		d.children.length + ',' + d.firstChild.tagName + ',' + d.innerHTML`, "2,SPAN,<span>x</span><b>y</b>")
	checkEval(t, se, "d.outerHTML", `<div id="d"><span>x</span><b>y</b></div>`)
	checkEval(t, se, "d.querySelector('b').textContent + d.querySelectorAll('*').length", "y2")
	checkEval(t, se, "d.querySelector('b').closest('div') === d", "true")
	checkEval(t, se, `var m; try { d.querySelector('[['); } catch (e) { m = e.name; } m`, "SyntaxError")
}

func TestDOMBinderStyle(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><div id="d" style="color: red"></div></body></html>`)

	checkEval(t, se, "var s = document.getElementById('d').style; s.color", "red")
	checkEval(t, se, "s.backgroundColor", "")
	checkEval(t, se, "s.backgroundColor = 'blue'; s.getPropertyValue('background-color')", "blue")
	checkEval(t, se, "s.length + ',' + s[1]", "2,background-color")
	checkEval(t, se, "document.getElementById('d').getAttribute('style')", "color: red; background-color: blue;")
	checkEval(t, se, "s.color = ''; s.cssText", "background-color: blue;")
	checkEval(t, se, "s instanceof CSSStyleDeclaration", "true")
	checkEval(t, se, "var d2 = document.createElement('div'); d2.setAttribute('style', 'width:10px'); d2.style.width", "10px")
}

func TestDOMBinderSelect(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body>
<form id="f"><select id="s"><option value="a">A</option><option>B</option></select></form>
</body></html>`)

	checkEval(t, se, "var s = document.getElementById('s'); s.type + ',' + s.length + ',' + s.selectedIndex + ',' + s.value", "select-one,2,0,a")
	checkEval(t, se, "s.selectedIndex = 1; s.value + ',' + s.options[1].selected", "B,true")
	checkEval(t, se, "s.value = 'a'; s.selectedIndex", "0")
	checkEval(t, se, "s.form === document.getElementById('f')", "true")
	checkEval(t, se, "s.item(1).text + ',' + s.item(5)", "B,null")
	checkEval(t, se, "s.remove(0); s.length", "1")
	checkEval(t, se, "s.remove(); document.getElementById('s')", "null")
}

func TestDOMBinderOptionConstructor(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body></body></html>`)

	checkEval(t, se, `
		var o = new Option('text', 'val', true, false);
		[o.text, o.value, o.defaultSelected, o.selected, o instanceof HTMLOptionElement, o.index].join()`,
		"text,val,true,false,true,0")
	checkEval(t, se, "new Option().text === '' && new Option().value === ''", "true")
	checkEval(t, se, "Option.prototype === HTMLOptionElement.prototype", "true")
}

func TestDOMBinderInputValue(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><input id="i" value="x"><input id="c" type="checkbox" checked></body></html>`)

	checkEval(t, se, "var i = document.getElementById('i'); i.type + ',' + i.value", "text,x")
	checkEval(t, se, "i.value = 'y'; i.value + ',' + i.getAttribute('value') + ',' + i.defaultValue", "y,x,x")
	checkEval(t, se, "var c = document.getElementById('c'); c.checked + ',' + c.value", "true,on")
	checkEval(t, se, "c.checked = false; c.checked + ',' + c.defaultChecked", "false,true")
}

func TestDOMBinderAnchorHref(t *testing.T) {
	se, _ := loadPage(t, nil, `<html><body><a id="a" href="other.html?q=1">x</a></body></html>`)

	checkEval(t, se, "document.getElementById('a').href", "http://example.com/dir/other.html?q=1")
	checkEval(t, se, "String(document.getElementById('a'))", "http://example.com/dir/other.html?q=1")
	checkEval(t, se, "document.links.length + ',' + document.anchors.length", "1,0")
}
