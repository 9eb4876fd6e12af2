package dom

import (
	"github.com/andybalholm/cascadia"
)

func compileSelectors(selectors string) (cascadia.SelectorGroup, error) {
	group, err := cascadia.ParseGroup(selectors)
	if err != nil {
		return nil, ErrSyntax("'" + selectors + "' is not a valid selector.")
	}
	return group, nil
}

// QuerySelector returns the first descendant element matching selectors.
func (n *Node) QuerySelector(selectors string) (*Node, error) {
	group, err := compileSelectors(selectors)
	if err != nil {
		return nil, err
	}
	return n.doc.wrap(cascadia.Query(n.raw, group)), nil
}

// QuerySelectorAll returns every descendant element matching selectors in
// tree order.
func (n *Node) QuerySelectorAll(selectors string) ([]*Node, error) {
	group, err := compileSelectors(selectors)
	if err != nil {
		return nil, err
	}
	raws := cascadia.QueryAll(n.raw, group)
	out := make([]*Node, 0, len(raws))
	for _, r := range raws {
		out = append(out, n.doc.wrap(r))
	}
	return out, nil
}

// Matches reports whether the element matches selectors.
func (n *Node) Matches(selectors string) (bool, error) {
	group, err := compileSelectors(selectors)
	if err != nil {
		return false, err
	}
	return n.IsElement() && group.Match(n.raw), nil
}

// Closest returns the nearest inclusive ancestor matching selectors.
func (n *Node) Closest(selectors string) (*Node, error) {
	group, err := compileSelectors(selectors)
	if err != nil {
		return nil, err
	}
	for r := n.raw; r != nil; r = r.Parent {
		if r.Type == n.raw.Type && group.Match(r) {
			return n.doc.wrap(r), nil
		}
	}
	return nil, nil
}
