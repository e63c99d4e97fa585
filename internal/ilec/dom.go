package ilec

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// flatten lists the nodes below root in document order.
func flatten(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		out = append(out, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// find returns the index of the first node at or after from matching pred, or -1.
func find(nodes []*html.Node, from int, pred func(*html.Node) bool) int {
	for i := from; i < len(nodes); i++ {
		if pred(nodes[i]) {
			return i
		}
	}
	return -1
}

func isElem(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

// heading matches an element of type a whose text contains label.
func heading(a atom.Atom, label string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a && strings.Contains(text(n), label)
	}
}

// children returns the elements of type a below n. Without deep only direct
// children are considered.
func children(n *html.Node, a atom.Atom, deep bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == a {
			out = append(out, c)
			if !deep {
				continue
			}
		}
		if deep || c.DataAtom == atom.Tbody || c.DataAtom == atom.Thead {
			out = append(out, children(c, a, deep)...)
		}
	}
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// siblingText returns the trimmed text node directly following n, if any.
func siblingText(n *html.Node) string {
	if s := n.NextSibling; s != nil && s.Type == html.TextNode {
		return strings.TrimSpace(s.Data)
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
