package render

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TranslatableClass marks elements that take part in hover/click linkage.
const TranslatableClass = "translatable"

// HighlightStyle is applied inline to the hovered formatted element.
const HighlightStyle = "background: #E5F1FF"

// formattedDoc is backend HTML parsed as a fragment of the panel wrapper.
type formattedDoc struct {
	nodes []*html.Node
	byID  map[string]*html.Node
	order []string
}

func wrapperContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

func parseFormatted(src string) (*formattedDoc, error) {
	nodes, err := html.ParseFragment(strings.NewReader(src), wrapperContext())
	if err != nil {
		return nil, fmt.Errorf("failed to parse formatted content: %w", err)
	}
	doc := &formattedDoc{nodes: nodes, byID: make(map[string]*html.Node)}
	for _, n := range nodes {
		doc.index(n)
	}
	return doc, nil
}

func (d *formattedDoc) index(n *html.Node) {
	if n.Type == html.ElementNode && hasClass(n, TranslatableClass) {
		if id := attr(n, "id"); id != "" {
			if _, dup := d.byID[id]; !dup {
				d.order = append(d.order, id)
			}
			d.byID[id] = n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.index(c)
	}
}

func (d *formattedDoc) has(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// render serializes the fragment, styling the element whose id is highlight.
// The tree is restored before returning.
func (d *formattedDoc) render(highlight string) (string, error) {
	if n, ok := d.byID[highlight]; ok && highlight != "" {
		restore := setStyle(n, HighlightStyle)
		defer restore()
	}
	var b strings.Builder
	for _, n := range d.nodes {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("failed to render formatted content: %w", err)
		}
	}
	return b.String(), nil
}

// setText replaces an element's children with a single text node.
func (d *formattedDoc) setText(id, text string) error {
	n, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("element %q not found", id)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return nil
}

func (d *formattedDoc) items() []Item {
	out := make([]Item, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, Item{Key: id, Text: textContent(d.byID[id])})
	}
	return out
}

func textContent(n *html.Node) string {
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
	return strings.TrimSpace(b.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func setStyle(n *html.Node, style string) (restore func()) {
	saved := slices.Clone(n.Attr)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "style" {
			val := strings.TrimRight(strings.TrimSpace(a.Val), ";")
			if val != "" {
				val += "; "
			}
			n.Attr[i].Val = val + style
			return func() { n.Attr = saved }
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
	return func() { n.Attr = saved }
}
