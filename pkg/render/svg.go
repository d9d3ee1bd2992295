package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/r3d91ll/heddle/pkg/layout"
)

// SVG document constants.
const (
	// SVGVersion is the SVG specification version used.
	SVGVersion = "1.1"

	// SVGNamespace is the XML namespace for SVG.
	SVGNamespace = "http://www.w3.org/2000/svg"

	// DefaultFontFamily is used for every text element.
	DefaultFontFamily = "Helvetica, Arial, sans-serif"
)

type svgNode struct {
	el       Element
	children []string
}

// SVGScene is a retained element tree that serializes to a standalone SVG
// document. It is not safe for concurrent use.
type SVGScene struct {
	// FontFamily is written into the document stylesheet.
	FontFamily string

	size  layout.Size
	nodes map[string]*svgNode
	roots []string
}

// NewSVGScene returns an empty scene.
func NewSVGScene() *SVGScene {
	return &SVGScene{
		FontFamily: DefaultFontFamily,
		nodes:      make(map[string]*svgNode),
	}
}

// Resize sets the document size.
func (sc *SVGScene) Resize(size layout.Size) { sc.size = size }

// Size returns the document size.
func (sc *SVGScene) Size() layout.Size { return sc.size }

// Draw adds el. Drawing an existing ID replaces the element in place and
// keeps its children. Elements whose parent is unknown become roots.
func (sc *SVGScene) Draw(el Element) {
	el.Attrs = el.Attrs.Clone()
	if n, ok := sc.nodes[el.ID]; ok {
		n.el = el
		return
	}
	sc.nodes[el.ID] = &svgNode{el: el}
	if p, ok := sc.nodes[el.Parent]; ok && el.Parent != "" {
		p.children = append(p.children, el.ID)
		return
	}
	sc.roots = append(sc.roots, el.ID)
}

// Update merges attrs into element id. Unknown IDs are ignored.
func (sc *SVGScene) Update(id string, attrs Attrs) {
	if n, ok := sc.nodes[id]; ok {
		n.el.Attrs.Merge(attrs)
	}
}

// Remove deletes the element prefix, every element whose ID continues it
// with "/", and all of their children.
func (sc *SVGScene) Remove(prefix string) {
	removed := make(map[string]bool)
	var drop func(id string)
	drop = func(id string) {
		n, ok := sc.nodes[id]
		if !ok || removed[id] {
			return
		}
		removed[id] = true
		for _, c := range n.children {
			drop(c)
		}
	}
	for id := range sc.nodes {
		if inSubtree(id, prefix) {
			drop(id)
		}
	}
	if len(removed) == 0 {
		return
	}

	for id := range removed {
		delete(sc.nodes, id)
	}
	sc.roots = keep(sc.roots, removed)
	for _, n := range sc.nodes {
		n.children = keep(n.children, removed)
	}
}

// Clear removes every element.
func (sc *SVGScene) Clear() {
	sc.nodes = make(map[string]*svgNode)
	sc.roots = nil
}

// Len returns the number of elements.
func (sc *SVGScene) Len() int { return len(sc.nodes) }

// Get returns element id.
func (sc *SVGScene) Get(id string) (Element, bool) {
	n, ok := sc.nodes[id]
	if !ok {
		return Element{}, false
	}
	el := n.el
	el.Attrs = el.Attrs.Clone()
	return el, true
}

// IDs returns every element ID in sorted order.
func (sc *SVGScene) IDs() []string {
	ids := make([]string, 0, len(sc.nodes))
	for id := range sc.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build serializes the scene as an SVG document.
func (sc *SVGScene) Build() string {
	var sb strings.Builder
	w, h := num(sc.size.W), num(sc.size.H)
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString(fmt.Sprintf("<svg version=\"%s\" xmlns=\"%s\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		SVGVersion, SVGNamespace, w, h, w, h))
	sb.WriteString("  <defs>\n")
	sb.WriteString("    <style type=\"text/css\">\n")
	sb.WriteString(fmt.Sprintf("      text { font-family: %s; }\n", sc.FontFamily))
	sb.WriteString("    </style>\n")
	sb.WriteString("  </defs>\n")
	for _, id := range sc.roots {
		sc.writeNode(&sb, id, 1)
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteTo writes the SVG document to w.
func (sc *SVGScene) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, sc.Build())
	return int64(n), err
}

func (sc *SVGScene) writeNode(sb *strings.Builder, id string, depth int) {
	n := sc.nodes[id]
	indent := strings.Repeat("  ", depth)
	attrs := formatAttrs(n.el.ID, n.el.Attrs)

	switch n.el.Kind {
	case KindGroup:
		sb.WriteString(fmt.Sprintf("%s<g%s>\n", indent, attrs))
		sc.writeChildren(sb, n, depth+1)
		sb.WriteString(indent + "</g>\n")
	case KindPanel:
		sb.WriteString(fmt.Sprintf("%s<g data-id=\"%s\">\n", indent, escapeXML(n.el.ID)))
		sb.WriteString(fmt.Sprintf("%s  <rect%s/>\n", indent, formatAttrs("", n.el.Attrs)))
		sc.writeChildren(sb, n, depth+1)
		sb.WriteString(indent + "</g>\n")
	case KindArc:
		sb.WriteString(fmt.Sprintf("%s<line%s/>\n", indent, attrs))
	case KindToken, KindText:
		sb.WriteString(fmt.Sprintf("%s<text%s>%s</text>\n", indent, attrs, escapeXML(n.el.Text)))
	default:
		sb.WriteString(fmt.Sprintf("%s<rect%s/>\n", indent, attrs))
	}
}

func (sc *SVGScene) writeChildren(sb *strings.Builder, n *svgNode, depth int) {
	for _, c := range n.children {
		sc.writeNode(sb, c, depth)
	}
}

// formatAttrs renders attributes in key order, led by the element ID.
func formatAttrs(id string, a Attrs) string {
	var sb strings.Builder
	if id != "" {
		sb.WriteString(fmt.Sprintf(" data-id=\"%s\"", escapeXML(id)))
	}
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s=\"%s\"", k, escapeXML(a[k])))
	}
	return sb.String()
}

func keep(ids []string, removed map[string]bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if !removed[id] {
			out = append(out, id)
		}
	}
	return out
}

// escapeXML escapes special characters for XML/SVG content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
