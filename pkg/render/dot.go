package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// pointsPerInch converts canvas units to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT and HTML output.
type Options struct {
	// Title is shown as the graph label (DOT) or page title (HTML).
	Title string
	// Highlight draws one node in the accent color, e.g. a pending
	// connection source. mindmap.NoNode highlights nothing.
	Highlight mindmap.NodeID
}

// ToDOT converts m to an undirected Graphviz graph.
//
// Each node is a rounded box of its canvas size pinned at its canvas center
// ("pos" with "!"), so layout engines that honour pins reproduce the canvas.
// Nodes are named by id and appear in id order; edges follow creation order.
func ToDOT(m *mindmap.Map, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#add8e6\", fixedsize=true, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range m.Nodes() {
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range m.Edges() {
		fmt.Fprintf(&buf, "  %d -- %d;\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n mindmap.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", n.Label),
		fmt.Sprintf("pos=\"%s,%s!\"", inches(n.Position.X), inches(-n.Position.Y)),
		fmt.Sprintf("width=%s", inches(n.Size.Width)),
		fmt.Sprintf("height=%s", inches(n.Size.Height)),
	}
	if n.ID == opts.Highlight {
		attrs = append(attrs, "fillcolor=\"#90ee90\"")
	}
	return attrs
}

// inches formats canvas units as Graphviz inches without trailing zeros.
func inches(v float64) string {
	s := fmt.Sprintf("%.4f", v/pointsPerInch)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
