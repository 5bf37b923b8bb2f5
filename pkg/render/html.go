package render

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// WriteHTML writes a standalone HTML page that draws m with ECharts.
// Nodes keep their canvas coordinates (the chart uses layout "none") and
// can be dragged and zoomed in the browser without changing the map.
func WriteHTML(w io.Writer, m *mindmap.Map, o Options) error {
	nodes, links := graphData(m, o)

	title := o.Title
	if title == "" {
		title = "mindcraft"
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	graph.AddSeries("map", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:    "none",
			Roam:      opts.Bool(true),
			Draggable: opts.Bool(true),
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "inside",
		}),
	)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(graph)
	if err := page.Render(w); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "write HTML")
	}
	return nil
}

// graphData converts m to ECharts nodes and links. ECharts links refer to
// nodes by name, so a label shared by several nodes gets the node id
// appended to keep names unique.
func graphData(m *mindmap.Map, o Options) ([]opts.GraphNode, []opts.GraphLink) {
	all := m.Nodes()
	uses := make(map[string]int, len(all))
	for _, n := range all {
		uses[n.Label]++
	}
	names := make(map[mindmap.NodeID]string, len(all))

	nodes := make([]opts.GraphNode, 0, len(all))
	for _, n := range all {
		name := n.Label
		if uses[name] > 1 {
			name += " #" + strconv.Itoa(int(n.ID))
		}
		names[n.ID] = name

		color := "#add8e6"
		if n.ID == o.Highlight {
			color = "#90ee90"
		}
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			X:          float32(n.Position.X),
			Y:          float32(n.Position.Y),
			Fixed:      opts.Bool(true),
			Symbol:     "roundRect",
			SymbolSize: []float32{float32(n.Size.Width), float32(n.Size.Height)},
			Value:      float32(len(m.NeighborsOf(n.ID))),
			ItemStyle:  &opts.ItemStyle{Color: color, BorderColor: "black", BorderWidth: 1},
		})
	}

	links := make([]opts.GraphLink, 0, m.EdgeCount())
	for _, e := range m.Edges() {
		links = append(links, opts.GraphLink{Source: names[e.A], Target: names[e.B]})
	}
	return nodes, links
}
