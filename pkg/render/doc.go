// Package render exports mind maps as Graphviz DOT, SVG and interactive HTML.
//
// # Formats
//
//   - [FormatDOT]: an undirected graph with every node pinned at its canvas
//     position ([ToDOT])
//   - [FormatSVG]: the DOT source laid out by Graphviz neato, which honours
//     pinned positions ([Renderer.SVG])
//   - [FormatHTML]: a self-contained go-echarts page with the nodes at fixed
//     coordinates ([WriteHTML])
//   - [FormatJSON]: the mapfile document
//
// Canvas coordinates grow downward and are measured in points; DOT positions
// grow upward and are measured in inches, so [ToDOT] flips and scales them.
//
// # Caching
//
// SVG rendering is the one expensive step. A [Renderer] with a cache stores
// the SVG under a key derived from the DOT text, so re-exporting an unchanged
// map skips Graphviz entirely:
//
//	r := render.Renderer{Cache: c, TTL: 24 * time.Hour}
//	svg, err := r.SVG(ctx, render.ToDOT(m, render.Options{}))
package render
