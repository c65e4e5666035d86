// Package surface renders graph snapshots as a static HTML diagram.
// Node positions are taken from the snapshot as they are; nothing is laid out.
package surface

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/ritzau/dag-ui/pkg/model"
)

// Attribution is the credit shown under the diagram unless hidden
const Attribution = "rendered with Apache ECharts"

const (
	chartID     = "dag-ui"
	nodeSize    = 36
	fitPrefix   = "__fit"
	fitMinName  = fitPrefix + "-min"
	fitMaxName  = fitPrefix + "-max"
	selectColor = "#ff0072"
)

// Page is the shell around the diagram
type Page struct {
	Title   string // document title
	Header  string
	Footer  string
	Options model.SurfaceOptions
}

// Render writes g as a standalone HTML page
func Render(w io.Writer, g model.Graph, page Page) error {
	p := components.NewPage()
	p.PageTitle = page.Title
	p.AddCharts(newChart(g, page))

	if err := p.Render(w); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// RenderToFile renders g into path, replacing any previous render
func RenderToFile(path string, g model.Graph, page Page) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Render(f, g, page); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func newChart(g model.Graph, page Page) *charts.Graph {
	o := page.Options

	theme := "white" // go-echarts default theme; it has no ThemeWhite constant
	labelColor := "black"
	if o.ColorMode == model.ColorModeDark {
		theme = types.ThemeChalk
		labelColor = "white"
	}

	subtitle := page.Footer
	if !o.HideAttribution {
		if subtitle != "" {
			subtitle += " · "
		}
		subtitle += Attribution
	}

	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: page.Title,
			ChartID:   chartID,
			Theme:     theme,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    page.Header,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)

	nodes, links := Convert(g, o)
	chart.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:     "none",
				Roam:       opts.Bool(o.FitView),
				EdgeSymbol: []string{"none", "arrow"},
			},
		),
		// fit anchors carry no label
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Color:     labelColor,
			Position:  "inside",
			Formatter: string(opts.FuncOpts(`function (p) { return p.name.indexOf('` + fitPrefix + `') === 0 ? '' : p.name; }`)),
		}),
	)
	return chart
}

// Convert maps a snapshot onto echarts graph data. Nodes with a repeated id
// after the first are not drawn, and edges whose endpoints are missing are
// skipped, since echarts cannot draw either.
func Convert(g model.Graph, o model.SurfaceOptions) ([]opts.GraphNode, []opts.GraphLink) {
	index := make(map[string]int, len(g.Nodes))
	nodes := make([]opts.GraphNode, 0, len(g.Nodes)+2)

	for _, n := range g.Nodes {
		if _, seen := index[n.ID]; seen {
			continue
		}
		index[n.ID] = len(nodes)

		node := opts.GraphNode{
			Name:       nodeName(n),
			X:          float32(n.Position.X),
			Y:          float32(n.Position.Y),
			Symbol:     "roundRect",
			SymbolSize: nodeSize,
		}
		if n.Selected {
			node.ItemStyle = &opts.ItemStyle{BorderColor: selectColor, BorderWidth: 2}
		}
		nodes = append(nodes, node)
	}

	links := make([]opts.GraphLink, 0, len(g.Edges))
	for _, e := range g.Edges {
		source, okSource := index[e.Source]
		target, okTarget := index[e.Target]
		if !okSource || !okTarget {
			continue
		}

		link := opts.GraphLink{Source: source, Target: target}
		style := &opts.LineStyle{Width: 1}
		if e.Animated || o.DefaultEdgeOptions.Animated {
			style.Type = "dashed"
		}
		if e.Selected {
			style.Color = selectColor
			style.Width = 2
		}
		if e.Source == e.Target {
			style.Curveness = 0.5
		}
		link.LineStyle = style
		links = append(links, link)
	}

	if o.FitView && len(g.Nodes) > 0 {
		nodes = append(nodes, fitAnchors(g.Nodes, o.FitViewPadding)...)
	}
	return nodes, links
}

// nodeName is the echarts name of a node. Echarts keys nodes by name, so the
// id is always part of it.
func nodeName(n model.Node) string {
	label := n.Label()
	if label == n.ID {
		return n.ID
	}
	return fmt.Sprintf("%s (%s)", label, n.ID)
}

// fitAnchors returns two invisible nodes at the corners of the node bounds
// grown by padding, a fraction of the bounds' size. Echarts fits everything it
// draws into the viewport, so the anchors leave that margin around the diagram.
func fitAnchors(nodes []model.Node, padding float64) []opts.GraphNode {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X)
		maxY = math.Max(maxY, n.Position.Y)
	}

	padX := math.Max(maxX-minX, nodeSize) * padding / 2
	padY := math.Max(maxY-minY, nodeSize) * padding / 2

	return []opts.GraphNode{
		{Name: fitMinName, X: float32(minX - padX), Y: float32(minY - padY), Symbol: "none", SymbolSize: 0},
		{Name: fitMaxName, X: float32(maxX + padX), Y: float32(maxY + padY), Symbol: "none", SymbolSize: 0},
	}
}
