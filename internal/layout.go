package internal

import (
	"sort"
)

// Node footprints used by the layout. Main (answered) nodes render large;
// question and other peripheral nodes stay small.
const (
	MainNodeWidth      = 600.0
	MainNodeHeight     = 500.0
	QuestionNodeWidth  = 300.0
	QuestionNodeHeight = 100.0
)

// LayoutConfig holds the separation parameters of the layered layout.
type LayoutConfig struct {
	NodeSep        float64 // vertical gap between nodes in the same rank
	RankSep        float64 // horizontal gap between ranks
	MarginX        float64 // left margin before the first rank
	ExpandedMargin float64 // extra vertical gap applied while a node is expanded
}

// DefaultLayoutConfig mirrors the spacing the canvas renders well with.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NodeSep:        120,
		RankSep:        500,
		MarginX:        100,
		ExpandedMargin: 200,
	}
}

// Layout places nodes of a directed graph left to right in layers: ranks are
// assigned by longest path from the roots, order within a rank minimizes edge
// crossings by barycenter, and every node gets left/right handle sides for
// consistent edge routing.
type Layout struct {
	cfg LayoutConfig
}

// NewLayout creates a layout engine with the given configuration.
func NewLayout(cfg LayoutConfig) *Layout {
	return &Layout{cfg: cfg}
}

// nodeSize returns the footprint for a node based on its role.
func nodeSize(n *Node) (w, h float64) {
	if n.Type == NodeTypeMain {
		return MainNodeWidth, MainNodeHeight
	}
	return QuestionNodeWidth, QuestionNodeHeight
}

// Full recomputes every node position from scratch. Used on initial load and
// after a node transformation; manual dragging is discarded by design here,
// incremental additions go through Merge instead.
func (l *Layout) Full(nodes []Node, edges []Edge) []Node {
	if len(nodes) == 0 {
		return nodes
	}

	index := make(map[string]int, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = i
	}

	// Adjacency restricted to edges whose endpoints both exist.
	succ := make(map[string][]string)
	pred := make(map[string][]string)
	for _, e := range edges {
		if _, ok := index[e.Source]; !ok {
			continue
		}
		if _, ok := index[e.Target]; !ok {
			continue
		}
		succ[e.Source] = append(succ[e.Source], e.Target)
		pred[e.Target] = append(pred[e.Target], e.Source)
	}

	ranks := assignRanks(nodes, succ, pred)

	// Group by rank, keeping input order as the initial in-rank order.
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]int, maxRank+1)
	for i := range nodes {
		r := ranks[nodes[i].ID]
		layers[r] = append(layers[r], i)
	}

	// One barycenter sweep: order each rank by the mean position of its
	// predecessors in the previous rank.
	orderInPrev := make(map[string]int)
	for _, i := range layers[0] {
		orderInPrev[nodes[i].ID] = len(orderInPrev)
	}
	for r := 1; r <= maxRank; r++ {
		layer := layers[r]
		sort.SliceStable(layer, func(a, b int) bool {
			return barycenter(nodes[layer[a]].ID, pred, orderInPrev) <
				barycenter(nodes[layer[b]].ID, pred, orderInPrev)
		})
		orderInPrev = make(map[string]int)
		for pos, i := range layer {
			orderInPrev[nodes[i].ID] = pos
		}
	}

	nodeSep := l.cfg.NodeSep
	if anyExpanded(nodes) {
		nodeSep += l.cfg.ExpandedMargin
	}

	// Column widths and heights.
	colWidth := make([]float64, maxRank+1)
	colHeight := make([]float64, maxRank+1)
	for r, layer := range layers {
		for _, i := range layer {
			w, h := nodeSize(&nodes[i])
			if w > colWidth[r] {
				colWidth[r] = w
			}
			colHeight[r] += h
		}
		if len(layer) > 1 {
			colHeight[r] += float64(len(layer)-1) * nodeSep
		}
	}
	tallest := 0.0
	for _, h := range colHeight {
		if h > tallest {
			tallest = h
		}
	}

	// Place: ranks become columns, each vertically centered against the
	// tallest column.
	out := make([]Node, len(nodes))
	copy(out, nodes)
	x := l.cfg.MarginX
	for r, layer := range layers {
		y := (tallest - colHeight[r]) / 2
		for _, i := range layer {
			w, h := nodeSize(&out[i])
			out[i].Position = Position{X: x + (colWidth[r]-w)/2, Y: y}
			out[i].SourcePosition = PositionRight
			out[i].TargetPosition = PositionLeft
			y += h + nodeSep
		}
		x += colWidth[r] + l.cfg.RankSep
	}

	return out
}

// Merge adds incoming nodes to an already-laid-out graph without moving any
// existing node, so manual dragging survives. Each new node lands to the right
// of its first source in edges, stacked below its siblings.
func (l *Layout) Merge(current []Node, incoming []Node, edges []Edge) []Node {
	existing := make(map[string]*Node, len(current))
	out := make([]Node, len(current))
	copy(out, current)
	for i := range out {
		existing[out[i].ID] = &out[i]
	}

	parentOf := make(map[string]string)
	for _, e := range edges {
		if _, ok := parentOf[e.Target]; !ok {
			parentOf[e.Target] = e.Source
		}
	}

	siblings := make(map[string]int)
	for i := range incoming {
		n := incoming[i]
		if _, ok := existing[n.ID]; ok {
			continue
		}
		n.SourcePosition = PositionRight
		n.TargetPosition = PositionLeft

		parent, ok := existing[parentOf[n.ID]]
		if ok {
			pw, _ := nodeSize(parent)
			_, nh := nodeSize(&n)
			rank := siblings[parent.ID]
			siblings[parent.ID]++
			n.Position = Position{
				X: parent.Position.X + pw + l.cfg.RankSep,
				Y: parent.Position.Y + float64(rank)*(nh+l.cfg.NodeSep),
			}
		}
		out = append(out, n)
		existing[n.ID] = &out[len(out)-1]
	}

	return out
}

// assignRanks computes the longest-path rank of every node from the roots.
// Nodes on a cycle keep the rank they had when first visited.
func assignRanks(nodes []Node, succ, pred map[string][]string) map[string]int {
	ranks := make(map[string]int, len(nodes))

	var visit func(id string, depth int, onPath map[string]bool)
	visit = func(id string, depth int, onPath map[string]bool) {
		if onPath[id] {
			return
		}
		if r, ok := ranks[id]; ok && r >= depth {
			return
		}
		ranks[id] = depth
		onPath[id] = true
		for _, next := range succ[id] {
			visit(next, depth+1, onPath)
		}
		delete(onPath, id)
	}

	for i := range nodes {
		if len(pred[nodes[i].ID]) == 0 {
			visit(nodes[i].ID, 0, make(map[string]bool))
		}
	}
	// Anything unreachable from a root (all-cycle components) starts at 0.
	for i := range nodes {
		if _, ok := ranks[nodes[i].ID]; !ok {
			visit(nodes[i].ID, 0, make(map[string]bool))
		}
	}

	return ranks
}

func barycenter(id string, pred map[string][]string, orderInPrev map[string]int) float64 {
	ps := pred[id]
	if len(ps) == 0 {
		return 0
	}
	sum, n := 0.0, 0
	for _, p := range ps {
		if pos, ok := orderInPrev[p]; ok {
			sum += float64(pos)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func anyExpanded(nodes []Node) bool {
	for i := range nodes {
		if nodes[i].Data.IsExpanded {
			return true
		}
	}
	return false
}
