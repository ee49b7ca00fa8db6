package spatialgraph

import (
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"go.uber.org/multierr"

	"go.viam.com/sam/symbol"
)

// WriteDOT renders the graph in graphviz DOT form, one node per frame and one
// edge per transform. Output is deterministic, frames and edges are emitted in
// symbol order.
func (g *Graph) WriteDOT(w io.Writer) (err error) {
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return multierr.Combine(err, gv.Close())
	}
	defer func() {
		err = multierr.Combine(err, graph.Close(), gv.Close())
	}()

	frames := g.Frames()
	gvNodes := make(map[symbol.Symbol]*cgraph.Node, len(frames))
	for _, id := range frames {
		gvNode, cerr := graph.CreateNode(id.String())
		if cerr != nil {
			return cerr
		}
		gvNodes[id] = gvNode
	}
	for _, from := range frames {
		n := g.nodes[from]
		targets := make([]symbol.Symbol, 0, len(n.out))
		for to := range n.out {
			targets = append(targets, to)
		}
		symbol.Sort(targets)
		for _, to := range targets {
			for i, tr := range n.out[to] {
				edge, cerr := graph.CreateEdge(fmt.Sprintf("%s-%s-%d", from, to, i), gvNodes[from], gvNodes[to])
				if cerr != nil {
					return cerr
				}
				if tr.Pose != nil {
					pt := tr.Pose.Point()
					edge.SetLabel(fmt.Sprintf("(%.3f, %.3f, %.3f)", pt.X, pt.Y, pt.Z))
				}
			}
		}
	}
	return gv.Render(graph, graphviz.XDOT, w)
}
