package puzzle

import (
	"strconv"
	"strings"

	"jigsaw-local/types"
)

// TabRatio is the tab radius as a fraction of the piece dimension
// orthogonal to the edge.
const TabRatio = 0.15

// SegmentKind is a single path drawing instruction.
type SegmentKind byte

const (
	MoveTo SegmentKind = 'M'
	LineTo SegmentKind = 'L'
	ArcTo  SegmentKind = 'A'
	Close  SegmentKind = 'Z'
)

// Segment is one instruction of a piece outline. R and Sweep are only
// meaningful for arcs.
type Segment struct {
	Kind  SegmentKind
	X, Y  float64
	R     float64
	Sweep bool
}

// Path is a closed piece outline.
type Path []Segment

// String renders the path in SVG path syntax.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(s.Kind))
		switch s.Kind {
		case MoveTo, LineTo:
			b.WriteString(" " + num(s.X) + " " + num(s.Y))
		case ArcTo:
			sweep := "0"
			if s.Sweep {
				sweep = "1"
			}
			b.WriteString(" " + num(s.R) + " " + num(s.R) + " 0 0 " + sweep + " " + num(s.X) + " " + num(s.Y))
		}
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GeneratePiecePath returns the SVG outline of the piece at (row, col) in
// board coordinates.
func GeneratePiecePath(row, col int, grid types.GridConfig, boundaries []types.Boundary) string {
	return BuildPiecePath(row, col, grid, GetPieceEdges(row, col, grid, boundaries)).String()
}

// BuildPiecePath traces the outline clockwise from the top-left corner:
// top, right, bottom, left. With a clockwise trace a convex tab is always an
// arc with the sweep flag set and a concave blank one without it, so the
// same arc bulges out of one piece and into its neighbour.
func BuildPiecePath(row, col int, grid types.GridConfig, edges types.PieceEdges) Path {
	w, h := grid.PieceWidth, grid.PieceHeight
	x0, y0 := float64(col)*w, float64(row)*h
	x1, y1 := x0+w, y0+h

	p := Path{{Kind: MoveTo, X: x0, Y: y0}}
	p = appendEdge(p, edges.Top, x0, y0, x1, y0, TabRatio*h)
	p = appendEdge(p, edges.Right, x1, y0, x1, y1, TabRatio*w)
	p = appendEdge(p, edges.Bottom, x1, y1, x0, y1, TabRatio*h)
	p = appendEdge(p, edges.Left, x0, y1, x0, y0, TabRatio*w)
	return append(p, Segment{Kind: Close})
}

func appendEdge(p Path, state types.EdgeState, fx, fy, tx, ty, r float64) Path {
	if state == types.Flat {
		return append(p, Segment{Kind: LineTo, X: tx, Y: ty})
	}
	mx, my := (fx+tx)/2, (fy+ty)/2
	// unit vector along the edge; edges are axis aligned
	dx, dy := sign(tx-fx), sign(ty-fy)
	return append(p,
		Segment{Kind: LineTo, X: mx - dx*r, Y: my - dy*r},
		Segment{Kind: ArcTo, X: mx + dx*r, Y: my + dy*r, R: r, Sweep: state == types.Convex},
		Segment{Kind: LineTo, X: tx, Y: ty},
	)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
