package puzzle

import "jigsaw-local/types"

// Rotations are the allowed piece rotations in degrees.
var Rotations = [4]int{0, 90, 180, 270}

// Orientation is a piece's rotation and mirror state.
type Orientation struct {
	Rotation int
	Flipped  bool
}

// RandomizePieceOrientation draws a uniform rotation when rotate is set and
// an independent 50% flip when flip is set. Disabled attributes stay zero.
func RandomizePieceOrientation(rng Rand, rotate, flip bool) Orientation {
	var o Orientation
	if rotate {
		o.Rotation = Rotations[rng.Intn(len(Rotations))]
	}
	if flip {
		o.Flipped = rng.Intn(2) == 1
	}
	return o
}

// NextRotation returns the rotation 90 degrees clockwise of r.
func NextRotation(r int) int {
	return ((r/90 + 1) % 4) * 90
}

// OrientEdges returns the edges of a piece as they appear after mirroring it
// left to right (when flipped) and then rotating it clockwise by rotation degrees.
func OrientEdges(e types.PieceEdges, rotation int, flipped bool) types.PieceEdges {
	if flipped {
		e.Left, e.Right = e.Right, e.Left
	}
	for i := 0; i < ((rotation/90)%4+4)%4; i++ {
		e = types.PieceEdges{Top: e.Left, Right: e.Top, Bottom: e.Right, Left: e.Bottom}
	}
	return e
}
