package lower

import "sort"

// SequencePoint binds a bytecode offset to a source location, the debug
// symbol data a PDB-equivalent side channel supplies per method.
type SequencePoint struct {
	ILOffset uint32
	File     string
	Line     int
	Column   int
}

// sequencePointAt returns the sequence point whose ILOffset is the greatest
// one at or below offset, per §9 ("the last one whose bytecode offset is ≤
// the current instruction's offset, binary search over a sorted vector").
// points must be sorted by ILOffset; callers hold a single sorted slice per
// method and reuse it across every instruction.
func sequencePointAt(points []SequencePoint, offset uint32) (SequencePoint, bool) {
	if len(points) == 0 {
		return SequencePoint{}, false
	}
	i := sort.Search(len(points), func(i int) bool {
		return points[i].ILOffset > offset
	})
	if i == 0 {
		return SequencePoint{}, false
	}
	return points[i-1], true
}
