// Package linkage solves planar mechanical linkages tick by tick.
//
// A [Linkage] owns an insertion-ordered set of joints. Each joint is one of a
// closed set of kinds:
//
//   - [KindAnchor]: a fixed point
//   - [KindMotor]: a crank rotating around its parent by a fixed step per tick
//   - [KindRevolute]: at given distances from two parents (circle-circle)
//   - [KindSlider]: at a given distance from a parent, on a rail (circle-line)
//   - [KindFixed]: rigidly attached to the bar between two parents
//
// Joints name their parents. The linkage resolves names to indices and orders
// the joints with Kahn's algorithm, breaking ties by insertion index, so the
// same definition always yields the same trajectory.
//
// # Continuity
//
// When two positions satisfy a joint's constraints, the one closest to the
// joint's previous position wins. On the first tick the previous position is
// whatever was passed to [At]; a misleading hint can select the other branch.
//
// # Failures
//
// [ErrUnbuildable] marks geometry with no solution at the current tick and is
// the normal rejection signal for optimizers. [ErrStructural] and
// [ErrNotCompletelyDefined] mark a malformed definition. Coincident circles
// are not an error: the joint keeps its previous position and the event is
// reported by [Linkage.Diagnostics].
//
//	l, err := linkage.New("four-bar",
//	    linkage.NewAnchor("A", linkage.At(0, 0)),
//	    linkage.NewMotor("B", "A", 1, 0.31, linkage.At(0, 1)),
//	    linkage.NewAnchor("D", linkage.At(3, 0)),
//	    linkage.NewRevolute("C", "B", "D", 3, 1, linkage.At(3, 2)),
//	)
//	traj, err := l.Sweep(l.RotationPeriod(), 4)
package linkage
