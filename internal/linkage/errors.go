package linkage

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for linkage operations.
var (
	// ErrUnbuildable indicates a joint's constraints admit no real position.
	ErrUnbuildable = errors.New("linkage: unbuildable")

	// ErrStructural indicates a malformed joint graph (dangling parent, cycle).
	ErrStructural = errors.New("linkage: structural error")

	// ErrNotCompletelyDefined indicates a joint resolved before its
	// coordinates or parents were set.
	ErrNotCompletelyDefined = errors.New("linkage: joint not completely defined")

	// ErrConstraintCount indicates a flat constraint list of the wrong length.
	ErrConstraintCount = errors.New("linkage: constraint count mismatch")

	// ErrPositionCount indicates a position list of the wrong length.
	ErrPositionCount = errors.New("linkage: position count mismatch")

	// ErrInvalidConstraint indicates a non-finite or negative constraint value.
	ErrInvalidConstraint = errors.New("linkage: invalid constraint value")

	// ErrInvalidSweep indicates non-positive sweep dimensions.
	ErrInvalidSweep = errors.New("linkage: invalid sweep parameters")
)

// UnbuildableError names the joint whose geometry failed.
type UnbuildableError struct {
	Joint string
	Cause error
}

func (e *UnbuildableError) Error() string {
	return fmt.Sprintf("linkage: joint %q is unbuildable: %v", e.Joint, e.Cause)
}

func (e *UnbuildableError) Unwrap() error        { return e.Cause }
func (e *UnbuildableError) Is(target error) bool { return target == ErrUnbuildable }

type StructuralError struct {
	Reason string
	Joint  string
	// Unresolved lists the joints left over when a cycle stops ordering, or
	// the missing parent name for a dangling reference.
	Unresolved []string
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	b.WriteString("linkage: ")
	b.WriteString(e.Reason)
	if e.Joint != "" {
		fmt.Fprintf(&b, " at joint %q", e.Joint)
	}
	if len(e.Unresolved) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Unresolved, ", "))
	}
	return b.String()
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

type NotDefinedError struct {
	Joint  string
	Reason string
}

func (e *NotDefinedError) Error() string {
	return fmt.Sprintf("linkage: joint %q not completely defined: %s", e.Joint, e.Reason)
}

func (e *NotDefinedError) Is(target error) bool { return target == ErrNotCompletelyDefined }

// SimulationError wraps a tick failure with the sweep tick it happened on.
type SimulationError struct {
	Tick    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// IsRejection reports whether err is the ordinary "bad candidate" outcome of
// a sweep, as opposed to a malformed linkage.
func IsRejection(err error) bool {
	return errors.Is(err, ErrUnbuildable)
}
