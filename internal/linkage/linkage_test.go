package linkage_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

func fourBar(step float64) *linkage.Linkage {
	l, err := linkage.New("four-bar",
		linkage.NewAnchor("A", linkage.At(0, 0)),
		linkage.NewMotor("B", "A", 1, step, linkage.At(0, 1)),
		linkage.NewAnchor("D", linkage.At(3, 0)),
		linkage.NewRevolute("C", "B", "D", 3, 1, linkage.At(3, 2)),
	)
	Expect(err).NotTo(HaveOccurred())
	return l
}

var _ = Describe("Four-bar linkage", func() {
	var l *linkage.Linkage

	BeforeEach(func() {
		l = fourBar(0.31)
	})

	It("is exactly constrained", func() {
		Expect(l.DegreesOfFreedom()).To(Equal(0))
	})

	It("orders every joint after its parents", func() {
		order, err := l.SolveOrder()
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]int{0, 1, 2, 3}))
	})

	It("has a rotation period of 20 ticks", func() {
		Expect(l.RotationPeriod()).To(Equal(20))
	})

	It("places the first tick from the construction hints", func() {
		f, err := l.Tick(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[1].X).To(BeNumerically("~", -0.30505864, 1e-6))
		Expect(f[1].Y).To(BeNumerically("~", 0.95233357, 1e-6))
		Expect(f[3].X).To(BeNumerically("~", 2.69494136, 1e-6))
		Expect(f[3].Y).To(BeNumerically("~", 0.95233357, 1e-6))
	})

	It("keeps every bar length over a sweep", func() {
		traj, err := l.Sweep(l.RotationPeriod(), 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj).To(HaveLen(80))
		for _, f := range traj {
			Expect(f[1].Dist(f[0])).To(BeNumerically("~", 1, 1e-9))
			Expect(f[3].Dist(f[1])).To(BeNumerically("~", 3, 1e-9))
			Expect(f[3].Dist(f[2])).To(BeNumerically("~", 1, 1e-9))
		}
	})

	It("traces a closed locus over a full revolution", func() {
		traj, err := l.Sweep(l.RotationPeriod()+1, 1)
		Expect(err).NotTo(HaveOccurred())
		c := traj.Locus(3)
		Expect(c[0].Dist(c[len(c)-1])).To(BeNumerically("<", 0.2))
	})

	It("closes exactly when the step divides a turn", func() {
		l = fourBar(2 * math.Pi / 20)
		traj, err := l.Sweep(l.RotationPeriod()+1, 1)
		Expect(err).NotTo(HaveOccurred())
		c := traj.Locus(3)
		Expect(c[0].Dist(c[len(c)-1])).To(BeNumerically("<", 1e-9))
	})

	It("never reports unbuildable over several revolutions", func() {
		_, err := l.Sweep(10*l.RotationPeriod(), 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Diagnostics()).To(BeEmpty())
	})

	It("samples the same path whatever the subdivision", func() {
		var ends []geom.Point
		for _, n := range []int{1, 4, 16} {
			l = fourBar(0.31)
			traj, err := l.Sweep(1, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj).To(HaveLen(n))
			ends = append(ends, traj[len(traj)-1][3])
		}
		Expect(ends[1].Dist(ends[0])).To(BeNumerically("<", 1e-9))
		Expect(ends[2].Dist(ends[0])).To(BeNumerically("<", 1e-9))
	})

	It("rejects an invalid sweep", func() {
		_, err := l.Sweep(0, 1)
		Expect(err).To(MatchError(linkage.ErrInvalidSweep))
	})
})

var _ = Describe("Infeasible geometry", func() {
	It("fails on the first resolve", func() {
		l, err := linkage.New("apart",
			linkage.NewAnchor("P", linkage.At(0, 0)),
			linkage.NewAnchor("Q", linkage.At(10, 0)),
			linkage.NewRevolute("R", "P", "Q", 1, 1, linkage.At(5, 1)),
		)
		Expect(err).NotTo(HaveOccurred())

		traj, err := l.Sweep(1, 1)
		Expect(traj).To(BeNil())
		Expect(err).To(MatchError(linkage.ErrUnbuildable))
		Expect(linkage.IsRejection(err)).To(BeTrue())

		var simErr *linkage.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Tick).To(Equal(0))

		var ub *linkage.UnbuildableError
		Expect(errors.As(err, &ub)).To(BeTrue())
		Expect(ub.Joint).To(Equal("R"))
		Expect(errors.Is(err, geom.ErrNoIntersection)).To(BeTrue())
	})

	It("discards the partial trajectory when a later tick fails", func() {
		l := fourBar(0.31)
		Expect(l.SetConstraints([]float64{1, 3, 0.5})).To(Succeed())
		_, err := l.Sweep(l.RotationPeriod(), 1)
		Expect(err).To(MatchError(linkage.ErrUnbuildable))
	})
})

var _ = Describe("Structural validation", func() {
	It("rejects a dangling parent at build time", func() {
		_, err := linkage.New("dangling",
			linkage.NewAnchor("A", linkage.At(0, 0)),
			linkage.NewRevolute("C", "A", "ghost", 1, 1),
		)
		Expect(err).To(MatchError(linkage.ErrStructural))
		var se *linkage.StructuralError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Unresolved).To(ConsistOf("ghost"))
	})

	It("rejects a cycle and names the joints left unresolved", func() {
		_, err := linkage.New("loop",
			linkage.NewAnchor("A", linkage.At(0, 0)),
			linkage.NewRevolute("X", "A", "Y", 1, 1),
			linkage.NewRevolute("Y", "A", "X", 1, 1),
		)
		Expect(err).To(MatchError(linkage.ErrStructural))
		var se *linkage.StructuralError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Unresolved).To(ConsistOf("X", "Y"))
	})

	It("rejects duplicate names", func() {
		_, err := linkage.New("dup",
			linkage.NewAnchor("A", linkage.At(0, 0)),
			linkage.NewAnchor("A", linkage.At(1, 0)),
		)
		Expect(err).To(MatchError(linkage.ErrStructural))
	})

	It("rebuilds the cached order after rewiring", func() {
		l := fourBar(0.31)
		Expect(l.Rewire("C", "B", "C")).To(Succeed())
		_, err := l.Tick(1)
		Expect(err).To(MatchError(linkage.ErrStructural))

		Expect(l.Rewire("C", "B", "D")).To(Succeed())
		_, err = l.Tick(1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports an anchor without coordinates as not completely defined", func() {
		l, err := linkage.New("bare", linkage.NewAnchor("A"))
		Expect(err).NotTo(HaveOccurred())
		_, err = l.Tick(1)
		Expect(err).To(MatchError(linkage.ErrNotCompletelyDefined))
		Expect(err).NotTo(MatchError(linkage.ErrUnbuildable))
	})
})
