package linkage

import (
	"container/heap"
	"fmt"
)

// readyQueue is a min-heap of joint indices so that, among joints whose
// parents are all placed, the earliest inserted is ordered first.
type readyQueue []int

func (q readyQueue) Len() int           { return len(q) }
func (q readyQueue) Less(i, j int) bool { return q[i] < q[j] }
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x any)        { *q = append(*q, x.(int)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// bindParents resolves every parent name to an index and checks the parent
// count of each joint against its kind.
func (l *Linkage) bindParents() error {
	for _, j := range l.joints {
		lo, hi := j.kind.parentRange()
		if n := len(j.parents); n < lo || n > hi {
			return &StructuralError{
				Reason: fmt.Sprintf("%s joint takes %d to %d parents, has %d", j.kind, lo, hi, n),
				Joint:  j.name,
			}
		}
		j.pidx = j.pidx[:0]
		for _, name := range j.parents {
			idx, ok := l.index[name]
			if !ok {
				return &StructuralError{Reason: "dangling parent reference", Joint: j.name, Unresolved: []string{name}}
			}
			j.pidx = append(j.pidx, idx)
		}
	}
	return nil
}

// buildOrder runs Kahn's algorithm over parent -> child edges.
func (l *Linkage) buildOrder() ([]int, error) {
	if err := l.bindParents(); err != nil {
		return nil, err
	}

	n := len(l.joints)
	indegree := make([]int, n)
	children := make([][]int, n)
	for _, j := range l.joints {
		for _, p := range j.pidx {
			children[p] = append(children[p], j.id)
			indegree[j.id]++
		}
	}

	q := &readyQueue{}
	for id := 0; id < n; id++ {
		if indegree[id] == 0 {
			heap.Push(q, id)
		}
	}

	order := make([]int, 0, n)
	for q.Len() > 0 {
		id := heap.Pop(q).(int)
		order = append(order, id)
		for _, c := range children[id] {
			indegree[c]--
			if indegree[c] == 0 {
				heap.Push(q, c)
			}
		}
	}

	if len(order) < n {
		var stuck []string
		for id, d := range indegree {
			if d > 0 {
				stuck = append(stuck, l.joints[id].name)
			}
		}
		return nil, &StructuralError{Reason: "dependency cycle", Unresolved: stuck}
	}
	return order, nil
}
