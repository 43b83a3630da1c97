package vm

// ---------------------------------------------------------------------------
// Reference counting
// ---------------------------------------------------------------------------
//
// Every reference an item gains — a stack slot, a local variable, a position
// inside a container — counts once towards the engine-wide total, which is
// what the MaxStackItemCount limit bounds. Primitive items are cheap and only
// contribute to the total; compound items and buffers are additionally
// tracked as nodes of a contains graph so that unreachable cycles (an array
// holding itself) can be detected and reclaimed.
//
// Reclamation runs lazily: nodes whose stack-reference count drops to zero
// become sweep candidates, and CheckZeroReferred condenses the candidate
// subgraph into strongly connected components, keeping any component that is
// still referenced from a stack or from a node outside the candidate set.

type rcNode struct {
	stackRefs int
	// children maps the node id of each tracked child to the number of
	// distinct references this node holds to it. Primitive children have
	// no identity and are only tallied in primChildren.
	children     map[int]int
	parents      map[int]int
	primChildren int
}

// ReferenceCounter tracks every live item reference of one engine instance.
type ReferenceCounter struct {
	total  int
	nodes  map[int]*rcNode
	zero   map[int]struct{}
	nextID int
}

// NewReferenceCounter creates an empty counter.
func NewReferenceCounter() *ReferenceCounter {
	return &ReferenceCounter{
		nodes: make(map[int]*rcNode),
		zero:  make(map[int]struct{}),
	}
}

// Count returns the engine-wide reference total.
func (rc *ReferenceCounter) Count() int { return rc.total }

// register allocates a node for a newly created tracked item.
func (rc *ReferenceCounter) register() int {
	rc.nextID++
	rc.nodes[rc.nextID] = &rcNode{
		children: make(map[int]int),
		parents:  make(map[int]int),
	}
	return rc.nextID
}

// AddStackReference records that item gained a stack or slot reference.
func (rc *ReferenceCounter) AddStackReference(item StackItem) {
	rc.total++
	if t, ok := item.(tracked); ok {
		n := rc.nodes[t.refID()]
		if n == nil {
			return
		}
		n.stackRefs++
		delete(rc.zero, t.refID())
	}
}

// RemoveStackReference records that item lost a stack or slot reference.
func (rc *ReferenceCounter) RemoveStackReference(item StackItem) {
	rc.total--
	if t, ok := item.(tracked); ok {
		id := t.refID()
		n := rc.nodes[id]
		if n == nil {
			return
		}
		n.stackRefs--
		if n.stackRefs == 0 {
			rc.zero[id] = struct{}{}
		}
	}
}

// addChildReference records that the node parentID now contains child.
func (rc *ReferenceCounter) addChildReference(child StackItem, parentID int) {
	rc.total++
	p := rc.nodes[parentID]
	if p == nil {
		return
	}
	if t, ok := child.(tracked); ok {
		id := t.refID()
		p.children[id]++
		if c := rc.nodes[id]; c != nil {
			c.parents[parentID]++
		}
	} else {
		p.primChildren++
	}
}

// removeChildReference records that the node parentID no longer contains
// child.
func (rc *ReferenceCounter) removeChildReference(child StackItem, parentID int) {
	rc.total--
	p := rc.nodes[parentID]
	if p == nil {
		return
	}
	if t, ok := child.(tracked); ok {
		id := t.refID()
		if p.children[id]--; p.children[id] == 0 {
			delete(p.children, id)
		}
		c := rc.nodes[id]
		if c == nil {
			return
		}
		if c.parents[parentID]--; c.parents[parentID] == 0 {
			delete(c.parents, parentID)
		}
		if c.stackRefs == 0 {
			rc.zero[id] = struct{}{}
		}
	} else {
		p.primChildren--
	}
}

// CheckZeroReferred sweeps the zero-referred candidates, reclaiming every
// strongly connected component with no stack references and no references
// from outside the candidate set. It returns the reference total after the
// sweep.
func (rc *ReferenceCounter) CheckZeroReferred() int {
	if len(rc.zero) == 0 {
		return rc.total
	}

	// The candidate set is the downward closure of the zero-referred
	// nodes: anything only they reach may have lost its last live path.
	closure := make(map[int]struct{})
	var work []int
	for id := range rc.zero {
		if _, ok := rc.nodes[id]; ok {
			if _, seen := closure[id]; !seen {
				closure[id] = struct{}{}
				work = append(work, id)
			}
		}
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for child := range rc.nodes[id].children {
			if _, ok := rc.nodes[child]; !ok {
				continue
			}
			if _, seen := closure[child]; !seen {
				closure[child] = struct{}{}
				work = append(work, child)
			}
		}
	}
	rc.zero = make(map[int]struct{})

	comps := rc.condense(closure)

	// A component lives if any member still has stack references or is
	// held by a node outside the candidate set; liveness then flows to
	// every component it contains.
	compOf := make(map[int]int, len(closure))
	for ci, comp := range comps {
		for _, id := range comp {
			compOf[id] = ci
		}
	}
	live := make([]bool, len(comps))
	var queue []int
	for ci, comp := range comps {
		for _, id := range comp {
			n := rc.nodes[id]
			if n.stackRefs > 0 {
				live[ci] = true
				break
			}
			external := false
			for parent := range n.parents {
				if _, in := closure[parent]; !in {
					external = true
					break
				}
			}
			if external {
				live[ci] = true
				break
			}
		}
		if live[ci] {
			queue = append(queue, ci)
		}
	}
	for len(queue) > 0 {
		ci := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, id := range comps[ci] {
			for child := range rc.nodes[id].children {
				cj, ok := compOf[child]
				if ok && !live[cj] {
					live[cj] = true
					queue = append(queue, cj)
				}
			}
		}
	}

	// Reclaim dead components. Every reference a dead node holds comes
	// off the total; surviving children shed their dead parent links.
	for ci, comp := range comps {
		if live[ci] {
			continue
		}
		for _, id := range comp {
			n := rc.nodes[id]
			rc.total -= n.primChildren
			for child, refs := range n.children {
				rc.total -= refs
				if c := rc.nodes[child]; c != nil {
					if cj, ok := compOf[child]; !ok || live[cj] {
						delete(c.parents, id)
						if c.stackRefs == 0 {
							rc.zero[child] = struct{}{}
						}
					}
				}
			}
			delete(rc.nodes, id)
		}
	}
	return rc.total
}

// condense runs Tarjan's algorithm over the contains graph restricted to the
// given node set, returning its strongly connected components.
func (rc *ReferenceCounter) condense(set map[int]struct{}) [][]int {
	type frame struct {
		id    int
		iter  []int
		index int
	}
	var (
		comps   [][]int
		counter int
		index   = make(map[int]int, len(set))
		lowlink = make(map[int]int, len(set))
		onStack = make(map[int]bool, len(set))
		stack   []int
	)

	for root := range set {
		if _, visited := index[root]; visited {
			continue
		}
		var frames []frame
		push := func(id int) {
			index[id] = counter
			lowlink[id] = counter
			counter++
			stack = append(stack, id)
			onStack[id] = true
			var succ []int
			for child := range rc.nodes[id].children {
				if _, in := set[child]; in {
					succ = append(succ, child)
				}
			}
			frames = append(frames, frame{id: id, iter: succ})
		}
		push(root)
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.index < len(f.iter) {
				child := f.iter[f.index]
				f.index++
				if _, visited := index[child]; !visited {
					push(child)
				} else if onStack[child] {
					if index[child] < lowlink[f.id] {
						lowlink[f.id] = index[child]
					}
				}
				continue
			}
			if lowlink[f.id] == index[f.id] {
				var comp []int
				for {
					id := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[id] = false
					comp = append(comp, id)
					if id == f.id {
						break
					}
				}
				comps = append(comps, comp)
			}
			done := *f
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if lowlink[done.id] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[done.id]
				}
			}
		}
	}
	return comps
}
