package tree

// AddParents walks the subtree rooted at root and assigns every descendant
// node a back-reference to its parent.
//
// The pass must run exactly once, on a freshly parsed tree with no shared
// subtrees. Encountering a node whose parent is already assigned means the
// grammar produced a DAG or the pass ran twice; both are programming errors,
// so AddParents panics rather than returning an error.
func AddParents(root *Node) {
	for _, c := range root.Children {
		sub, ok := c.(*Node)
		if !ok {
			continue
		}

		if sub.parent != nil {
			panic("tree: parent already assigned to node " + sub.Rule)
		}

		sub.parent = root

		AddParents(sub)
	}
}
