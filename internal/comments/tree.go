package comments

// Transform rebuilds roots depth-first. For each node where match returns
// true, update decides its replacement; returning false removes the node and
// its subtree. Matched nodes are not descended into. The input is never
// modified.
func Transform(roots []Node, match func(Node) bool, update func(Node) (Node, bool)) []Node {
	out := make([]Node, 0, len(roots))
	for _, n := range roots {
		if match(n) {
			replacement, keep := update(cloneNode(n))
			if keep {
				out = append(out, replacement)
			}
			continue
		}
		copied := n
		if copied.ParentID != nil {
			parent := *copied.ParentID
			copied.ParentID = &parent
		}
		if n.Replies != nil {
			copied.Replies = Transform(n.Replies, match, update)
		}
		out = append(out, copied)
	}
	return out
}

func byID(id int64) func(Node) bool {
	return func(n Node) bool { return n.ID == id }
}

// InsertTopLevel returns roots with n prepended. A node that names a parent
// is routed to InsertReply so replies never surface at the top level.
func InsertTopLevel(roots []Node, n Node) []Node {
	if n.ParentID != nil {
		return InsertReply(roots, *n.ParentID, n)
	}
	out := make([]Node, 0, len(roots)+1)
	out = append(out, cloneNode(n))
	return append(out, cloneTree(roots)...)
}

// InsertReply appends reply to the replies of the node with parentID at any
// depth. An unknown parent leaves roots unchanged.
func InsertReply(roots []Node, parentID int64, reply Node) []Node {
	if _, ok := Find(roots, parentID); !ok {
		return roots
	}
	reply = cloneNode(reply)
	reply.ParentID = &parentID
	return Transform(roots, byID(parentID), func(parent Node) (Node, bool) {
		parent.Replies = append(parent.Replies, reply)
		return parent, true
	})
}

// Edit merges the server echo updated into the node with id. The body is
// always replaced; other echoed fields replace existing values only when set.
// Existing replies survive unless the echo carries its own. An unknown id is a
// no-op.
func Edit(roots []Node, id int64, updated Node) []Node {
	if _, ok := Find(roots, id); !ok {
		return roots
	}
	return Transform(roots, byID(id), func(existing Node) (Node, bool) {
		existing.Body = updated.Body
		if updated.Author.ID != 0 {
			existing.Author = updated.Author
		}
		if !updated.CreatedAt.IsZero() {
			existing.CreatedAt = updated.CreatedAt
		}
		if !updated.UpdatedAt.IsZero() {
			existing.UpdatedAt = updated.UpdatedAt
		}
		if len(updated.Replies) > 0 {
			existing.Replies = cloneTree(updated.Replies)
		}
		return existing, true
	})
}

// SetReactions replaces the reaction tally of the node with id, leaving its
// body and replies alone. An unknown id is a no-op.
func SetReactions(roots []Node, id int64, r Reactions) []Node {
	if _, ok := Find(roots, id); !ok {
		return roots
	}
	return Transform(roots, byID(id), func(existing Node) (Node, bool) {
		existing.Reactions = r
		return existing, true
	})
}

// Delete removes the node with id and its whole subtree.
func Delete(roots []Node, id int64) []Node {
	if _, ok := Find(roots, id); !ok {
		return roots
	}
	return Transform(roots, byID(id), func(Node) (Node, bool) {
		return Node{}, false
	})
}

// TopLevel returns the nodes of roots without a parent, in order.
func TopLevel(roots []Node) []Node {
	out := make([]Node, 0, len(roots))
	for _, n := range roots {
		if n.IsTopLevel() {
			out = append(out, cloneNode(n))
		}
	}
	return out
}

// Walk visits every node depth-first, parents before replies. Returning false
// from fn stops the walk.
func Walk(roots []Node, fn func(n Node, depth int) bool) {
	walk(roots, 0, fn)
}

func walk(nodes []Node, depth int, fn func(Node, int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if !walk(n.Replies, depth+1, fn) {
			return false
		}
	}
	return true
}

// Find locates the node with id at any depth.
func Find(roots []Node, id int64) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	Walk(roots, func(n Node, _ int) bool {
		if n.ID == id {
			found, ok = cloneNode(n), true
			return false
		}
		return true
	})
	return found, ok
}

// Count returns the number of nodes in the tree.
func Count(roots []Node) int {
	total := 0
	Walk(roots, func(Node, int) bool {
		total++
		return true
	})
	return total
}

// SubtreeIDs returns id and every descendant id, or nil if id is absent.
func SubtreeIDs(roots []Node, id int64) []int64 {
	n, ok := Find(roots, id)
	if !ok {
		return nil
	}
	ids := []int64{n.ID}
	Walk(n.Replies, func(child Node, _ int) bool {
		ids = append(ids, child.ID)
		return true
	})
	return ids
}
