package cascade

// Node is one tweet observed during a traversal.
type Node struct {
	ID        int64
	Text      string
	Author    string
	IsRetweet bool

	// Parent is nil for roots. It does not own the parent.
	Parent   *Node
	Children []*Node
}

func (n *Node) addChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Label returns the text a renderer shows for the node: the author handle
// for retweets, the tweet text for originals.
func (n *Node) Label() string {
	if n.IsRetweet {
		return n.Author
	}
	return n.Text
}

// Forest is the arena of nodes produced by one Build call.
type Forest struct {
	roots []*Node
	nodes map[int64]*Node
}

func newForest() *Forest {
	return &Forest{nodes: make(map[int64]*Node)}
}

// Roots returns the root nodes in the order they were built.
func (f *Forest) Roots() []*Node { return f.roots }

// Node returns the node with the given ID, or nil.
func (f *Forest) Node(id int64) *Node { return f.nodes[id] }

// Contains reports whether id is already part of the forest.
func (f *Forest) Contains(id int64) bool {
	_, ok := f.nodes[id]
	return ok
}

// Len returns the number of nodes across all roots.
func (f *Forest) Len() int { return len(f.nodes) }

// Walk visits every node breadth-first, root by root, until fn returns false.
func (f *Forest) Walk(fn func(n *Node) bool) {
	for _, root := range f.roots {
		queue := []*Node{root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if !fn(n) {
				return
			}
			queue = append(queue, n.Children...)
		}
	}
}

func (f *Forest) addRoot(t Tweet) *Node {
	n := &Node{ID: t.ID, Text: t.Text, Author: t.Author}
	f.roots = append(f.roots, n)
	f.nodes[n.ID] = n
	return n
}

// attach creates a retweet node under parent. Callers check visited first;
// an ID already in the arena is never re-inserted.
func (f *Forest) attach(parent *Node, t Tweet) *Node {
	if _, ok := f.nodes[t.ID]; ok {
		return nil
	}
	n := &Node{ID: t.ID, Text: t.Text, Author: t.Author, IsRetweet: true, Parent: parent}
	parent.addChild(n)
	f.nodes[n.ID] = n
	return n
}
