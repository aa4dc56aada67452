package formdata

// Result is the outcome of resolving a binding. Found distinguishes a bound
// element holding an empty value from a binding that matched nothing; both
// render as an empty string.
type Result struct {
	Value string
	Found bool
}

// Resolve walks path through the document and returns the leaf value.
//
// The first segment may name the document element itself; otherwise the
// walk starts among its children. Each segment selects the Index-th (or the
// first) child with a matching name.
func (d *Document) Resolve(path Path) Result {
	n := d.locate(path)
	if n == nil {
		return Result{}
	}
	return Result{Value: n.value(), Found: true}
}

// Value resolves a raw binding string, returning "" when it does not match.
func (d *Document) Value(binding string) string {
	return d.Resolve(ParsePath(binding)).Value
}

// GroupCount returns the number of repetitions of the group bound to path:
// the number of same-named siblings of its last segment under the specific
// parent instances addressed by the earlier segments. Unresolved paths
// count zero.
func (d *Document) GroupCount(path Path) int {
	root := d.Root()
	if root == nil || len(path) == 0 {
		return 0
	}
	last := path.Last()
	parent := root
	if len(path) > 1 {
		parent = d.locate(path[:len(path)-1])
		if parent == nil {
			return 0
		}
	}
	n := len(parent.childrenNamed(last.Name))
	if n == 0 && len(path) == 1 && sameName(root.Name(), last.Name) {
		return 1
	}
	return n
}

// GroupCountBinding is GroupCount for a raw binding string.
func (d *Document) GroupCountBinding(binding string) int {
	return d.GroupCount(ParsePath(binding))
}

func (d *Document) locate(path Path) *Node {
	root := d.Root()
	if root == nil || len(path) == 0 {
		return nil
	}
	current := root
	rest := path
	if sameName(root.Name(), path[0].Name) && len(root.childrenNamed(path[0].Name)) == 0 {
		if path[0].Index > 0 {
			return nil
		}
		rest = path[1:]
	}
	for _, seg := range rest {
		matches := current.childrenNamed(seg.Name)
		i := 0
		if seg.Indexed() {
			i = seg.Index
		}
		if i >= len(matches) {
			return nil
		}
		current = matches[i]
	}
	return current
}
