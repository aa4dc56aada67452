package layout

import (
	"maps"
	"strconv"

	"github.com/lvillar/receipts/formdata"
)

// FilterTopLevel returns the elements that are rendered directly, dropping
// every element listed as a child of some group. Because layouts are flat,
// nested group definitions are in the list too and their children are
// dropped as well, so no element is reached both directly and through a
// group. A layout without groups is returned unchanged.
func FilterTopLevel(elements []Element) []Element {
	owned := make(map[string]bool)
	for _, e := range elements {
		if !e.IsGroup() {
			continue
		}
		for _, id := range e.Children {
			owned[id] = true
		}
	}
	if len(owned) == 0 {
		return elements
	}
	out := make([]Element, 0, len(elements))
	for _, e := range elements {
		if !owned[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// RepeatCount returns how many times group is rendered. A group without a
// group binding is not repeating and renders once.
func RepeatCount(group Element, doc *formdata.Document) int {
	binding := group.Binding(BindingGroup)
	if binding == "" {
		return 1
	}
	return doc.GroupCountBinding(binding)
}

// ExpandGroups computes the repetition count of every group in elements and
// synthesizes the concrete instances of nested groups. Each child group of
// a group with count n yields n copies with ids "child-0" to "child-(n-1)",
// whose group binding is indexed into the matching parent instance and
// whose own count is computed against that instance. The result lists the
// groups of elements in order, each followed by its nested instances.
func ExpandGroups(elements []Element, doc *formdata.Document) []Element {
	byID := indexByID(elements)
	var out []Element
	for _, e := range elements {
		if !e.IsGroup() {
			continue
		}
		g := e
		g.Count = RepeatCount(g, doc)
		out = append(out, g)
		out = appendNested(out, g, nil, byID, doc, 0)
	}
	return out
}

func appendNested(out []Element, group Element, scopes []scope, byID map[string]Element, doc *formdata.Document, depth int) []Element {
	if depth > maxDepth {
		return out
	}
	for i := 0; i < group.Count; i++ {
		inner := pushScope(scopes, group, i)
		for _, childID := range group.Children {
			def, ok := byID[childID]
			if !ok || !def.IsGroup() {
				continue
			}
			inst := instantiateGroup(def, childID+"-"+strconv.Itoa(i), inner, doc)
			out = append(out, inst)
			out = appendNested(out, inst, inner, byID, doc, depth+1)
		}
	}
	return out
}

// maxDepth bounds group nesting so that a group listing itself, directly or
// through another group, cannot recurse forever.
const maxDepth = 32

// scope is one enclosing repeating group instance.
type scope struct {
	group formdata.Path
	index int
}

func pushScope(scopes []scope, group Element, index int) []scope {
	p := formdata.ParsePath(group.Binding(BindingGroup))
	if p == nil {
		return scopes
	}
	out := make([]scope, len(scopes), len(scopes)+1)
	copy(out, scopes)
	return append(out, scope{group: p, index: index})
}

// rebase rewrites every binding of e into the given enclosing instances,
// outermost first, and returns the new bindings. e is not modified.
func rebase(bindings map[string]string, scopes []scope) map[string]string {
	if bindings == nil {
		return nil
	}
	out := maps.Clone(bindings)
	if len(scopes) == 0 {
		return out
	}
	for role, binding := range out {
		p := formdata.ParsePath(binding)
		if p == nil {
			continue
		}
		for _, s := range scopes {
			p = p.Rebase(s.group, s.index)
		}
		out[role] = p.String()
	}
	return out
}

func instantiateGroup(def Element, id string, scopes []scope, doc *formdata.Document) Element {
	inst := def.WithBindings(rebase(def.DataModelBindings, scopes))
	inst.ID = id
	inst.Count = RepeatCount(inst, doc)
	return inst
}

func indexByID(elements []Element) map[string]Element {
	byID := make(map[string]Element, len(elements))
	for _, e := range elements {
		if _, dup := byID[e.ID]; !dup {
			byID[e.ID] = e
		}
	}
	return byID
}
