package layout

import (
	"strconv"

	"github.com/lvillar/receipts/formdata"
)

// Instance is a concrete element produced by walking a group: a copy of the
// child definition whose bindings address one group repetition.
type Instance struct {
	Element
	// InstanceID is the child id suffixed with the repetition index, as
	// used by visibility settings.
	InstanceID string
}

// Expander walks the repeating groups of one layout against one form data
// document. It never modifies the layout: every visited element is a fresh
// copy, so concurrent walks over the same layout are safe.
type Expander struct {
	byID   map[string]Element
	counts map[string]int
	doc    *formdata.Document

	// Dangling, when set, is called for a child id with no definition.
	// The child is skipped either way.
	Dangling func(groupID, childID string)
	// Include, when set, decides whether a nested group is walked. It is
	// asked about both the group id and the instance id.
	Include func(id string) bool
}

// NewExpander prepares a walk over elements, computing group repetition
// counts with ExpandGroups.
func NewExpander(elements []Element, doc *formdata.Document) *Expander {
	x := &Expander{
		byID:   indexByID(elements),
		counts: make(map[string]int),
		doc:    doc,
	}
	for _, g := range ExpandGroups(elements, doc) {
		if _, seen := x.counts[g.ID]; !seen {
			x.counts[g.ID] = g.Count
		}
	}
	return x
}

// Count returns the repetition count computed for the top-level group id.
func (x *Expander) Count(id string) int { return x.counts[id] }

// Walk visits the rendered children of group in order: for every
// repetition, every child id, with nested groups walked recursively in
// place. Returning an error from visit stops the walk.
func (x *Expander) Walk(group Element, visit func(Instance) error) error {
	count, ok := x.counts[group.ID]
	if !ok {
		count = RepeatCount(group, x.doc)
	}
	group.Count = count
	return x.walk(group, nil, 1, visit)
}

func (x *Expander) walk(group Element, scopes []scope, depth int, visit func(Instance) error) error {
	if depth > maxDepth {
		return nil
	}
	for i := 0; i < group.Count; i++ {
		inner := pushScope(scopes, group, i)
		for _, childID := range group.Children {
			def, ok := x.byID[childID]
			if !ok {
				if x.Dangling != nil {
					x.Dangling(group.ID, childID)
				}
				continue
			}
			instanceID := childID + "-" + strconv.Itoa(i)
			if def.IsGroup() {
				if x.Include != nil && (!x.Include(childID) || !x.Include(instanceID)) {
					continue
				}
				inst := instantiateGroup(def, instanceID, inner, x.doc)
				if err := x.walk(inst, inner, depth+1, visit); err != nil {
					return err
				}
				continue
			}
			child := def.WithBindings(rebase(def.DataModelBindings, inner))
			err := visit(Instance{
				Element:    child,
				InstanceID: instanceID,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
