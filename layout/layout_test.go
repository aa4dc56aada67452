package layout_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lvillar/receipts/formdata"
	"github.com/lvillar/receipts/layout"
)

func field(id, binding string) layout.Element {
	return layout.Element{
		ID:                id,
		Type:              "Input",
		DataModelBindings: map[string]string{layout.BindingSimple: binding},
	}
}

func group(id, binding string, children ...string) layout.Element {
	g := layout.Element{ID: id, Type: "Group", Children: children}
	if binding != "" {
		g.DataModelBindings = map[string]string{layout.BindingGroup: binding}
	}
	return g
}

func ids(elements []layout.Element) []string {
	var out []string
	for _, e := range elements {
		out = append(out, e.ID)
	}
	return out
}

func mustDoc(t *testing.T, xml string) *formdata.Document {
	t.Helper()
	doc, err := formdata.ParseBytes([]byte(xml))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	return doc
}

func TestFilterTopLevel(t *testing.T) {
	elements := []layout.Element{
		field("before", "A"),
		group("g", "G", "c1", "c2", "c3", "c4", "c5", "c6"),
		field("c1", "G.1"), field("c2", "G.2"), field("c3", "G.3"),
		field("c4", "G.4"), field("c5", "G.5"), field("c6", "G.6"),
		field("after", "B"),
	}
	got := ids(layout.FilterTopLevel(elements))
	if diff := cmp.Diff([]string{"before", "g", "after"}, got); diff != "" {
		t.Errorf("FilterTopLevel mismatch (-want +got):\n%s", diff)
	}

	plain := []layout.Element{field("a", "A"), field("b", "B")}
	if diff := cmp.Diff(plain, layout.FilterTopLevel(plain)); diff != "" {
		t.Errorf("layout without groups changed (-want +got):\n%s", diff)
	}
}

func TestFilterTopLevelNested(t *testing.T) {
	elements := []layout.Element{
		group("outer", "P", "name", "inner"),
		field("name", "P.Name"),
		group("inner", "P.N", "deep", "item"),
		field("item", "P.N.Item"),
		group("deep", "P.N.D", "leaf"),
		field("leaf", "P.N.D.Leaf"),
	}
	got := ids(layout.FilterTopLevel(elements))
	if diff := cmp.Diff([]string{"outer"}, got); diff != "" {
		t.Errorf("FilterTopLevel mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkRepeatingGroup(t *testing.T) {
	doc := mustDoc(t, `<Root>
		<Items><Name>one</Name></Items>
		<Items><Name>two</Name></Items>
		<Items><Name>three</Name></Items>
	</Root>`)
	elements := []layout.Element{
		group("items", "Items", "name"),
		field("name", "Items.Name"),
	}
	x := layout.NewExpander(elements, doc)
	if x.Count("items") != 3 {
		t.Fatalf("Count = %d, want 3", x.Count("items"))
	}

	var bindings, instanceIDs, values []string
	err := x.Walk(elements[0], func(in layout.Instance) error {
		b := in.Binding(layout.BindingSimple)
		bindings = append(bindings, b)
		instanceIDs = append(instanceIDs, in.InstanceID)
		values = append(values, doc.Value(b))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if diff := cmp.Diff([]string{"Items[0].Name", "Items[1].Name", "Items[2].Name"}, bindings); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name-0", "name-1", "name-2"}, instanceIDs); diff != "" {
		t.Errorf("instance ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if got := elements[1].Binding(layout.BindingSimple); got != "Items.Name" {
		t.Errorf("definition was modified: %q", got)
	}
}

const nestedData = `<Root>
	<Parent><Title>p0</Title>
		<Nested><Item>a</Item></Nested><Nested><Item>b</Item></Nested><Nested><Item>c</Item></Nested>
	</Parent>
	<Parent><Title>p1</Title>
		<Nested><Item>d</Item></Nested><Nested><Item>e</Item></Nested>
	</Parent>
</Root>`

func nestedLayout() []layout.Element {
	return []layout.Element{
		group("parent", "Parent", "title", "nested"),
		field("title", "Parent.Title"),
		group("nested", "Parent.Nested", "item"),
		field("item", "Parent.Nested.Item"),
	}
}

func TestExpandGroupsNested(t *testing.T) {
	doc := mustDoc(t, nestedData)
	got := layout.ExpandGroups(nestedLayout(), doc)

	type summary struct {
		ID, Binding string
		Count       int
	}
	var sums []summary
	for _, g := range got {
		sums = append(sums, summary{g.ID, g.Binding(layout.BindingGroup), g.Count})
	}
	want := []summary{
		{"parent", "Parent", 2},
		{"nested-0", "Parent[0].Nested", 3},
		{"nested-1", "Parent[1].Nested", 2},
		{"nested", "Parent.Nested", 3},
	}
	if diff := cmp.Diff(want, sums); diff != "" {
		t.Errorf("ExpandGroups mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkNestedGroups(t *testing.T) {
	doc := mustDoc(t, nestedData)
	elements := nestedLayout()
	x := layout.NewExpander(elements, doc)

	var values []string
	err := x.Walk(elements[0], func(in layout.Instance) error {
		values = append(values, doc.Value(in.Binding(layout.BindingSimple)))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"p0", "a", "b", "c", "p1", "d", "e"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkNonRepeatingGroup(t *testing.T) {
	doc := mustDoc(t, `<Root><A>x</A><B>y</B></Root>`)
	elements := []layout.Element{
		group("panel", "", "a", "b"),
		field("a", "A"),
		field("b", "B"),
	}
	var got []string
	x := layout.NewExpander(elements, doc)
	if err := x.Walk(elements[0], func(in layout.Instance) error {
		got = append(got, doc.Value(in.Binding(layout.BindingSimple)))
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "y"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkDanglingChild(t *testing.T) {
	doc := mustDoc(t, `<Root><G><A>1</A></G></Root>`)
	elements := []layout.Element{
		group("g", "G", "missing", "a"),
		field("a", "G.A"),
	}
	x := layout.NewExpander(elements, doc)
	var dangling []string
	x.Dangling = func(groupID, childID string) { dangling = append(dangling, groupID+"/"+childID) }

	visited := 0
	if err := x.Walk(elements[0], func(layout.Instance) error { visited++; return nil }); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if visited != 1 {
		t.Errorf("visited %d elements, want 1", visited)
	}
	if diff := cmp.Diff([]string{"g/missing"}, dangling); diff != "" {
		t.Errorf("dangling mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkStopsOnError(t *testing.T) {
	doc := mustDoc(t, `<Root><G/><G/></Root>`)
	elements := []layout.Element{group("g", "G", "a"), field("a", "G.A")}
	stop := errors.New("stop")
	calls := 0
	err := layout.NewExpander(elements, doc).Walk(elements[0], func(layout.Instance) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Walk returned %v after %d calls", err, calls)
	}
}

func TestLayoutsKeepOrder(t *testing.T) {
	src := `{"zeta":{"data":{"layout":[{"id":"z","type":"Input"}]}},"alpha":{"data":{"layout":[]}},"mid":{"data":{"layout":[]}}}`
	var l layout.Layouts
	if err := json.Unmarshal([]byte(src), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, l.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	fl, ok := l.Get("zeta")
	if !ok || len(fl.Elements()) != 1 || fl.Elements()[0].ID != "z" {
		t.Errorf("unexpected zeta layout: %+v", fl)
	}

	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var again layout.Layouts
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(l.Keys(), again.Keys()); diff != "" {
		t.Errorf("order lost after marshal (-want +got):\n%s", diff)
	}
}

func TestSettings(t *testing.T) {
	s := &layout.Settings{
		Pages:      &layout.PageSettings{Order: []string{"b", "missing", "a"}, ExcludeFromPdf: []string{"hidden"}},
		Components: &layout.ComponentSettings{ExcludeFromPdf: []string{"secret", "row-1"}},
	}
	var l layout.Layouts
	l.Add("a", layout.NewFormLayout())
	l.Add("b", layout.NewFormLayout())
	if diff := cmp.Diff([]string{"b", "a"}, s.PageOrder(&l)); diff != "" {
		t.Errorf("PageOrder mismatch (-want +got):\n%s", diff)
	}
	var none *layout.Settings
	if diff := cmp.Diff([]string{"a", "b"}, none.PageOrder(&l)); diff != "" {
		t.Errorf("default PageOrder mismatch (-want +got):\n%s", diff)
	}

	if s.IncludeComponent("secret") || !s.IncludeComponent("public") || s.IncludeComponent("row-1") {
		t.Error("IncludeComponent gave unexpected results")
	}

	visible := []layout.Element{field("public", "A")}
	onlyHidden := []layout.Element{field("secret", "A"), {ID: "nav", Type: "NavigationButtons"}}
	if !s.IncludePage("a", visible) {
		t.Error("page with a visible component should be included")
	}
	if s.IncludePage("hidden", visible) {
		t.Error("excluded page should not be included")
	}
	if s.IncludePage("a", onlyHidden) {
		t.Error("page without visible components should not be included")
	}
}
