package tagging_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lvillar/receipts/tagging"
)

type recorder struct {
	page int
	ops  []string
}

func (r *recorder) RawWriteStr(s string) { r.ops = append(r.ops, s) }
func (r *recorder) PageNo() int          { return r.page }

func TestTreeMarkedContent(t *testing.T) {
	w := &recorder{page: 1}
	tree := tagging.NewTree(w)

	tree.AddPart()
	tree.Tag(tagging.H1, func() {})
	tree.AddPart()
	tree.Tag(tagging.H2, func() {})
	tree.Tag(tagging.P, func() {})
	w.page = 2
	tree.Tag(tagging.P, func() {})

	want := []string{
		"/H1 <</MCID 0>> BDC", "EMC",
		"/H2 <</MCID 1>> BDC", "EMC",
		"/P <</MCID 2>> BDC", "EMC",
		"/P <</MCID 0>> BDC", "EMC",
	}
	if diff := cmp.Diff(want, w.ops); diff != "" {
		t.Errorf("operators mismatch (-want +got):\n%s", diff)
	}

	parts := tree.Parts()
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if n := len(parts[1].Children); n != 3 {
		t.Errorf("second part has %d sections, want 3", n)
	}
	leaf := parts[1].Children[2].Children[0]
	if leaf.Role != tagging.P || leaf.Page != 2 || leaf.MCID != 0 {
		t.Errorf("unexpected leaf %+v", leaf)
	}
}

func TestTreeBeginClosesOpenSequence(t *testing.T) {
	w := &recorder{page: 1}
	tree := tagging.NewTree(w)
	tree.Begin(tagging.P)
	tree.Begin(tagging.P)
	tree.Finalize()
	want := []string{"/P <</MCID 0>> BDC", "EMC", "/P <</MCID 1>> BDC", "EMC"}
	if diff := cmp.Diff(want, w.ops); diff != "" {
		t.Errorf("operators mismatch (-want +got):\n%s", diff)
	}
}

func TestArtifact(t *testing.T) {
	w := &recorder{page: 1}
	tree := tagging.NewTree(w)
	tree.Artifact(func() { w.RawWriteStr("re f") })
	tree.Tag(tagging.P, func() {})
	want := []string{"/Artifact BMC", "re f", "EMC", "/P <</MCID 0>> BDC", "EMC"}
	if diff := cmp.Diff(want, w.ops); diff != "" {
		t.Errorf("operators mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog(t *testing.T) {
	w := &recorder{page: 1}
	tree := tagging.NewTree(w)
	tree.AddPart()
	tree.Tag(tagging.H1, func() {})

	before := tree.Catalog("nb", nil)
	if !strings.Contains(before, "/MarkInfo <</Marked false>>") {
		t.Errorf("catalog before Finalize: %s", before)
	}

	tree.Finalize()
	if !tree.Marked() {
		t.Fatal("tree not marked after Finalize")
	}
	got := tree.Catalog("nb", func(page int) string { return fmt.Sprintf("%d 0 R", 1+2*page) })
	for _, want := range []string{
		"/MarkInfo <</Marked true>>",
		"/Lang (nb)",
		"/ViewerPreferences <</DisplayDocTitle true>>",
		"/StructTreeRoot <</Type /StructTreeRoot /K [<</Type /StructElem /S /Document /K [<</Type /StructElem /S /Part",
		"/S /H1 /Pg 3 0 R /K 0>>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("catalog missing %q:\n%s", want, got)
		}
	}
}
