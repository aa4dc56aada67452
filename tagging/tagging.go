// Package tagging builds the logical structure of a receipt (parts,
// sections and marked content) while it is drawn, so that the PDF can be
// read by assistive technology.
//
// A Tree writes marked-content operators into the current page through the
// engine's raw writer and records a matching structure element for each
// marked sequence. The structure is emitted as catalog entries when the
// document is finished.
package tagging

import (
	"fmt"
	"strings"
)

// Role is a standard structure type.
type Role string

const (
	Document Role = "Document"
	Part     Role = "Part"
	Sect     Role = "Sect"
	H1       Role = "H1"
	H2       Role = "H2"
	P        Role = "P"
	L        Role = "L"
	Figure   Role = "Figure"
)

// Writer is the part of the PDF engine the tree writes through.
// *gofpdf.Fpdf satisfies it.
type Writer interface {
	RawWriteStr(str string)
	PageNo() int
}

// Node is one structure element. Leaves carry the page and marked-content
// id of the content they tag.
type Node struct {
	Role     Role
	Page     int
	MCID     int
	Children []*Node
}

func (n *Node) leaf() bool { return n.Children == nil && n.Page > 0 }

// Tree is the structure tree of one document. It is not safe for
// concurrent use.
type Tree struct {
	w      Writer
	root   *Node
	part   *Node
	sect   *Node
	open   *Node
	mcids  map[int]int
	marked bool
}

// NewTree returns an empty tree writing marked content to w.
func NewTree(w Writer) *Tree {
	return &Tree{
		w:     w,
		root:  &Node{Role: Document},
		mcids: make(map[int]int),
	}
}

// AddPart starts a new part at the top level. Later sections are added to
// it.
func (t *Tree) AddPart() *Node {
	t.part = &Node{Role: Part}
	t.root.Children = append(t.root.Children, t.part)
	t.sect = nil
	return t.part
}

// AddSection starts a new section in the current part.
func (t *Tree) AddSection() *Node {
	if t.part == nil {
		t.AddPart()
	}
	t.sect = &Node{Role: Sect}
	t.part.Children = append(t.part.Children, t.sect)
	return t.sect
}

// Begin opens a marked-content sequence with the given role on the current
// page and records it in the current section. Every Begin must be matched
// by End before the next Begin.
func (t *Tree) Begin(role Role) {
	if t.sect == nil {
		t.AddSection()
	}
	if t.open != nil {
		t.End()
	}
	page := t.w.PageNo()
	id := t.mcids[page]
	t.mcids[page] = id + 1
	n := &Node{Role: role, Page: page, MCID: id}
	t.sect.Children = append(t.sect.Children, n)
	t.open = n
	t.w.RawWriteStr(fmt.Sprintf("/%s <</MCID %d>> BDC", role, id))
}

// End closes the open marked-content sequence.
func (t *Tree) End() {
	if t.open == nil {
		return
	}
	t.open = nil
	t.w.RawWriteStr("EMC")
}

// Tag runs draw inside a new section as a marked-content sequence.
func (t *Tree) Tag(role Role, draw func()) {
	t.AddSection()
	t.Begin(role)
	draw()
	t.End()
}

// Artifact runs draw as page decoration that is not part of the logical
// structure, such as backgrounds and letterheads.
func (t *Tree) Artifact(draw func()) {
	t.End()
	t.w.RawWriteStr("/Artifact BMC")
	draw()
	t.w.RawWriteStr("EMC")
}

// Finalize closes any open sequence and flags the document as tagged.
func (t *Tree) Finalize() {
	t.End()
	t.marked = true
}

// Marked reports whether Finalize has been called.
func (t *Tree) Marked() bool { return t.marked }

// Parts returns the top-level parts.
func (t *Tree) Parts() []*Node { return t.root.Children }

// Catalog returns the document catalog entries that declare the document
// as tagged: mark info, language, viewer preferences and the structure
// tree root. pageRef maps a 1-based page number to an indirect reference.
func (t *Tree) Catalog(lang string, pageRef func(page int) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/MarkInfo <</Marked %t>>", t.marked)
	if lang != "" {
		fmt.Fprintf(&b, " /Lang (%s)", escape(lang))
	}
	b.WriteString(" /ViewerPreferences <</DisplayDocTitle true>>")
	b.WriteString(" /StructTreeRoot <</Type /StructTreeRoot /K [")
	writeNode(&b, t.root, pageRef)
	b.WriteString("]>>")
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, pageRef func(int) string) {
	fmt.Fprintf(b, "<</Type /StructElem /S /%s", n.Role)
	if n.leaf() {
		if pageRef != nil {
			fmt.Fprintf(b, " /Pg %s", pageRef(n.Page))
		}
		fmt.Fprintf(b, " /K %d>>", n.MCID)
		return
	}
	b.WriteString(" /K [")
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeNode(b, c, pageRef)
	}
	b.WriteString("]>>")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
