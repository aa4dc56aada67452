// Package formdata resolves layout data bindings against submitted XML form
// data.
//
// A Document is parsed once per request and never mutated, so it can be
// shared freely between goroutines. Lookups never fail: a binding that does
// not match the data resolves to an empty Result and a group that cannot be
// found repeats zero times.
package formdata

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is returned when the form data cannot be decoded.
var ErrMalformed = errors.New("formdata: malformed form data")

// Node is one element of the form data tree.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr
	Text     string // content of the first text child
	Children []*Node

	hasText bool
}

func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	n.Attrs = start.Attr
	for {
		t, err := d.Token()
		if err != nil {
			return err
		}
		switch token := t.(type) {
		case xml.StartElement:
			child := &Node{}
			if err := child.UnmarshalXML(d, token); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			// Only the first run of character data counts as the text
			// child; text between later children is ignored.
			if len(n.Children) == 0 {
				n.Text += string(token)
				n.hasText = true
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Name returns the local element name.
func (n *Node) Name() string { return n.XMLName.Local }

// value returns the leaf value of n. Indentation before the first child of
// a container element is not a value.
func (n *Node) value() string {
	if !n.hasText {
		return ""
	}
	if len(n.Children) > 0 && strings.TrimSpace(n.Text) == "" {
		return ""
	}
	return n.Text
}

// childrenNamed returns the children of n whose name matches name.
func (n *Node) childrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if sameName(c.Name(), name) {
			out = append(out, c)
		}
	}
	return out
}

// Document is a parsed form data tree.
type Document struct {
	root *Node
}

// Parse reads an XML form data document from r.
func Parse(r io.Reader) (*Document, error) {
	var root Node
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &Document{root: &root}, nil
}

// ParseBytes parses an XML form data document held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// ParseBase64 decodes standard base64 and parses the resulting XML.
func ParseBase64(encoded string) (*Document, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformed, err)
	}
	return ParseBytes(data)
}

// Root returns the document element, or nil for a nil Document.
func (d *Document) Root() *Node {
	if d == nil {
		return nil
	}
	return d.root
}
