package formdata

import (
	"strconv"
	"strings"
)

// NoIndex marks a segment that does not address a specific sibling.
const NoIndex = -1

// Segment is one element-name step of a binding path, optionally addressing
// the Index-th same-named sibling.
type Segment struct {
	Name  string
	Index int
}

// Indexed reports whether the segment carries an explicit index.
func (s Segment) Indexed() bool { return s.Index >= 0 }

func (s Segment) String() string {
	if s.Indexed() {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path is a parsed binding path such as "Group[0].Field".
type Path []Segment

// ParsePath parses a dotted, optionally indexed binding path. A trailing
// "value" segment is dropped. Malformed indexes are treated as no index, so
// the result never fails; an empty binding yields a nil Path.
func ParsePath(binding string) Path {
	binding = strings.TrimSpace(binding)
	if binding == "" {
		return nil
	}
	parts := strings.Split(binding, ".")
	if len(parts) > 1 && parts[len(parts)-1] == "value" {
		parts = parts[:len(parts)-1]
	}
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		p = append(p, parseSegment(part))
	}
	return p
}

func parseSegment(s string) Segment {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return Segment{Name: s, Index: NoIndex}
	}
	idx, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil || idx < 0 {
		return Segment{Name: s[:open], Index: NoIndex}
	}
	return Segment{Name: s[:open], Index: idx}
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Last returns the final segment. It panics on an empty path.
func (p Path) Last() Segment { return p[len(p)-1] }

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// WithIndex returns a copy of p whose last segment addresses sibling i.
func (p Path) WithIndex(i int) Path {
	if len(p) == 0 {
		return nil
	}
	out := p.Clone()
	out[len(out)-1].Index = i
	return out
}

// find returns the position of the first run of segments in p whose names
// match sub, ignoring indexes, or -1.
func (p Path) find(sub Path) int {
	if len(sub) == 0 || len(sub) > len(p) {
		return -1
	}
outer:
	for start := 0; start+len(sub) <= len(p); start++ {
		for j := range sub {
			if !sameName(p[start+j].Name, sub[j].Name) {
				continue outer
			}
		}
		return start
	}
	return -1
}

// Rebase rewrites p for iteration index of the repeating group bound to
// group. The segments of p that name the group are replaced by the group's
// own segments, which keep any index inherited from enclosing groups, and
// the last of them is set to index. Paths outside the group are returned
// unchanged.
func (p Path) Rebase(group Path, index int) Path {
	at := p.find(group)
	if at < 0 {
		return p.Clone()
	}
	out := make(Path, 0, len(p))
	out = append(out, p[:at]...)
	out = append(out, group.WithIndex(index)...)
	out = append(out, p[at+len(group):]...)
	return out
}

// RebaseBinding is Rebase for raw binding strings.
func RebaseBinding(binding, group string, index int) string {
	p := ParsePath(binding)
	if p == nil {
		return binding
	}
	return p.Rebase(ParsePath(group), index).String()
}

// normalizeName folds element names so that bindings written in a different
// case or with hyphens still match.
func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", ""))
}

func sameName(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}
