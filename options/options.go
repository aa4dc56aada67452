// Package options turns stored option codes into display labels.
package options

import (
	"maps"
	"slices"
	"strings"

	"github.com/lvillar/receipts/layout"
)

// Dictionary maps an options id to its label-to-value table, as supplied
// with a generation request.
type Dictionary map[string]map[string]string

// LabelFor returns the label of the option whose value is raw. Inline
// options on the element take precedence over the dictionary. When nothing
// matches, raw is returned unchanged.
func LabelFor(raw string, e layout.Element, dict Dictionary) string {
	if e.Options != nil {
		for _, o := range e.Options {
			if o.Value == raw {
				return o.Label
			}
		}
		return raw
	}
	if e.OptionsID == "" {
		return raw
	}
	set, ok := dict[e.OptionsID]
	if !ok {
		return raw
	}
	// Labels may share a value; the first in sorted order wins.
	for _, label := range slices.Sorted(maps.Keys(set)) {
		if set[label] == raw {
			return label
		}
	}
	return raw
}

// Display resolves the stored value of an option-valued element to the text
// shown in the receipt. Checkboxes store several comma separated codes;
// every code is resolved on its own and the labels are joined with ", ".
// Each label is passed through lookup, which maps text resource keys to
// their text.
func Display(raw string, e layout.Element, dict Dictionary, lookup func(string) string) string {
	if raw == "" {
		return ""
	}
	values := []string{raw}
	if e.Is(layout.TypeCheckboxes) {
		values = strings.Split(raw, ",")
	}
	labels := make([]string, 0, len(values))
	for _, v := range values {
		label := LabelFor(strings.TrimSpace(v), e, dict)
		if lookup != nil {
			label = lookup(label)
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}
