// Package layout defines the JSON form layout schema of a submission and
// expands its repeating groups against form data.
//
// A layout is a flat, ordered list of components. Group components refer to
// their children by id, so a child is defined once at the top level of the
// list and rendered through its group.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Component types with special handling.
const (
	TypeGroup            = "Group"
	TypeParagraph        = "Paragraph"
	TypeHeader           = "Header"
	TypeFileUpload       = "FileUpload"
	TypeFileUploadTag    = "FileUploadWithTag"
	TypeAttachmentList   = "AttachmentList"
	TypeAddress          = "AddressComponent"
	TypeDatepicker       = "Datepicker"
	TypeCheckboxes       = "Checkboxes"
	TypeButton           = "Button"
	TypeNavigation       = "NavigationButtons"
	TypeNavigationBar    = "NavigationBar"
	TypePrintButton      = "PrintButton"
	TypeInstantiationBtn = "InstantiationButton"
)

// Binding roles used in dataModelBindings.
const (
	BindingSimple      = "simpleBinding"
	BindingGroup       = "group"
	BindingAddress     = "address"
	BindingZipCode     = "zipCode"
	BindingPostPlace   = "postPlace"
	BindingCareOf      = "careOf"
	BindingHouseNumber = "houseNumber"
)

// Option is one inline value/label pair of an option-valued component.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Element is one component of a layout.
type Element struct {
	ID                   string            `json:"id"`
	Type                 string            `json:"type"`
	DataModelBindings    map[string]string `json:"dataModelBindings,omitempty"`
	TextResourceBindings map[string]string `json:"textResourceBindings,omitempty"`
	Options              []Option          `json:"options,omitempty"`
	OptionsID            string            `json:"optionsId,omitempty"`
	Children             []string          `json:"children,omitempty"`
	Count                int               `json:"count,omitempty"`
	MaxCount             int               `json:"maxCount,omitempty"`
	Simplified           bool              `json:"simplified,omitempty"`
	DataTypeIDs          []string          `json:"dataTypeIds,omitempty"`
}

// Is reports whether the element has the given type, ignoring case.
func (e Element) Is(typ string) bool { return strings.EqualFold(e.Type, typ) }

// IsGroup reports whether the element is a group.
func (e Element) IsGroup() bool { return e.Is(TypeGroup) }

// Renderable reports whether the element produces output. Buttons and
// navigation controls never do.
func (e Element) Renderable() bool {
	switch strings.ToLower(e.Type) {
	case "button", "navigationbuttons", "navigationbar", "printbutton", "instantiationbutton":
		return false
	}
	return true
}

// HasOptions reports whether the stored value is an option code.
func (e Element) HasOptions() bool { return e.OptionsID != "" || e.Options != nil }

// Binding returns the data binding for role, or "".
func (e Element) Binding(role string) string { return e.DataModelBindings[role] }

// Title returns the title text resource key, or "".
func (e Element) Title() string { return e.TextResourceBindings["title"] }

// Description returns the description text resource key, or "".
func (e Element) Description() string { return e.TextResourceBindings["description"] }

// WithBindings returns a copy of e that uses bindings.
func (e Element) WithBindings(bindings map[string]string) Element {
	e.DataModelBindings = bindings
	return e
}

// FormLayout is the JSON document of one layout page.
type FormLayout struct {
	Data struct {
		Layout []Element `json:"layout"`
	} `json:"data"`
}

// NewFormLayout builds a FormLayout from elements.
func NewFormLayout(elements ...Element) *FormLayout {
	fl := &FormLayout{}
	fl.Data.Layout = elements
	return fl
}

// Elements returns the layout's components in order.
func (f *FormLayout) Elements() []Element {
	if f == nil {
		return nil
	}
	return f.Data.Layout
}

// Layouts is a set of named layouts that keeps the order in which they
// were declared.
type Layouts struct {
	keys  []string
	pages map[string]*FormLayout
}

// Add appends or replaces the layout named key.
func (l *Layouts) Add(key string, fl *FormLayout) {
	if l.pages == nil {
		l.pages = make(map[string]*FormLayout)
	}
	if _, ok := l.pages[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.pages[key] = fl
}

// Get returns the layout named key.
func (l *Layouts) Get(key string) (*FormLayout, bool) {
	if l == nil {
		return nil, false
	}
	fl, ok := l.pages[key]
	return fl, ok
}

// Keys returns layout names in declaration order.
func (l *Layouts) Keys() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.keys...)
}

// Len returns the number of layouts.
func (l *Layouts) Len() int {
	if l == nil {
		return 0
	}
	return len(l.keys)
}

// UnmarshalJSON decodes a JSON object of layouts, keeping key order.
func (l *Layouts) UnmarshalJSON(data []byte) error {
	*l = Layouts{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("layout: reading layouts: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("layout: layouts must be an object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("layout: reading layout name: %w", err)
		}
		key, _ := tok.(string)
		var fl FormLayout
		if err := dec.Decode(&fl); err != nil {
			return fmt.Errorf("layout: decoding layout %q: %w", key, err)
		}
		l.Add(key, &fl)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("layout: reading layouts: %w", err)
	}
	return nil
}

// MarshalJSON encodes the layouts as a JSON object in declaration order.
func (l Layouts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range l.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(l.pages[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Settings holds the layout settings that control page order and what is
// left out of the PDF.
type Settings struct {
	Pages      *PageSettings      `json:"pages,omitempty"`
	Components *ComponentSettings `json:"components,omitempty"`
}

// PageSettings configures layout pages.
type PageSettings struct {
	Order          []string `json:"order,omitempty"`
	ExcludeFromPdf []string `json:"excludeFromPdf,omitempty"`
}

// ComponentSettings configures individual components.
type ComponentSettings struct {
	ExcludeFromPdf []string `json:"excludeFromPdf,omitempty"`
}

// IncludeComponent reports whether the component id is rendered.
func (s *Settings) IncludeComponent(id string) bool {
	if s == nil || s.Components == nil {
		return true
	}
	return !slices.Contains(s.Components.ExcludeFromPdf, id)
}

// IncludePage reports whether the layout named key is rendered: it must not
// be excluded and must hold at least one visible component.
func (s *Settings) IncludePage(key string, elements []Element) bool {
	if s != nil && s.Pages != nil && slices.Contains(s.Pages.ExcludeFromPdf, key) {
		return false
	}
	for _, e := range elements {
		if e.Renderable() && s.IncludeComponent(e.ID) {
			return true
		}
	}
	return false
}

// PageOrder returns the layout names to render, in the configured order if
// one is set and in declaration order otherwise. Names without a layout
// are dropped.
func (s *Settings) PageOrder(l *Layouts) []string {
	if s == nil || s.Pages == nil || len(s.Pages.Order) == 0 {
		return l.Keys()
	}
	var out []string
	for _, key := range s.Pages.Order {
		if _, ok := l.Get(key); ok {
			out = append(out, key)
		}
	}
	return out
}
