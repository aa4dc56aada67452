// Package texts resolves the text shown in a receipt: app text resources,
// built-in language strings and locale dependent formatting.
package texts

import (
	"strconv"
	"strings"

	"github.com/lvillar/receipts/formdata"
)

// Variable describes where a placeholder value of a text resource comes
// from. Only data sources starting with "dataModel" are substituted.
type Variable struct {
	Key        string `json:"key"`
	DataSource string `json:"dataSource"`
}

// Resource is one text resource of an app.
type Resource struct {
	ID        string     `json:"id"`
	Value     string     `json:"value"`
	Variables []Variable `json:"variables,omitempty"`
}

// ResourceSet is the ordered text resources of an app in one language.
type ResourceSet struct {
	Language  string     `json:"language,omitempty"`
	Resources []Resource `json:"resources"`
}

// Lookup returns the value of the first resource with the given id. Keys
// without a resource are returned unchanged.
func (s *ResourceSet) Lookup(id string) string {
	if s == nil {
		return id
	}
	for _, r := range s.Resources {
		if r.ID == id {
			return r.Value
		}
	}
	return id
}

// Has reports whether a resource with the given id exists.
func (s *ResourceSet) Has(id string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Resources {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Prepare returns a copy of s ready for rendering: values are cleaned of
// markup and data model variables are substituted from doc into the {0},
// {1}, ... placeholders, numbered in the order the variables are declared.
// s is not modified.
func Prepare(s *ResourceSet, doc *formdata.Document) *ResourceSet {
	if s == nil {
		return &ResourceSet{}
	}
	out := &ResourceSet{
		Language:  s.Language,
		Resources: make([]Resource, len(s.Resources)),
	}
	for i, r := range s.Resources {
		r.Value = Clean(r.Value)
		var params []string
		for _, v := range r.Variables {
			if strings.HasPrefix(v.DataSource, "dataModel") {
				params = append(params, doc.Value(v.Key))
			}
		}
		r.Value = replaceParams(r.Value, params)
		out.Resources[i] = r
	}
	return out
}

func replaceParams(s string, params []string) string {
	for i, p := range params {
		s = strings.ReplaceAll(s, "{"+strconv.Itoa(i)+"}", p)
	}
	return s
}
