package texts_test

import (
	"testing"

	"github.com/lvillar/receipts/formdata"
	"github.com/lvillar/receipts/texts"
)

func TestLookup(t *testing.T) {
	set := &texts.ResourceSet{Resources: []texts.Resource{
		{ID: "title", Value: "First"},
		{ID: "title", Value: "Second"},
		{ID: "desc", Value: "Description"},
	}}
	tests := map[string]string{
		"title":   "First",
		"desc":    "Description",
		"missing": "missing",
		"":        "",
	}
	for key, want := range tests {
		if got := set.Lookup(key); got != want {
			t.Errorf("Lookup(%q) = %q, want %q", key, got, want)
		}
	}
	var none *texts.ResourceSet
	if got := none.Lookup("x"); got != "x" {
		t.Errorf("nil Lookup = %q", got)
	}
}

func TestPrepare(t *testing.T) {
	doc, err := formdata.ParseBytes([]byte(`<Skjema><Navn>Kari</Navn><By>Oslo</By></Skjema>`))
	if err != nil {
		t.Fatal(err)
	}
	orig := &texts.ResourceSet{Language: "nb", Resources: []texts.Resource{
		{
			ID:    "greeting",
			Value: "Hei **{0}** fra {1}",
			Variables: []texts.Variable{
				{Key: "Skjema.Navn", DataSource: "dataModel.default"},
				{Key: "ignored", DataSource: "instanceContext"},
				{Key: "By", DataSource: "dataModel.default"},
			},
		},
		{ID: "html", Value: "<p>Line &amp; more</p>"},
	}}
	got := texts.Prepare(orig, doc)
	if v := got.Lookup("greeting"); v != "Hei Kari fra Oslo" {
		t.Errorf("greeting = %q", v)
	}
	if v := got.Lookup("html"); v != "Line & more" {
		t.Errorf("html = %q", v)
	}
	if orig.Resources[0].Value != "Hei **{0}** fra {1}" {
		t.Error("Prepare modified its input")
	}
}

func TestClean(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"plain text", "plain text"},
		{"# Heading\n\nSome *emphasis* here", "Heading\nSome emphasis here"},
		{"Tom's \"quote\" & co", "Tom's \"quote\" & co"},
		{"tab\there nbsp", "tab here nbsp"},
		{"bell\u0007gone", "bellgone"},
		{"<b>bold</b> text", "bold text"},
	}
	for _, tt := range tests {
		if got := texts.Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "nb"},
		{"nb", "nb"},
		{"nn", "nn"},
		{"en", "en"},
		{"en-US", "en"},
		{"nb-NO", "nb"},
		{"de", "nb"},
		{"not a tag", "nb"},
	}
	for _, tt := range tests {
		if got := texts.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := texts.ResolveLanguage("en", "nn"); got != "en" {
		t.Errorf("request language not preferred: %q", got)
	}
	if got := texts.ResolveLanguage("", "nn"); got != "nn" {
		t.Errorf("profile language not used: %q", got)
	}
	if got := texts.ResolveLanguage("", ""); got != "nb" {
		t.Errorf("default language = %q", got)
	}
}

func TestStrings(t *testing.T) {
	var s texts.Strings
	if got := s.Get("page", "en"); got != "Page" {
		t.Errorf("page/en = %q", got)
	}
	if got := s.Get("post_place", "nn"); got != "Poststad" {
		t.Errorf("post_place/nn = %q", got)
	}
	if got := s.Get("all_pages", "fr"); got != "Alle sider" {
		t.Errorf("fallback = %q", got)
	}
	if got := s.Get("no_such_key", "en"); got != "no_such_key" {
		t.Errorf("missing key = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct{ raw, lang, want string }{
		{"2021-03-09", "nb", "09.03.2021"},
		{"2021-03-09", "nn", "09.03.2021"},
		{"2021-03-09", "en", "03/09/2021"},
		{"2021-03-09T10:00:00Z", "nb", "09.03.2021"},
		{"not a date", "nb", "not a date"},
		{"", "en", ""},
	}
	for _, tt := range tests {
		if got := texts.FormatDate(tt.raw, tt.lang); got != tt.want {
			t.Errorf("FormatDate(%q, %q) = %q, want %q", tt.raw, tt.lang, got, tt.want)
		}
	}
}
