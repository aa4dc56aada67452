package texts

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when neither the request nor the user profile
// names a language.
const DefaultLanguage = "nb"

var supported = []language.Tag{
	language.MustParse("nb"),
	language.MustParse("nn"),
	language.English,
}

var matcher = language.NewMatcher(supported)

// Normalize maps a language code to one of the supported receipt languages
// "nb", "nn" or "en". Unknown or empty codes give DefaultLanguage.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// ResolveLanguage picks the receipt language: the requested language if
// set, else the user's profile preference, else DefaultLanguage.
func ResolveLanguage(requested, profile string) string {
	if strings.TrimSpace(requested) != "" {
		return Normalize(requested)
	}
	return Normalize(profile)
}

var languageStrings = map[string]map[string]string{
	"nb": {
		"delivered_by":        "Innsendt av",
		"on_behalf_of":        "på vegne av",
		"reference_number":    "Referansenummer:",
		"address":             "Gateadresse",
		"zip_code":            "Postnr",
		"post_place":          "Poststed",
		"care_of":             "C/O eller annen tilleggsadresse",
		"house_number":        "Bolignummer",
		"house_number_helper": "Om adressen er felles for flere boenheter må du oppgi bolignummer. Den består av en bokstav og fire tall og skal være ført opp ved inngangsdøren din.",
		"attachments":         "Vedlegg",
		"page":                "Side",
		"all_pages":           "Alle sider",
	},
	"nn": {
		"delivered_by":        "Innsendt av",
		"on_behalf_of":        "på vegner av",
		"reference_number":    "Referansenummer:",
		"address":             "Gateadresse",
		"zip_code":            "Postnr",
		"post_place":          "Poststad",
		"care_of":             "C/O eller annan tilleggsadresse",
		"house_number":        "Bustadnummer",
		"house_number_helper": "Om adressa er felles for fleire bustader må du oppgi bustadnummer. Det består av ein bokstav og fire tal og skal vere ført opp ved inngangsdøra di.",
		"attachments":         "Vedlegg",
		"page":                "Side",
		"all_pages":           "Alle sider",
	},
	"en": {
		"delivered_by":        "Delivered by",
		"on_behalf_of":        "on behalf of",
		"reference_number":    "Reference number:",
		"address":             "Street address",
		"zip_code":            "Zip code",
		"post_place":          "Post place",
		"care_of":             "C/O or other additional address",
		"house_number":        "Apartment number",
		"house_number_helper": "If the address is shared by several homes you must enter the apartment number. It consists of one letter and four digits and is marked at your front door.",
		"attachments":         "Attachments",
		"page":                "Page",
		"all_pages":           "All pages",
	},
}

// Strings looks up built-in receipt labels by key and language.
type Strings struct{}

// Get returns the string for key in lang, falling back to the default
// language and then to the key itself.
func (Strings) Get(key, lang string) string {
	if v, ok := languageStrings[Normalize(lang)][key]; ok {
		return v
	}
	if v, ok := languageStrings[DefaultLanguage][key]; ok {
		return v
	}
	return key
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// FormatDate formats a stored date for display in lang: dd.MM.yyyy for
// Norwegian and MM/dd/yyyy for English. Values that are not dates are
// returned unchanged.
func FormatDate(raw, lang string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if Normalize(lang) == "en" {
			return t.Format("01/02/2006")
		}
		return t.Format("02.01.2006")
	}
	return raw
}
