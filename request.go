package receipts

import (
	"github.com/lvillar/receipts/layout"
	"github.com/lvillar/receipts/options"
	"github.com/lvillar/receipts/submission"
	"github.com/lvillar/receipts/texts"
)

// singleLayoutKey names the layout of a request that carries one layout.
const singleLayoutKey = "FormLayout"

// Request is everything needed to render the receipt of one submission.
// It is decoded from the JSON body of a render request.
type Request struct {
	// Data is the base64 encoded XML form data.
	Data string `json:"data"`
	// FormLayout is used when FormLayouts is empty.
	FormLayout     *layout.FormLayout `json:"formLayout,omitempty"`
	FormLayouts    *layout.Layouts    `json:"formLayouts,omitempty"`
	LayoutSettings *layout.Settings   `json:"layoutSettings,omitempty"`

	TextResources *texts.ResourceSet      `json:"textResources,omitempty"`
	Instance      *submission.Instance    `json:"instance"`
	Party         *submission.Party       `json:"party,omitempty"`
	UserParty     *submission.Party       `json:"userParty,omitempty"`
	UserProfile   *submission.UserProfile `json:"userProfile,omitempty"`
	// Language overrides the user's preferred language.
	Language          string             `json:"language,omitempty"`
	OptionsDictionary options.Dictionary `json:"optionsDictionary,omitempty"`
}

// layouts returns the layouts to render in declaration order, or nil when
// the request has none.
func (r *Request) layouts() *layout.Layouts {
	if r.FormLayouts.Len() > 0 {
		return r.FormLayouts
	}
	if r.FormLayout == nil {
		return nil
	}
	l := &layout.Layouts{}
	l.Add(singleLayoutKey, r.FormLayout)
	return l
}

// language resolves the receipt language: the requested language, the
// user's preference, or the default.
func (r *Request) language() string {
	return texts.ResolveLanguage(r.Language, r.UserProfile.Language())
}

// userParty returns the party of the submitting user.
func (r *Request) userParty() *submission.Party {
	if r.UserParty != nil {
		return r.UserParty
	}
	if r.UserProfile != nil {
		return r.UserProfile.Party
	}
	return nil
}
