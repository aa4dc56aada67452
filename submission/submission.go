// Package submission models the instance metadata of an archived
// submission: who sent it, what app it belongs to and which files were
// attached.
package submission

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DataElement is one stored data element of an instance.
type DataElement struct {
	ID       string `json:"id"`
	DataType string `json:"dataType"`
	Filename string `json:"filename,omitempty"`
}

// InstanceOwner identifies the party owning an instance.
type InstanceOwner struct {
	PartyID string `json:"partyId"`
}

// Instance is the metadata of one submission.
type Instance struct {
	ID            string            `json:"id"`
	AppID         string            `json:"appId"`
	Org           string            `json:"org"`
	InstanceOwner InstanceOwner     `json:"instanceOwner"`
	Title         map[string]string `json:"title,omitempty"`
	Data          []DataElement     `json:"data,omitempty"`
}

// Party is a person or organisation.
type Party struct {
	PartyID   int    `json:"partyId"`
	Name      string `json:"name"`
	OrgNumber string `json:"orgNumber,omitempty"`
	SSN       string `json:"ssn,omitempty"`
}

// Same reports whether p and other denote the same party.
func (p *Party) Same(other *Party) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.PartyID != 0 && other.PartyID != 0 {
		return p.PartyID == other.PartyID
	}
	return p.Name == other.Name && p.OrgNumber == other.OrgNumber && p.SSN == other.SSN
}

// UserProfile holds the preferences of the user who submitted.
type UserProfile struct {
	UserID                   int    `json:"userId"`
	Party                    *Party `json:"party,omitempty"`
	ProfileSettingPreference struct {
		Language string `json:"language"`
	} `json:"profileSettingPreference"`
}

// Language returns the preferred language, or "".
func (u *UserProfile) Language() string {
	if u == nil {
		return ""
	}
	return u.ProfileSettingPreference.Language
}

// Attachments returns the filenames of data elements whose data type is one
// of ids, in storage order.
func (in *Instance) Attachments(ids ...string) []string {
	if in == nil {
		return nil
	}
	var files []string
	for _, d := range in.Data {
		for _, id := range ids {
			if d.DataType == id {
				files = append(files, d.Filename)
				break
			}
		}
	}
	return files
}

// AppName returns the app part of the app id "org/app".
func (in *Instance) AppName() string {
	if in == nil {
		return ""
	}
	if i := strings.LastIndexByte(in.AppID, '/'); i >= 0 {
		return in.AppID[i+1:]
	}
	return in.AppID
}

// DisplayName returns the instance title in lang, falling back to the
// Norwegian bokmål title, the first title by language code, and finally
// the app name.
func (in *Instance) DisplayName(lang string) string {
	if in == nil {
		return ""
	}
	for _, l := range []string{lang, "nb"} {
		if t := in.Title[l]; t != "" {
			return t
		}
	}
	for _, l := range slices.Sorted(maps.Keys(in.Title)) {
		if t := in.Title[l]; t != "" {
			return t
		}
	}
	return in.AppName()
}

// GUID returns the instance GUID, the part of the id after the party id.
func (in *Instance) GUID() string {
	if in == nil {
		return ""
	}
	if i := strings.LastIndexByte(in.ID, '/'); i >= 0 {
		return in.ID[i+1:]
	}
	return in.ID
}

// ReferenceNumber returns the last block of the instance GUID, which is
// shown to users as the receipt reference. An id that is not a GUID yields
// its last dash separated block.
func (in *Instance) ReferenceNumber() string {
	guid := in.GUID()
	if id, err := uuid.Parse(guid); err == nil {
		s := id.String()
		return s[strings.LastIndexByte(s, '-')+1:]
	}
	return guid[strings.LastIndexByte(guid, '-')+1:]
}
