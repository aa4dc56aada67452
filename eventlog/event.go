// Package eventlog forwards activity events posted by app runtimes to
// structured log sinks.
package eventlog

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// ErrInvalidEvent is returned for events that cannot be recorded.
var ErrInvalidEvent = errors.New("eventlog: invalid event")

// Event is an activity event as posted by an app runtime.
type Event struct {
	ID                   string    `json:"id,omitempty"`
	EventType            string    `json:"eventType"`
	Subject              string    `json:"subject,omitempty"`
	UserID               int       `json:"userId,omitempty"`
	PartyID              int       `json:"partyId,omitempty"`
	OrgNumber            string    `json:"orgNumber,omitempty"`
	AuthenticationMethod string    `json:"authenticationMethod,omitempty"`
	AuthenticationLevel  int       `json:"authenticationLevel,omitempty"`
	SessionID            string    `json:"sessionId,omitempty"`
	IPAddress            string    `json:"ipAddress,omitempty"`
	Created              time.Time `json:"created"`
}

// Validate reports whether e can be recorded.
func (e Event) Validate() error {
	if strings.TrimSpace(e.EventType) == "" {
		return fmt.Errorf("%w: eventType is required", ErrInvalidEvent)
	}
	if e.IPAddress != "" {
		if _, err := parseIP(e.IPAddress); err != nil {
			return fmt.Errorf("%w: ipAddress %q", ErrInvalidEvent, e.IPAddress)
		}
	}
	if e.AuthenticationLevel < 0 {
		return fmt.Errorf("%w: negative authenticationLevel", ErrInvalidEvent)
	}
	return nil
}

// parseIP accepts a bare address or an address with port.
func parseIP(s string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr, nil
	}
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return netip.Addr{}, err
	}
	return ap.Addr(), nil
}

// Record is a validated event as handed to sinks.
type Record struct {
	ID                   string
	Type                 string
	Subject              string
	UserID               int
	PartyID              int
	OrgNumber            string
	AuthenticationMethod string
	AuthenticationLevel  int
	SessionID            string
	IPAddress            string
	Created              time.Time
}

func newRecord(e Event) Record {
	r := Record{
		ID:                   e.ID,
		Type:                 strings.TrimSpace(e.EventType),
		Subject:              e.Subject,
		UserID:               e.UserID,
		PartyID:              e.PartyID,
		OrgNumber:            e.OrgNumber,
		AuthenticationMethod: e.AuthenticationMethod,
		AuthenticationLevel:  e.AuthenticationLevel,
		SessionID:            e.SessionID,
		Created:              e.Created.UTC(),
	}
	if addr, err := parseIP(e.IPAddress); err == nil {
		r.IPAddress = addr.String()
	}
	return r
}

// MarshalLogObject writes the non-empty fields of r.
func (r Record) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", r.ID)
	enc.AddString("eventType", r.Type)
	enc.AddTime("created", r.Created)
	addString := func(k, v string) {
		if v != "" {
			enc.AddString(k, v)
		}
	}
	addInt := func(k string, v int) {
		if v != 0 {
			enc.AddInt(k, v)
		}
	}
	addString("subject", r.Subject)
	addInt("userId", r.UserID)
	addInt("partyId", r.PartyID)
	addString("orgNumber", r.OrgNumber)
	addString("authenticationMethod", r.AuthenticationMethod)
	addInt("authenticationLevel", r.AuthenticationLevel)
	addString("sessionId", r.SessionID)
	addString("ipAddress", r.IPAddress)
	return nil
}
