package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/eventlog"
)

func pdfRequest(data string) string {
	return `{
	"data": "` + base64.StdEncoding.EncodeToString([]byte(data)) + `",
	"instance": {"id": "512345/c1572504-9fb2-45ff-9d26-1a3d9b9a6f1a", "org": "ttd", "title": {"nb": "Enkel melding"}},
	"party": {"partyId": 512345, "name": "Kari Nordmann"},
	"formLayout": {"data": {"layout": [
		{"id": "b", "type": "Input", "dataModelBindings": {"simpleBinding": "A.B"}}
	]}}
}`
}

type recordingSink struct{ records []eventlog.Record }

func (s *recordingSink) Write(_ context.Context, r eventlog.Record) error {
	s.records = append(s.records, r)
	return nil
}

type ready bool

func (r ready) Loaded() bool { return bool(r) }

func newTestServer(t *testing.T, log *zap.Logger) (*Server, *recordingSink) {
	t.Helper()
	gen, err := receipts.New(receipts.WithCompression(false))
	if err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	return New(gen, eventlog.NewForwarder([]eventlog.Sink{sink}), ready(true), log), sink
}

func do(s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["orgs"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestRenderPDF(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/api/v1/pdf", pdfRequest("<A><B>hello</B></A>"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	out := rec.Body.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("response is not a PDF")
	}
	if !bytes.Contains(out, []byte("(hello) Tj")) {
		t.Error("value missing from receipt")
	}
}

func TestRenderPDFBadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tests := map[string]string{
		"not json":     "{",
		"no instance":  `{"formLayout": {"data": {"layout": []}}}`,
		"no layout":    `{"instance": {"id": "1/a"}}`,
		"bad base64":   strings.Replace(pdfRequest(""), `"data": ""`, `"data": "%%%"`, 1),
		"bad form xml": pdfRequest("<A><B>"),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/v1/pdf", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, nil)
	if rec := do(s, http.MethodGet, "/api/v1/pdf", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestLogEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s, sink := newTestServer(t, zap.New(core))
	rec := do(s, http.MethodPost, "/api/v1/eventlog",
		`{"eventType": "Authenticate", "userId": 20000, "ipAddress": "10.0.0.7"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(sink.records) != 1 || sink.records[0].ID != body["id"] || sink.records[0].UserID != 20000 {
		t.Errorf("records = %+v, response = %v", sink.records, body)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d request log entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusCreated) {
		t.Errorf("logged status = %v", got)
	}
}

func TestLogEventInvalid(t *testing.T) {
	s, sink := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/api/v1/eventlog", `{"subject": "x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(sink.records) != 0 {
		t.Error("invalid event was recorded")
	}
}

func TestEventRouteDisabled(t *testing.T) {
	gen, err := receipts.New()
	if err != nil {
		t.Fatal(err)
	}
	s := New(gen, nil, nil, nil)
	if rec := do(s, http.MethodPost, "/api/v1/eventlog", `{"eventType": "x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec := do(s, http.MethodGet, "/health", "")
	if strings.Contains(rec.Body.String(), "orgs") {
		t.Errorf("health reports orgs without a registry: %s", rec.Body.String())
	}
}
