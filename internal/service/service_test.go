package service

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/eventlog"
	"github.com/lvillar/receipts/internal/config"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	orgsPath := filepath.Join(dir, "orgs.json")
	if err := os.WriteFile(orgsPath, []byte(`{"orgs": {"ttd": {"name": {"nb": "Testdepartementet"}}}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Orgs.File = orgsPath
	cfg.Receipt.Compress = false
	cfg.Receipt.Barcode = "qr"
	cfg.Events.DSN = filepath.Join(dir, "events.db")

	ctx := context.Background()
	svc, err := New(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if svc.Orgs == nil {
		t.Fatal("no organisation registry")
	}
	svc.RefreshOrgs(ctx)
	if got := svc.Orgs.FullName("ttd", "nb"); got != "Testdepartementet" {
		t.Errorf("FullName = %q", got)
	}

	if _, err := svc.Events.Log(ctx, eventlog.Event{EventType: "Login"}); err != nil {
		t.Errorf("Log: %v", err)
	}

	var req receipts.Request
	body := `{"instance": {"id": "1/a", "org": "ttd", "title": {"nb": "Melding"}},
		"formLayout": {"data": {"layout": [{"id": "p", "type": "Paragraph", "textResourceBindings": {"title": "Hei"}}]}}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := svc.Generator.Generate(ctx, &buf, &req); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("(Testdepartementet - Melding) Tj")) {
		t.Error("header does not use the organisation table")
	}
}

func TestNewWithoutOrgs(t *testing.T) {
	cfg := config.Default()
	cfg.Orgs.URL = ""
	svc, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if svc.Orgs != nil {
		t.Error("registry built without a source")
	}
	svc.RefreshOrgs(context.Background())
	if err := svc.Close(); err != nil {
		t.Error(err)
	}
}

func TestNewMissingLetterhead(t *testing.T) {
	cfg := config.Default()
	cfg.Receipt.Letterhead = filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := New(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("expected error for missing letterhead")
	}
}
