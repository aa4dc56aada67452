// Command receipt-render renders a receipt request file to a PDF.
//
//	receipt-render -in request.json -out receipt.pdf -verify
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lvillar/gofpdf/reader"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/internal/config"
	"github.com/lvillar/receipts/internal/logging"
	"github.com/lvillar/receipts/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML configuration file")
		in         = flag.String("in", "", "request JSON file, - for stdin")
		out        = flag.String("out", "receipt.pdf", "output PDF file")
		verify     = flag.Bool("verify", false, "read the written PDF back and print its page count")
	)
	flag.Parse()
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*configPath, *in, *out, *verify); err != nil {
		fmt.Fprintf(os.Stderr, "receipt-render: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, in, out string, verify bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	var data []byte
	if in == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(in)
	}
	if err != nil {
		return err
	}
	var req receipts.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding %s: %w", in, err)
	}

	ctx := context.Background()
	// Events are not recorded here.
	cfg.Events.DSN = ""
	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.RefreshOrgs(ctx)

	var buf bytes.Buffer
	if err := svc.Generator.Generate(ctx, &buf, &req); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if !verify {
		return nil
	}
	doc, err := reader.Open(out)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", out, err)
	}
	fmt.Printf("%s: %d pages, %d bytes\n", out, doc.NumPages(), buf.Len())
	return nil
}
