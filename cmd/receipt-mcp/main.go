// Command receipt-mcp is a Model Context Protocol server that renders and
// inspects receipts and records activity events.
//
// # Configuration for MCP clients
//
//	{
//	  "mcpServers": {
//	    "receipts": {
//	      "command": "receipt-mcp",
//	      "args": ["-config", "/etc/receipts/receipts.yaml"]
//	    }
//	  }
//	}
//
// # Tools
//
//   - render_receipt: render a receipt request to a PDF
//   - read_receipt: page count, metadata, form fields and text of a PDF
//   - log_event: record an activity event
//
// # Resources
//
//   - receipt://summary?path=... : receipt summary as JSON
//   - receipt://text?path=... : text of every page
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/receipts/internal/config"
	"github.com/lvillar/receipts/internal/logging"
	"github.com/lvillar/receipts/internal/service"
	"github.com/lvillar/receipts/mcp"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "receipt-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// Production logging writes to stderr, leaving stdout to the protocol.
	log, err := logging.New(cfg.Log.Level, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	if svc.Orgs != nil {
		go svc.Orgs.Run(ctx, cfg.Orgs.Refresh)
	}

	server := mcp.NewServer("receipt-mcp", version, mcp.WithLogger(log.Named("mcp")))
	mcp.RegisterTools(server, svc.Generator, svc.Events)
	mcp.RegisterResources(server)
	return server.Run(ctx)
}
