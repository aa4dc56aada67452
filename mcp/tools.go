package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lvillar/gofpdf/reader"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/eventlog"
)

// Generator renders receipts.
type Generator interface {
	Generate(ctx context.Context, w io.Writer, req *receipts.Request) error
}

// EventLogger records activity events.
type EventLogger interface {
	Log(ctx context.Context, e eventlog.Event) (eventlog.Record, error)
}

// RegisterTools adds the receipt tools to s. The log_event tool is only
// added when events is not nil.
func RegisterTools(s *Server, gen Generator, events EventLogger) {
	s.AddTool(renderReceiptTool(gen))
	s.AddTool(readReceiptTool())
	if events != nil {
		s.AddTool(logEventTool(events))
	}
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func property(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func renderReceiptTool(gen Generator) Tool {
	return Tool{
		Name: "render_receipt",
		Description: "Render the PDF receipt of an archived form submission. The request carries the base64 " +
			"XML form data, layouts, text resources and instance metadata. Returns the PDF as base64 " +
			"unless outputPath is given.",
		InputSchema: object(map[string]interface{}{
			"request":    property("object", "Receipt request with data, formLayout or formLayouts, textResources, instance and party"),
			"outputPath": property("string", "Optional file path to write the PDF to"),
		}, "request"),
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args struct {
				Request    *receipts.Request `json:"request"`
				OutputPath string            `json:"outputPath"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("decoding arguments: %w", err)
			}
			if args.Request == nil {
				return ToolResult{}, errors.New("missing 'request' argument")
			}

			var buf bytes.Buffer
			if err := gen.Generate(ctx, &buf, args.Request); err != nil {
				return ToolResult{}, err
			}
			if args.OutputPath != "" {
				if err := os.WriteFile(args.OutputPath, buf.Bytes(), 0o644); err != nil {
					return ToolResult{}, fmt.Errorf("writing receipt: %w", err)
				}
				return textResult("Receipt written to %s (%d bytes)", args.OutputPath, buf.Len()), nil
			}
			res := textResult("Receipt rendered (%d bytes)", buf.Len())
			res.Content = append(res.Content, ContentBlock{
				Type:     "resource",
				MIMEType: "application/pdf",
				Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
			})
			return res, nil
		},
	}
}

// Summary describes a rendered receipt.
type Summary struct {
	NumPages int               `json:"numPages"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Fields   []FieldSummary    `json:"fields,omitempty"`
	Text     []string          `json:"text,omitempty"`
}

type FieldSummary struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	ReadOnly bool   `json:"readOnly"`
}

// Summarize reads back the page count, document information and form
// fields of a receipt, and the text of every page when withText is set.
func Summarize(doc *reader.Document, withText bool) (*Summary, error) {
	sum := &Summary{NumPages: doc.NumPages(), Metadata: doc.Metadata()}
	fields, err := doc.FormFields()
	if err != nil {
		return nil, fmt.Errorf("reading form fields: %w", err)
	}
	for _, f := range leafFields(fields) {
		sum.Fields = append(sum.Fields, FieldSummary{Name: f.FullName, Value: f.Value, ReadOnly: f.IsReadOnly()})
	}
	if withText {
		for n, page := range doc.Pages() {
			text, err := page.ExtractText()
			if err != nil {
				return nil, fmt.Errorf("extracting text of page %d: %w", n, err)
			}
			sum.Text = append(sum.Text, text)
		}
	}
	return sum, nil
}

func leafFields(fields []*reader.FormField) []*reader.FormField {
	var out []*reader.FormField
	for _, f := range fields {
		if len(f.Kids) > 0 {
			out = append(out, leafFields(f.Kids)...)
			continue
		}
		out = append(out, f)
	}
	return out
}

func readReceiptTool() Tool {
	return Tool{
		Name:        "read_receipt",
		Description: "Summarize a PDF receipt: page count, document information, form field values and optionally the page text.",
		InputSchema: object(map[string]interface{}{
			"path": property("string", "Path to the PDF file"),
			"data": property("string", "Base64 PDF, used when path is empty"),
			"text": property("boolean", "Include the text of every page"),
		}),
		Handler: func(_ context.Context, raw json.RawMessage) (ToolResult, error) {
			var args struct {
				Path string `json:"path"`
				Data string `json:"data"`
				Text bool   `json:"text"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("decoding arguments: %w", err)
			}
			doc, err := openPDF(args.Path, args.Data)
			if err != nil {
				return ToolResult{}, err
			}
			sum, err := Summarize(doc, args.Text)
			if err != nil {
				return ToolResult{}, err
			}
			out, err := json.MarshalIndent(sum, "", "  ")
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("%s", out), nil
		},
	}
}

func openPDF(path, data string) (*reader.Document, error) {
	switch {
	case path != "":
		doc, err := reader.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening PDF: %w", err)
		}
		return doc, nil
	case data != "":
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decoding PDF data: %w", err)
		}
		doc, err := reader.ReadFrom(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("reading PDF: %w", err)
		}
		return doc, nil
	}
	return nil, errors.New("one of 'path' or 'data' is required")
}

func logEventTool(events EventLogger) Tool {
	return Tool{
		Name:        "log_event",
		Description: "Record an activity event. eventType is required.",
		InputSchema: object(map[string]interface{}{
			"event": property("object", "Event with eventType, subject, userId, partyId, orgNumber, ipAddress and created"),
		}, "event"),
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args struct {
				Event *eventlog.Event `json:"event"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return ToolResult{}, fmt.Errorf("decoding arguments: %w", err)
			}
			if args.Event == nil {
				return ToolResult{}, errors.New("missing 'event' argument")
			}
			rec, err := events.Log(ctx, *args.Event)
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("Recorded event %s", rec.ID), nil
		},
	}
}
