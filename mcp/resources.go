package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// RegisterResources adds the receipt resources to s.
func RegisterResources(s *Server) {
	s.AddResource(Resource{
		URI:         "receipt://summary",
		Name:        "Receipt Summary",
		Description: "Page count, document information and form fields of a receipt: receipt://summary?path=/path/to/receipt.pdf",
		MIMEType:    "application/json",
		Handler:     handleSummaryResource,
	})
	s.AddResource(Resource{
		URI:         "receipt://text",
		Name:        "Receipt Text",
		Description: "Text of every page of a receipt: receipt://text?path=/path/to/receipt.pdf",
		MIMEType:    "text/plain",
		Handler:     handleTextResource,
	})
}

func pathParam(u *url.URL) (string, error) {
	path := u.Query().Get("path")
	if path == "" {
		return "", errors.New("missing 'path' parameter in URI")
	}
	return path, nil
}

func handleSummaryResource(_ context.Context, u *url.URL) ([]ResourceContent, error) {
	path, err := pathParam(u)
	if err != nil {
		return nil, err
	}
	doc, err := openPDF(path, "")
	if err != nil {
		return nil, err
	}
	sum, err := Summarize(doc, false)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: u.String(), MIMEType: "application/json", Text: string(out)}}, nil
}

func handleTextResource(_ context.Context, u *url.URL) ([]ResourceContent, error) {
	path, err := pathParam(u)
	if err != nil {
		return nil, err
	}
	doc, err := openPDF(path, "")
	if err != nil {
		return nil, err
	}
	sum, err := Summarize(doc, true)
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: u.String(), MIMEType: "text/plain", Text: strings.Join(sum.Text, "\f")}}, nil
}
