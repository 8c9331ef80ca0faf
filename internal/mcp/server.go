// Package mcp provides an MCP (Model Context Protocol) server that exposes
// eventcheck functionality as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"sort"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/telemetrylint/eventcheck/internal/core"
	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Server wraps the scanner and rule engine and exposes them as MCP tools.
type Server struct {
	server  *gomcp.Server
	scanner core.Scanner
	cfg     *models.CheckConfig
}

// NewServer creates a new MCP server around the given scanner and
// configuration.
func NewServer(scanner core.Scanner, cfg *models.CheckConfig, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		scanner: scanner,
		cfg:     cfg,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "eventcheck", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type checkEventsInput struct {
	Roots []string `json:"roots,omitempty" jsonschema:"source roots to scan; defaults to the configured roots"`
}

type findingOutput struct {
	Name       string   `json:"name"`
	SourcePath string   `json:"source_path,omitempty"`
	Violations []string `json:"violations"`
}

type checkEventsOutput struct {
	Events     []findingOutput `json:"events,omitempty"`
	Duplicates [][]string      `json:"duplicates,omitempty"`
	Scanned    int             `json:"scanned_events"`
	Total      int             `json:"total_violations"`
	Valid      bool            `json:"valid"`
}

type listEventsInput struct {
	Roots []string `json:"roots,omitempty" jsonschema:"source roots to scan; defaults to the configured roots"`
}

type eventOutput struct {
	Name        string `json:"name"`
	SourcePath  string `json:"source_path,omitempty"`
	UsageCount  int    `json:"usage_count"`
	MetricCount int    `json:"metric_count"`
	LogCount    int    `json:"log_count"`
	DirectEvent bool   `json:"direct_event"`
	RegistersAs string `json:"registers_handle,omitempty"`
	Handle      bool   `json:"handle"`
}

type listEventsOutput struct {
	Events []eventOutput `json:"events"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "check_events",
		Description: "Scan source roots and validate event conventions. Returns per-event violations, duplicate-definition groups, and the total violation count.",
	}, s.handleCheckEvents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_events",
		Description: "Scan source roots and return the reconstructed event inventory: usage counts, metric and log counts, and implementation roles.",
	}, s.handleListEvents)
}

// --- Tool handlers ---

func (s *Server) handleCheckEvents(_ context.Context, _ *gomcp.CallToolRequest, input checkEventsInput) (*gomcp.CallToolResult, checkEventsOutput, error) {
	set, err := s.scan(input.Roots)
	if err != nil {
		return errorResult(err.Error()), checkEventsOutput{}, nil
	}

	core.ValidateAll(set)
	duplicates := core.FindDuplicates(set)
	report := core.BuildReport(set, duplicates)

	out := checkEventsOutput{
		Duplicates: report.Duplicates,
		Scanned:    report.Scanned,
		Total:      report.Total,
		Valid:      report.Valid(),
	}
	for _, finding := range report.Events {
		out.Events = append(out.Events, findingOutput{
			Name:       finding.Name,
			SourcePath: finding.SourcePath,
			Violations: finding.Violations,
		})
	}

	return nil, out, nil
}

func (s *Server) handleListEvents(_ context.Context, _ *gomcp.CallToolRequest, input listEventsInput) (*gomcp.CallToolResult, listEventsOutput, error) {
	set, err := s.scan(input.Roots)
	if err != nil {
		return errorResult(err.Error()), listEventsOutput{}, nil
	}

	names := set.Names()
	sort.Strings(names)

	out := listEventsOutput{Count: len(names)}
	for _, name := range names {
		e := set[name]
		out.Events = append(out.Events, eventOutput{
			Name:        e.Name,
			SourcePath:  e.SourcePath,
			UsageCount:  e.UsageCount,
			MetricCount: len(e.Metrics),
			LogCount:    len(e.Logs),
			DirectEvent: e.ImplementsDirectEvent,
			RegistersAs: e.ImplementsHandleFor,
			Handle:      e.ImplementsHandle,
		})
	}

	return nil, out, nil
}

// --- Helpers ---

func (s *Server) scan(roots []string) (models.EventSet, error) {
	if len(roots) == 0 {
		roots = s.cfg.Roots
	}
	set, err := s.scanner.Scan(roots)
	if err != nil {
		return nil, fmt.Errorf("scanning sources: %w", err)
	}
	return set, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
