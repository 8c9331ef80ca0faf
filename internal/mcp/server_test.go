package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/telemetrylint/eventcheck/internal/core"
	"github.com/telemetrylint/eventcheck/pkg/models"
)

// --- Fake implementations ---

type fakeScanner struct {
	set       models.EventSet
	err       error
	lastRoots []string
}

func (f *fakeScanner) Scan(roots []string) (models.EventSet, error) {
	f.lastRoots = roots
	return f.set, f.err
}

func fixtureSet() models.EventSet {
	set := make(models.EventSet)

	valid := set.Get("FooBytesReceived")
	valid.ImplementsDirectEvent = true
	valid.UsageCount = 1
	valid.SourcePath = "src/internal_events/foo.rs"
	valid.Logs = []models.LogCall{{
		Level:   models.LevelTrace,
		Message: "Bytes received.",
		Params:  map[string]bool{"byte_size": true, "protocol": true},
	}}
	valid.AddMetric(models.KindCounter, "received_bytes", map[string]string{"protocol": "self.protocol"})

	broken := set.Get("BarError")
	broken.ImplementsDirectEvent = true
	broken.UsageCount = 1
	broken.SourcePath = "src/internal_events/bar.rs"
	broken.Logs = []models.LogCall{{Level: models.LevelError, Message: "It broke."}}

	return set
}

func testConfig() *models.CheckConfig {
	cfg := core.DefaultCheckConfig()
	cfg.Roots = []string{"src"}
	return cfg
}

// callTool connects an in-memory client to the server and calls one tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

func decodeOutput[T any](t *testing.T, result *gomcp.CallToolResult) T {
	t.Helper()
	var out T
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshalling structured content: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshalling tool output: %v", err)
	}
	return out
}

// --- Tests ---

func TestCheckEvents(t *testing.T) {
	scanner := &fakeScanner{set: fixtureSet()}
	srv := NewServer(scanner, testConfig(), "test")

	result := callTool(t, srv, "check_events", nil)
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}

	out := decodeOutput[checkEventsOutput](t, result)
	if out.Valid {
		t.Error("expected violations on the fixture set")
	}
	if out.Scanned != 2 {
		t.Errorf("expected 2 scanned events, got %d", out.Scanned)
	}
	if len(out.Events) != 1 || out.Events[0].Name != "BarError" {
		t.Fatalf("expected one finding for BarError, got %+v", out.Events)
	}
	if len(out.Events[0].Violations) == 0 {
		t.Error("expected violations on BarError")
	}
	if scanner.lastRoots[0] != "src" {
		t.Errorf("expected configured roots to be used, got %v", scanner.lastRoots)
	}
}

func TestCheckEvents_ExplicitRoots(t *testing.T) {
	scanner := &fakeScanner{set: make(models.EventSet)}
	srv := NewServer(scanner, testConfig(), "test")

	result := callTool(t, srv, "check_events", map[string]any{"roots": []string{"agent/src"}})
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}

	out := decodeOutput[checkEventsOutput](t, result)
	if !out.Valid {
		t.Error("expected an empty tree to be valid")
	}
	if len(scanner.lastRoots) != 1 || scanner.lastRoots[0] != "agent/src" {
		t.Errorf("expected explicit roots to win, got %v", scanner.lastRoots)
	}
}

func TestCheckEvents_ScanError(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("permission denied")}
	srv := NewServer(scanner, testConfig(), "test")

	result := callTool(t, srv, "check_events", nil)
	if !result.IsError {
		t.Fatal("expected an error result when scanning fails")
	}
}

func TestListEvents(t *testing.T) {
	scanner := &fakeScanner{set: fixtureSet()}
	srv := NewServer(scanner, testConfig(), "test")

	result := callTool(t, srv, "list_events", nil)
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}

	out := decodeOutput[listEventsOutput](t, result)
	if out.Count != 2 {
		t.Fatalf("expected 2 events, got %d", out.Count)
	}
	// Sorted by name.
	if out.Events[0].Name != "BarError" || out.Events[1].Name != "FooBytesReceived" {
		t.Errorf("unexpected inventory order: %+v", out.Events)
	}
	foo := out.Events[1]
	if !foo.DirectEvent || foo.MetricCount != 1 || foo.LogCount != 1 || foo.UsageCount != 1 {
		t.Errorf("unexpected inventory entry: %+v", foo)
	}
}

func TestNewServer_DefaultVersion(t *testing.T) {
	srv := NewServer(&fakeScanner{}, testConfig(), "")
	if srv.MCPServer() == nil {
		t.Fatal("expected a constructed server")
	}
}
