// Package observability provides the append-only JSONL run log that
// records check runs and their outcomes.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunEvent is one record in the run log.
type RunEvent struct {
	Time    time.Time      `json:"time"`
	Type    string         `json:"type"` // e.g. "run.started", "run.completed"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// RunLog defines the interface for writing and reading run events.
type RunLog interface {
	Write(event RunEvent) error
	Read() ([]RunEvent, error)
	Close() error
}

// jsonlRunLog implements RunLog using an append-only JSONL file.
type jsonlRunLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLRunLog creates a RunLog backed by a JSONL file at the given path.
func NewJSONLRunLog(path string) (RunLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	return &jsonlRunLog{path: path, file: f}, nil
}

// Write appends a JSON-encoded event followed by a newline.
func (l *jsonlRunLog) Write(event RunEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling run event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing run event: %w", err)
	}
	return nil
}

// Read scans the log file line by line and returns all decodable events.
func (l *jsonlRunLog) Read() ([]RunEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []RunEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event RunEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning run log: %w", err)
	}
	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlRunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing run log: %w", err)
	}
	return nil
}
