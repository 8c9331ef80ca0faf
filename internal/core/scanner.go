package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Scanner walks source roots once and builds the event registry. Every
// source file is read exactly once; usage counting applies to all files,
// declaration and implementation extraction only to files under the
// configured definition prefixes.
type Scanner interface {
	Scan(roots []string) (models.EventSet, error)
}

type treeScanner struct {
	cfg models.CheckConfig
	ex  Extractor
}

// NewScanner creates a Scanner using the given configuration and extractor.
func NewScanner(cfg models.CheckConfig, ex Extractor) Scanner {
	return &treeScanner{cfg: cfg, ex: ex}
}

// Scan reads every matching file under the given roots and returns the
// fully-populated event set. An unreadable file fails the whole run: there
// is no partial-result mode.
func (s *treeScanner) Scan(roots []string) (models.EventSet, error) {
	set := make(models.EventSet)
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			// A configured root that is absent in this tree is skipped;
			// only unreadable files are fatal.
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, s.cfg.SourceExtension) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			s.scanFile(set, root, path, string(data))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	return set, nil
}

// scanFile applies usage counting, and for definition files also struct and
// implementation extraction, mutating the event set in place.
func (s *treeScanner) scanFile(set models.EventSet, root, path, text string) {
	for name, count := range s.ex.CountUsages(text) {
		set.Get(name).UsageCount += count
	}

	if !s.isDefinitionFile(root, path) {
		return
	}

	skip := s.cfg.SkipMarker != "" &&
		strings.Contains(strings.ToLower(text), strings.ToLower(s.cfg.SkipMarker))

	for _, decl := range s.ex.FindStructs(text) {
		e := set.Get(decl.Name)
		e.SourcePath = path
		e.SkipDroppedEventsCheck = skip
		for member, typeText := range decl.Members {
			e.Members[member] = typeText
		}
	}

	for _, block := range s.ex.FindImplBlocks(text) {
		e := set.Get(block.EventName)
		if e.SourcePath == "" {
			e.SourcePath = path
		}
		if skip {
			e.SkipDroppedEventsCheck = true
		}

		switch block.Role {
		case RoleDirect:
			// A direct block that only forwards to register(...) carries
			// no emissions of its own.
			if s.ex.DelegatesRegistration(block.Body) {
				continue
			}
			e.ImplementsDirectEvent = true
			s.mergeMetrics(e, block.Body)
			e.Logs = append(e.Logs, s.ex.ScanLogCalls(block.Body)...)
			if s.ex.EmitsDroppedEvent(block.Body) {
				e.EmitsNestedDroppedEvent = true
			}

		case RoleRegistration:
			e.ImplementsHandleFor = s.ex.HandleTypeName(block.Body)
			s.mergeMetrics(e, block.Body)
			if s.ex.EmitsDroppedEvent(block.Body) {
				e.EmitsNestedDroppedEvent = true
			}

		case RoleHandle:
			// Handles emit on behalf of a registration event and declare
			// no metrics of their own.
			e.ImplementsHandle = true
			e.Logs = append(e.Logs, s.ex.ScanLogCalls(block.Body)...)
		}
	}
}

func (s *treeScanner) mergeMetrics(e *models.Event, block string) {
	for _, call := range s.ex.ScanMetricCalls(block) {
		e.AddMetric(call.Kind, call.Name, call.Tags)
	}
}

// isDefinitionFile reports whether the file lies under one of the
// configured definition prefixes, relative to the scanned root.
func (s *treeScanner) isDefinitionFile(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(filepath.Join(filepath.Base(root), rel))
	for _, prefix := range s.cfg.DefinitionPrefixes {
		if strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}
