// Package core contains the extraction, scanning, validation, and
// duplicate-detection logic of eventcheck.
package core

import (
	"regexp"
	"strings"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// ImplRole identifies which trait an implementation block belongs to.
type ImplRole string

const (
	// RoleDirect marks a self-contained event that emits its own
	// metrics and logs.
	RoleDirect ImplRole = "direct"
	// RoleRegistration marks an event that only declares which metrics to
	// register and defers emission to a separate handle type.
	RoleRegistration ImplRole = "registration"
	// RoleHandle marks the handle type that emits on behalf of a
	// registration event.
	RoleHandle ImplRole = "handle"
)

// StructDecl is a type declaration found in source text, with its
// brace-delimited member list when one is present.
type StructDecl struct {
	Name    string
	Members map[string]string
}

// ImplBlock is one implementation block: its role, the event type it
// implements, and the raw body text between the opening brace and the
// closing brace at the block's own indentation.
type ImplBlock struct {
	Role      ImplRole
	EventName string
	Body      string
}

// MetricCall is a single metric emission or registration found in a block.
type MetricCall struct {
	Kind models.MetricKind
	Name string
	Tags map[string]string
}

// Extractor pulls structured findings out of raw source text using
// best-effort pattern matching over macro-style call syntax. It builds no
// syntax tree and tolerates occasional mis-extraction on unusual
// formatting; upgrading to real parsing should only touch this boundary.
type Extractor interface {
	CountUsages(text string) map[string]int
	FindStructs(text string) []StructDecl
	FindImplBlocks(text string) []ImplBlock
	ScanMetricCalls(block string) []MetricCall
	ScanLogCalls(block string) []models.LogCall
	EmitsDroppedEvent(block string) bool
	HandleTypeName(block string) string
	DelegatesRegistration(block string) bool
}

var (
	usageRe = regexp.MustCompile(`\b(?:emit|register)!?\(\s*(?:&(?:mut\s+)?)?([A-Z][A-Za-z0-9_]*)`)

	structRe = regexp.MustCompile(`(?m)^\s*(?:pub(?:\([a-z_]+\))?\s+)?struct\s+([A-Z][A-Za-z0-9_]*)(?:<[^>]*>)?\s*([;{(])`)
	memberRe = regexp.MustCompile(`^(?:pub(?:\([a-z_]+\))?\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.+?),?$`)

	implRe = regexp.MustCompile(`^(\s*)impl(?:<[^>]*>)?\s+(RegisterInternalEvent|InternalEventHandle|InternalEvent)(?:<[^>]*>)?\s+for\s+([A-Z][A-Za-z0-9_]*)`)

	metricRe = regexp.MustCompile(`\b(?:register_)?(counter|gauge|histogram)!\s*\(`)
	logRe    = regexp.MustCompile(`\b(trace|debug|info|warn|error)!\s*\(`)

	tagArgRe     = regexp.MustCompile(`^"([^"]+)"\s*=>\s*(.+)$`)
	namedParamRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*)$`)
	shorthandRe  = regexp.MustCompile(`^[%?&]+\s*([A-Za-z_][A-Za-z0-9_.]*)$`)
	identOnlyRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

	handleTypeRe = regexp.MustCompile(`\btype\s+Handle\s*=\s*([A-Z][A-Za-z0-9_]*)`)
	delegateRe   = regexp.MustCompile(`\bregister\s*\(`)
)

type regexExtractor struct {
	droppedRe *regexp.Regexp
}

// NewExtractor creates an Extractor that recognises the given well-known
// events-dropped type name in emission and registration call sites.
func NewExtractor(droppedEventType string) Extractor {
	return &regexExtractor{
		droppedRe: regexp.MustCompile(
			`\b(?:emit|register)!?\(\s*(?:&(?:mut\s+)?)?` + regexp.QuoteMeta(droppedEventType) + `\b`),
	}
}

// CountUsages tallies emission/registration call sites per referenced
// capitalized identifier.
func (x *regexExtractor) CountUsages(text string) map[string]int {
	counts := make(map[string]int)
	for _, m := range usageRe.FindAllStringSubmatch(text, -1) {
		counts[m[1]]++
	}
	return counts
}

// FindStructs locates type declarations, collecting member name and raw
// type text for brace-delimited bodies. Unit structs yield empty members.
func (x *regexExtractor) FindStructs(text string) []StructDecl {
	var decls []StructDecl
	for _, loc := range structRe.FindAllStringSubmatchIndex(text, -1) {
		decl := StructDecl{
			Name:    text[loc[2]:loc[3]],
			Members: make(map[string]string),
		}
		if text[loc[4]:loc[5]] == "{" {
			body, _ := balancedSpan(text, loc[4])
			for _, line := range strings.Split(body, "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
					continue
				}
				if m := memberRe.FindStringSubmatch(line); m != nil {
					decl.Members[m[1]] = strings.TrimSpace(m[2])
				}
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

// FindImplBlocks locates implementation blocks for the three recognised
// roles. A block's body runs until the first line that is exactly a closing
// brace at the impl line's own indentation, so nested braces at deeper
// indentation do not terminate it early.
func (x *regexExtractor) FindImplBlocks(text string) []ImplBlock {
	lines := strings.Split(text, "\n")
	var blocks []ImplBlock
	for i := 0; i < len(lines); i++ {
		m := implRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		var role ImplRole
		switch m[2] {
		case "InternalEvent":
			role = RoleDirect
		case "RegisterInternalEvent":
			role = RoleRegistration
		case "InternalEventHandle":
			role = RoleHandle
		}

		closing := m[1] + "}"
		var body []string
		j := i + 1
		for ; j < len(lines); j++ {
			if strings.TrimRight(lines[j], " \t") == closing {
				break
			}
			body = append(body, lines[j])
		}
		blocks = append(blocks, ImplBlock{
			Role:      role,
			EventName: m[3],
			Body:      strings.Join(body, "\n"),
		})
		i = j
	}
	return blocks
}

// ScanMetricCalls finds direct and register-form metric calls. The first
// quoted argument is the metric name; "key" => expr arguments become tags
// with the raw expression text as the value.
func (x *regexExtractor) ScanMetricCalls(block string) []MetricCall {
	var calls []MetricCall
	for _, loc := range metricRe.FindAllStringSubmatchIndex(block, -1) {
		call := MetricCall{
			Kind: models.MetricKind(block[loc[2]:loc[3]]),
			Tags: make(map[string]string),
		}
		content, _ := balancedSpan(block, loc[1]-1)
		for i, arg := range splitArgs(content) {
			arg = collapseSpace(arg)
			if arg == "" {
				continue
			}
			if i == 0 {
				if name, ok := unquote(arg); ok {
					call.Name = name
				}
				continue
			}
			if m := tagArgRe.FindStringSubmatch(arg); m != nil {
				call.Tags[m[1]] = strings.TrimSpace(m[2])
			}
		}
		if call.Name != "" {
			calls = append(calls, call)
		}
	}
	return calls
}

// ScanLogCalls finds log calls at the five severity levels. The message is
// taken from a message = "..." argument or the first bare string literal;
// failing both, the first expression is used implicitly as the message.
// Parameters come from name = value arguments and %x / ?x shorthand
// captures.
func (x *regexExtractor) ScanLogCalls(block string) []models.LogCall {
	var calls []models.LogCall
	for _, loc := range logRe.FindAllStringSubmatchIndex(block, -1) {
		call := models.LogCall{
			Level:  models.LogLevel(block[loc[2]:loc[3]]),
			Params: make(map[string]bool),
		}
		content, _ := balancedSpan(block, loc[1]-1)

		var implicit string
		for i, arg := range splitArgs(content) {
			arg = collapseSpace(arg)
			if arg == "" || strings.HasPrefix(arg, "target:") {
				continue
			}
			if m := namedParamRe.FindStringSubmatch(arg); m != nil {
				name, value := m[1], strings.TrimSpace(m[2])
				if name == "message" {
					if s, ok := unquote(value); ok {
						call.Message = s
					} else {
						call.Message = value
					}
					continue
				}
				call.Params[name] = true
				continue
			}
			if s, ok := unquote(arg); ok {
				if call.Message == "" {
					call.Message = s
				}
				continue
			}
			if m := shorthandRe.FindStringSubmatch(arg); m != nil {
				call.Params[fieldName(m[1])] = true
				continue
			}
			if i == 0 {
				implicit = arg
				continue
			}
			if identOnlyRe.MatchString(arg) {
				call.Params[fieldName(arg)] = true
			}
		}
		if call.Message == "" {
			call.Message = implicit
		}
		calls = append(calls, call)
	}
	return calls
}

// EmitsDroppedEvent reports whether the block itself emits or registers the
// well-known events-dropped event.
func (x *regexExtractor) EmitsDroppedEvent(block string) bool {
	return x.droppedRe.MatchString(block)
}

// HandleTypeName extracts the handle type a registration block declares,
// or "" when none is found.
func (x *regexExtractor) HandleTypeName(block string) string {
	if m := handleTypeRe.FindStringSubmatch(block); m != nil {
		return m[1]
	}
	return ""
}

// DelegatesRegistration reports whether a direct-event block defers its
// behaviour to a separate register(...) call instead of emitting itself.
func (x *regexExtractor) DelegatesRegistration(block string) bool {
	return delegateRe.MatchString(block)
}

// balancedSpan returns the text between the bracket at open and its
// matching close, skipping string literals with escapes. Arbitrarily
// nested literal content is not guaranteed to be handled.
func balancedSpan(text string, open int) (string, int) {
	depth := 0
	inString := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return text[open+1 : i], i
			}
		}
	}
	return text[open+1:], len(text)
}

// splitArgs splits call content at top-level commas, ignoring commas inside
// nested brackets and string literals.
func splitArgs(content string) []string {
	var args []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(content); i++ {
		c := content[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, content[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, content[start:])
	return args
}

// collapseSpace trims an argument and joins multi-line text into single
// spaces so patterns can match across wrapped calls.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// unquote strips surrounding double quotes from a string literal.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// fieldName reduces a capture expression like self.index to its trailing
// identifier.
func fieldName(expr string) string {
	if i := strings.LastIndex(expr, "."); i >= 0 {
		return expr[i+1:]
	}
	return expr
}
