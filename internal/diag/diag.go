// Package diag implements the diagnostic bag the core emits into: typed,
// additive diagnostics with stable error codes and bilingual message
// templates (spec.md §4.3.8, §7).
package diag

import (
	_ "embed"
	"fmt"

	"github.com/segmentio/ksuid"
	"gopkg.in/yaml.v3"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Span is a source location, resolved lazily by the external source
// manager (spec.md §6.1) — the core never reads source text itself.
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Code is a stable diagnostic code, e.g. "type-mismatch" or
// "overload-ambiguous".
type Code string

// Diagnostic is one structured diagnostic entry.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Span     Span
	Args     []string
}

// Message renders the diagnostic using the bilingual template table; lang
// is "en" or "ko".
func (d Diagnostic) Message(lang string) string {
	tpl, ok := templates[d.Code]
	if !ok {
		return string(d.Code)
	}
	text := tpl.En
	if lang == "ko" && tpl.Ko != "" {
		text = tpl.Ko
	}
	return formatTemplate(text, d.Args)
}

func formatTemplate(text string, args []string) string {
	out := text
	for i, a := range args {
		placeholder := fmt.Sprintf("{%d}", i)
		out = replaceAll(out, placeholder, a)
	}
	return out
}

func replaceAll(s, old, new string) string {
	for {
		idx := indexOf(s, old)
		if idx < 0 {
			return s
		}
		s = s[:idx] + new + s[idx+len(old):]
	}
}

func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}

// Bag accumulates diagnostics for one compilation unit. Diagnostics are
// additive — the checker never aborts on first error (spec.md §4.3.8,
// §7). The bag is stamped with a ksuid so a caller running several
// compilation units concurrently (spec.md §5) can tell their diagnostics
// apart; the core itself never inspects the id.
type Bag struct {
	UnitId string
	items  []Diagnostic
}

// NewBag creates an empty, freshly-stamped bag.
func NewBag() *Bag {
	return &Bag{UnitId: ksuid.New().String()}
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// All returns every diagnostic added so far, in insertion order.
func (b *Bag) All() []Diagnostic { return b.items }

// HasErrors reports whether any error-severity diagnostic was added.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Reset clears the bag's diagnostics but keeps its unit id, matching the
// "caches are reset at the start of each check_program" rule (spec.md
// §3.4) applied to diagnostics collection.
func (b *Bag) Reset() { b.items = nil }

type template struct {
	En string `yaml:"en"`
	Ko string `yaml:"ko"`
}

//go:embed templates.yaml
var templatesYAML []byte

var templates map[Code]template

func init() {
	raw := make(map[string]template)
	if err := yaml.Unmarshal(templatesYAML, &raw); err != nil {
		panic(fmt.Sprintf("diag: malformed templates.yaml: %v", err))
	}
	templates = make(map[Code]template, len(raw))
	for k, v := range raw {
		templates[Code(k)] = v
	}
}
