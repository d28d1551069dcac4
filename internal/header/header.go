// Package header extracts document-level PO fields with ordered regex rules.
package header

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-extractor/internal/normalize"
)

// Kind selects the post-processing applied to a matched value.
type Kind string

const (
	KindText   Kind = "text"
	KindDate   Kind = "date"
	KindNumber Kind = "number"
)

// Rule extracts one field. Patterns are tried in order, most specific first;
// capture group 1 (or the whole match when there is no group) is the value.
// Label, when set, is tried after the patterns: the text after the label on
// the same line, or else the next non-empty line.
type Rule struct {
	Field    string   `json:"field"`
	Patterns []string `json:"patterns,omitempty"`
	Label    string   `json:"label,omitempty"`
	Kind     Kind     `json:"kind,omitempty"`
}

// Fields maps canonical field names to values. Every configured field is
// present; a missed field is "".
type Fields map[string]string

// Get returns the value of name, "" when absent.
func (f Fields) Get(name string) string { return f[name] }

// Clone returns a copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

type compiledRule struct {
	field    string
	kind     Kind
	patterns []*regexp.Regexp
	label    *regexp.Regexp
}

// Options tune value post-processing.
type Options struct {
	Locale   normalize.Locale
	DayFirst bool
}

// Parser holds compiled rules. It is safe for concurrent use.
type Parser struct {
	rules  []compiledRule
	opts   Options
	logger *slog.Logger
}

// NewParser compiles rules case-insensitively in multi-line mode.
func NewParser(rules []Rule, opts Options, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{opts: opts, logger: logger}
	for _, r := range rules {
		if strings.TrimSpace(r.Field) == "" {
			return nil, fmt.Errorf("header rule without field name")
		}
		cr := compiledRule{field: r.Field, kind: r.Kind}
		if cr.kind == "" {
			cr.kind = KindText
		}
		for _, pat := range r.Patterns {
			re, err := regexp.Compile(`(?im)` + pat)
			if err != nil {
				return nil, fmt.Errorf("header %s: compile %q: %w", r.Field, pat, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		if r.Label != "" {
			re, err := regexp.Compile(`(?im)^[ \t]*` + r.Label + `[ \t]*[:#\-]?[ \t]*(.*)$`)
			if err != nil {
				return nil, fmt.Errorf("header %s: compile label %q: %w", r.Field, r.Label, err)
			}
			cr.label = re
		}
		p.rules = append(p.rules, cr)
	}
	return p, nil
}

// Fields lists the configured field names in rule order.
func (p *Parser) Fields() []string {
	out := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		out = append(out, r.field)
	}
	return out
}

// Parse extracts every configured field from text. It never fails.
func (p *Parser) Parse(text string) Fields {
	out := make(Fields, len(p.rules))
	for _, r := range p.rules {
		raw := r.match(text)
		val := p.finish(r.kind, raw)
		if val == "" {
			p.logger.Debug("header.field.miss", "field", r.field, "raw", raw)
		}
		// first rule for a field wins when a field is listed twice
		if out[r.field] == "" {
			out[r.field] = val
		}
	}
	return out
}

func (r compiledRule) match(text string) string {
	for _, re := range r.patterns {
		if v := firstGroup(re, text); v != "" {
			return v
		}
	}
	if r.label != nil {
		return labelValue(r.label, text)
	}
	return ""
}

func firstGroup(re *regexp.Regexp, text string) string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v := m[0]
		if len(m) > 1 {
			v = ""
			for _, g := range m[1:] {
				if strings.TrimSpace(g) != "" {
					v = g
					break
				}
			}
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// labelValue returns the text after the label, or the next non-empty line
// when the label stands alone.
func labelValue(re *regexp.Regexp, text string) string {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return ""
	}
	if v := strings.TrimSpace(text[loc[2]:loc[3]]); v != "" {
		return v
	}
	rest := text[loc[1]:]
	for i, line := range strings.Split(rest, "\n") {
		if i > 3 {
			break
		}
		if v := strings.TrimSpace(line); v != "" {
			return v
		}
	}
	return ""
}

func (p *Parser) finish(kind Kind, raw string) string {
	if raw == "" {
		return ""
	}
	switch kind {
	case KindDate:
		return normalize.DateWith(raw, normalize.DateOptions{DayFirst: p.opts.DayFirst})
	case KindNumber:
		return normalize.Number(raw, p.opts.Locale)
	default:
		return strings.Join(strings.Fields(raw), " ")
	}
}
